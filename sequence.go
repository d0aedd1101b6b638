package bank

import (
	"fmt"
	"sync/atomic"
)

// sequence generates identifiers like "TXN00001". It is safe for concurrent use.
type sequence struct {
	prefix string
	width  int
	n      atomic.Int64
}

func newSequence(prefix string, width int, start int64) *sequence {
	s := &sequence{prefix: prefix, width: width}
	s.n.Store(start)
	return s
}

// next returns the next identifier.
func (s *sequence) next() string {
	return fmt.Sprintf("%s%0*d", s.prefix, s.width, s.n.Add(1))
}

// observe makes sure the sequence never hands out id again.
func (s *sequence) observe(id string) {
	n := idNumber(id)
	for {
		cur := s.n.Load()
		if n <= cur || s.n.CompareAndSwap(cur, n) {
			return
		}
	}
}

// sequences holds one sequence per table.
type sequences map[Table]*sequence

func newSequences() sequences {
	return sequences{
		CustomerTable:    newSequence("CUST", 3, 0),
		AccountTable:     newSequence("ACC", 4, 1000),
		TransactionTable: newSequence("TXN", 5, 0),
		TransferTable:    newSequence("TRF", 5, 0),
		ChequeTable:      newSequence("CHQ", 6, 0),
		LoanTable:        newSequence("LOAN", 3, 0),
		PaymentTable:     newSequence("PAY", 5, 0),
		AuditTable:       newSequence("AUD", 5, 0),
	}
}
