package bank

import (
	"context"

	"github.com/etnz/bank/date"
)

// Summary provides an at-a-glance overview of the bank on a given date.
type Summary struct {
	Date              date.Date
	Customers         int // registered customers
	Accounts          map[AccountStatus]int
	TotalDeposits     Money // sum of the balances of accounts that are not closed
	LoansOutstanding  Money // sum of the outstanding of active loans
	NetLiquidity      Money // deposits minus loans outstanding
	CreditVolume      Money
	DebitVolume       Money
	Transactions      int
	ActiveLoans       int
	PendingCheques    int
	BouncedCheques    int
	LargeTransactions int
}

// Summary computes the bank wide totals.
func (b *Bank) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{Date: b.today(), Accounts: make(map[AccountStatus]int)}

	customers, err := b.Customers(ctx)
	if err != nil {
		return nil, err
	}
	s.Customers = len(customers)

	accounts, err := b.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		s.Accounts[acc.Status]++
		if acc.Status != Closed {
			s.TotalDeposits = s.TotalDeposits.Add(acc.Balance)
		}
	}

	loans, err := b.Loans(ctx)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		if loan.Status == LoanActive {
			s.ActiveLoans++
			s.LoansOutstanding = s.LoansOutstanding.Add(loan.Outstanding)
		}
	}
	s.NetLiquidity = s.TotalDeposits.Sub(s.LoansOutstanding)

	txs, err := b.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		s.Transactions++
		if b.large(tx.Amount) {
			s.LargeTransactions++
		}
		switch tx.Direction {
		case Credit:
			s.CreditVolume = s.CreditVolume.Add(tx.Amount)
		case Debit:
			s.DebitVolume = s.DebitVolume.Add(tx.Amount)
		}
	}

	cheques, err := b.Cheques(ctx)
	if err != nil {
		return nil, err
	}
	for _, chq := range cheques {
		switch chq.Status {
		case Issued:
			s.PendingCheques++
		case Bounced:
			s.BouncedCheques++
		}
	}
	return s, nil
}

// CustomerBalance is the position of one customer across their accounts.
type CustomerBalance struct {
	Customer Customer
	Accounts int   // accounts of every status
	Total    Money // sum of their balances
}

// CustomerBalances returns the total balance and the number of accounts of
// every registered customer, in identifier order.
func (b *Bank) CustomerBalances(ctx context.Context) ([]CustomerBalance, error) {
	customers, err := b.Customers(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := b.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(customers))
	out := make([]CustomerBalance, len(customers))
	for i, c := range customers {
		index[c.ID] = i
		out[i].Customer = c
	}
	for _, acc := range accounts {
		i, ok := index[acc.Customer]
		if !ok {
			continue
		}
		out[i].Accounts++
		out[i].Total = out[i].Total.Add(acc.Balance)
	}
	return out, nil
}
