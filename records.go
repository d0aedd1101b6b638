package bank

import (
	"strconv"
	"strings"
	"time"

	"github.com/etnz/bank/date"
)

// Table is the kind of a persisted record.
type Table int

const (
	AccountTable Table = iota
	TransactionTable
	TransferTable
	ChequeTable
	LoanTable
	PaymentTable
	AuditTable
	CustomerTable
)

// Tables lists every table in the order snapshots are written.
var Tables = []Table{CustomerTable, AccountTable, TransactionTable, TransferTable, ChequeTable, LoanTable, PaymentTable, AuditTable}

var tableNames = []string{"account", "transaction", "transfer", "cheque", "loan", "payment", "audit", "customer"}

func (t Table) String() string { return enumName(t, tableNames) }

// ParseTable parses a string into a Table.
func ParseTable(s string) (Table, error) {
	return parseEnum[Table]("table", s, tableNames)
}

func (t Table) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *Table) UnmarshalText(b []byte) (err error) {
	*t, err = ParseTable(string(b))
	return
}

// Record is any entity stored in a Repository.
type Record interface {
	Table() Table
	Key() string
}

// Customer is a registered owner of accounts and loans.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	Registered date.Date `json:"registered"`
}

func (c Customer) Table() Table { return CustomerTable }
func (c Customer) Key() string  { return c.ID }

// Account is a customer account.
type Account struct {
	ID             string        `json:"id"`
	Customer       string        `json:"customer"`
	Type           AccountType   `json:"type"`
	Balance        Money         `json:"balance"`
	MinimumBalance Money         `json:"minimumBalance"`
	InterestRate   Rate          `json:"interestRate"`
	Status         AccountStatus `json:"status"`
	Opened         date.Date     `json:"opened"`
}

func (a Account) Table() Table { return AccountTable }
func (a Account) Key() string  { return a.ID }

// Headroom returns how much can be debited without breaching the minimum balance.
func (a Account) Headroom() Money { return a.Balance.Sub(a.MinimumBalance) }

// Transaction is the immutable record of one side of a balance change.
type Transaction struct {
	ID           string          `json:"id"`
	Account      string          `json:"account"`
	Type         TransactionType `json:"type"`
	Amount       Money           `json:"amount"`
	Direction    Direction       `json:"direction"`
	BalanceAfter Money           `json:"balanceAfter"`
	Time         time.Time       `json:"time"`
	Remark       string          `json:"remark,omitempty"`
	Status       Status          `json:"status"`
}

func (t Transaction) Table() Table { return TransactionTable }
func (t Transaction) Key() string  { return t.ID }

// Transfer records a completed movement between two accounts.
type Transfer struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Amount    Money        `json:"amount"`
	Kind      TransferKind `json:"kind"`
	Charges   Money        `json:"charges"`
	Time      time.Time    `json:"time"`
	Status    Status       `json:"status"`
	Reference string       `json:"reference"`
}

func (t Transfer) Table() Table { return TransferTable }
func (t Transfer) Key() string  { return t.ID }

// Cheque is a payment promise drawn on an account.
type Cheque struct {
	Number       string       `json:"number"`
	Drawer       string       `json:"drawer"`
	Payee        string       `json:"payee"`
	Amount       Money        `json:"amount"`
	Issued       date.Date    `json:"issued"`
	Cleared      date.Date    `json:"cleared"`
	Status       ChequeStatus `json:"status"`
	BounceReason BounceReason `json:"bounceReason,omitempty"`
	Remark       string       `json:"remark,omitempty"`
}

func (c Cheque) Table() Table { return ChequeTable }
func (c Cheque) Key() string  { return c.Number }

// Loan is an amortizing loan. Outstanding is owned by the loan engine.
type Loan struct {
	ID            string       `json:"id"`
	Customer      string       `json:"customer"`
	Category      LoanCategory `json:"category"`
	Principal     Money        `json:"principal"`
	Rate          Rate         `json:"rate"`
	Tenure        int          `json:"tenure"`
	EMI           Money        `json:"emi"`
	Outstanding   Money        `json:"outstanding"`
	Status        LoanStatus   `json:"status"`
	Start         date.Date    `json:"start"`
	LinkedAccount string       `json:"linkedAccount,omitempty"`
}

func (l Loan) Table() Table { return LoanTable }
func (l Loan) Key() string  { return l.ID }

// Maturity returns the date of the last scheduled installment.
func (l Loan) Maturity() date.Date { return l.Start.AddMonths(l.Tenure) }

// LoanPayment records one EMI cycle.
type LoanPayment struct {
	ID               string        `json:"id"`
	Loan             string        `json:"loan"`
	Date             date.Date     `json:"date"`
	Amount           Money         `json:"amount"`
	Principal        Money         `json:"principal"`
	Interest         Money         `json:"interest"`
	OutstandingAfter Money         `json:"outstandingAfter"`
	Method           PaymentMethod `json:"method"`
	Account          string        `json:"account,omitempty"`
	Status           Status        `json:"status"`
}

func (p LoanPayment) Table() Table { return PaymentTable }
func (p LoanPayment) Key() string  { return p.ID }

// AuditEntry is one line of the audit trail.
type AuditEntry struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Action Action    `json:"action"`
	Detail string    `json:"detail"`
	Time   time.Time `json:"time"`
	Status Status    `json:"status"`
}

func (e AuditEntry) Table() Table { return AuditTable }
func (e AuditEntry) Key() string  { return e.ID }

// idNumber returns the numeric suffix of an identifier like "TXN00042", or -1.
func idNumber(id string) int64 {
	i := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return -1
	}
	n, err := strconv.ParseInt(id[i:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// byID orders records by the numeric part of their key.
func byID[T Record](a, b T) int {
	na, nb := idNumber(a.Key()), idNumber(b.Key())
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return strings.Compare(a.Key(), b.Key())
	}
}
