package bank

import "fmt"

// Action tags what an audit entry is about.
type Action int

const (
	AccountOpened Action = iota
	Deposited
	Withdrawn
	TransferInitiated
	ChequeIssued
	ChequeCleared
	ChequeBounced
	ChequeCancelled
	LoanApplied
	EMIPaid
	LoanDefault
	AccountFrozen
	AccountActivated
	AccountClosed
	CustomerAdded
)

var actionNames = []string{
	"ACCOUNT_OPENED", "DEPOSIT", "WITHDRAWAL", "TRANSFER_INITIATED",
	"CHEQUE_ISSUED", "CHEQUE_CLEARED", "CHEQUE_BOUNCED", "CHEQUE_CANCELLED",
	"LOAN_APPLIED", "EMI_PAID", "LOAN_DEFAULTED",
	"ACCOUNT_FROZEN", "ACCOUNT_ACTIVATED", "ACCOUNT_CLOSED",
	"CUSTOMER_ADDED",
}

func (a Action) String() string { return enumName(a, actionNames) }

// ParseAction parses an action tag like "EMI_PAID".
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown audit action: %q", s)
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *Action) UnmarshalText(b []byte) (err error) {
	*a, err = ParseAction(string(b))
	return
}
