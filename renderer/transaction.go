package renderer

import (
	"fmt"

	"github.com/etnz/bank"
)

// Transaction renders a transaction to a string.
func Transaction(tx bank.Transaction) string {
	switch tx.Type {
	case bank.Deposit:
		return fmt.Sprintf("Deposited %s into %s, balance %s", tx.Amount, tx.Account, tx.BalanceAfter)
	case bank.Withdrawal:
		return fmt.Sprintf("Withdrew %s from %s, balance %s", tx.Amount, tx.Account, tx.BalanceAfter)
	case bank.AccountOpening:
		return fmt.Sprintf("Opened %s with %s", tx.Account, tx.Amount)
	case bank.EMIPayment:
		return fmt.Sprintf("Paid %s from %s (%s), balance %s", tx.Amount, tx.Account, tx.Remark, tx.BalanceAfter)
	default:
		return fmt.Sprintf("%s of %s on %s (%s), balance %s", tx.Type, tx.Amount, tx.Account, tx.Remark, tx.BalanceAfter)
	}
}

// Cheque renders the state of a cheque to a string.
func Cheque(c bank.Cheque) string {
	switch c.Status {
	case bank.Issued:
		return fmt.Sprintf("Cheque %s of %s issued on %s to %s", c.Number, c.Amount, c.Drawer, c.Payee)
	case bank.Cleared:
		return fmt.Sprintf("Cheque %s of %s cleared on %s", c.Number, c.Amount, c.Cleared)
	case bank.Bounced:
		return fmt.Sprintf("Cheque %s of %s bounced: %s", c.Number, c.Amount, c.Remark)
	case bank.Cancelled:
		return fmt.Sprintf("Cheque %s of %s cancelled", c.Number, c.Amount)
	default:
		return fmt.Sprintf("Cheque %s", c.Number)
	}
}
