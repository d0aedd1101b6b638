package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/bank"
	"github.com/etnz/bank/renderer"
)

// --- Transfer Command ---

type transferCmd struct {
	from   string
	to     string
	amount string
	kind   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `bankctl transfer -from <id> -to <id> -amount <amount> [-kind <internal|inter-customer>]

  Debits the source and credits the destination in a single operation.
  The kind is internal when both accounts belong to the same customer and
  inter-customer otherwise. A -kind that disagrees is refused.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source account")
	f.StringVar(&c.to, "to", "", "Destination account")
	f.StringVar(&c.amount, "amount", "", "Amount to transfer")
	f.StringVar(&c.kind, "kind", "", "Transfer kind: internal or inter-customer")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "from", "to", "amount") {
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var kind bank.TransferKind
	if c.kind != "" {
		if kind, err = bank.ParseTransferKind(c.kind); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		if c.kind == "" {
			kind = transferKind(ctx, b, c.from, c.to)
		}
		r, err := b.Transfer(ctx, c.from, c.to, amount, kind)
		if err != nil {
			return "", err
		}
		t := r.Transfer
		return fmt.Sprintf("Transferred %s from %s to %s (%s, reference %s).\n\nBalances: %s %s, %s %s.",
			t.Amount, t.From, t.To, t.ID, t.Reference, r.From.ID, r.From.Balance, r.To.ID, r.To.Balance), nil
	})
}

// transferKind returns the kind of a transfer between two accounts.
// Unknown accounts are left for the transfer itself to report.
func transferKind(ctx context.Context, b *bank.Bank, from, to string) bank.TransferKind {
	src, err := b.Account(ctx, from)
	if err != nil {
		return bank.InterCustomer
	}
	dst, err := b.Account(ctx, to)
	if err != nil {
		return bank.InterCustomer
	}
	return bank.KindOf(src, dst)
}

// --- Cheque Commands ---

type chequeIssueCmd struct {
	drawer string
	payee  string
	amount string
}

func (*chequeIssueCmd) Name() string     { return "cheque-issue" }
func (*chequeIssueCmd) Synopsis() string { return "issue a cheque on an account" }
func (*chequeIssueCmd) Usage() string {
	return `bankctl cheque-issue -drawer <id> -payee <name> -amount <amount>

  Issues a cheque. No money moves until the cheque is deposited.
`
}

func (c *chequeIssueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.drawer, "drawer", "", "Account the cheque is drawn on")
	f.StringVar(&c.payee, "payee", "", "Payee name")
	f.StringVar(&c.amount, "amount", "", "Cheque amount")
}

func (c *chequeIssueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "drawer", "payee", "amount") {
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.IssueCheque(ctx, c.drawer, c.payee, amount)
		if err != nil {
			return "", err
		}
		return renderer.Cheque(r.Cheque) + ".", nil
	})
}

type chequeDepositCmd struct {
	cheque  string
	account string
}

func (*chequeDepositCmd) Name() string     { return "cheque-deposit" }
func (*chequeDepositCmd) Synopsis() string { return "deposit a cheque, clearing or bouncing it" }
func (*chequeDepositCmd) Usage() string {
	return `bankctl cheque-deposit -cheque <number> -account <id>

  Presents an issued cheque for credit to an account. The cheque clears when
  its drawer can pay it, and bounces otherwise.
`
}

func (c *chequeDepositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cheque, "cheque", "", "Cheque number")
	f.StringVar(&c.account, "account", "", "Account credited with the cheque")
}

func (c *chequeDepositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "cheque", "account") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.DepositCheque(ctx, c.cheque, c.account)
		if err != nil {
			return "", err
		}
		return renderer.Cheque(r.Cheque) + ".", nil
	})
}

type chequeCancelCmd struct {
	cheque string
}

func (*chequeCancelCmd) Name() string     { return "cheque-cancel" }
func (*chequeCancelCmd) Synopsis() string { return "cancel an issued cheque" }
func (*chequeCancelCmd) Usage() string {
	return `bankctl cheque-cancel -cheque <number>

  Cancels a cheque that has not been deposited yet.
`
}

func (c *chequeCancelCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cheque, "cheque", "", "Cheque number")
}

func (c *chequeCancelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "cheque") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.CancelCheque(ctx, c.cheque)
		if err != nil {
			return "", err
		}
		return renderer.Cheque(r.Cheque) + ".", nil
	})
}
