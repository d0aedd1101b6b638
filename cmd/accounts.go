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

// --- Open Command ---

type openCmd struct {
	customer string
	typ      string
	amount   string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open an account with its initial deposit" }
func (*openCmd) Usage() string {
	return `bankctl open -customer <customer_id> -type <savings|current|fixed-deposit> -amount <initial_deposit>

  Opens an account for a registered customer (see customer-add). The initial
  deposit must cover the minimum balance of the account type.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "customer", "", "Identifier of the customer owning the account, like CUST001")
	f.StringVar(&c.typ, "type", "savings", "Account type: savings, current or fixed-deposit")
	f.StringVar(&c.amount, "amount", "", "Initial deposit")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "customer", "amount") {
		return subcommands.ExitUsageError
	}
	typ, err := bank.ParseAccountType(c.typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.OpenAccount(ctx, bank.OpenAccountRequest{Customer: c.customer, Type: typ, InitialDeposit: amount})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Opened %s account %s for %s (%s) with %s.", r.Account.Type, r.Account.ID, ownerName(ctx, b, r.Account.Customer), r.Account.Customer, r.Account.Balance), nil
	})
}

// ownerName returns the name of customer id, or id itself when it is not registered.
func ownerName(ctx context.Context, b *bank.Bank, id string) string {
	c, err := b.Customer(ctx, id)
	if err != nil {
		return id
	}
	return c.Name
}

// --- Deposit and Withdraw Commands ---

type depositCmd struct {
	account string
	amount  string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit cash into an account" }
func (*depositCmd) Usage() string {
	return `bankctl deposit -account <id> -amount <amount>

  Credits cash to an active account.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account identifier")
	f.StringVar(&c.amount, "amount", "", "Amount to deposit")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return cash(ctx, f, c.account, c.amount, (*bank.Bank).Deposit)
}

type withdrawCmd struct {
	account string
	amount  string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw cash from an account" }
func (*withdrawCmd) Usage() string {
	return `bankctl withdraw -account <id> -amount <amount>

  Debits cash from an active account. The account must keep its minimum
  balance and the amount must be within the withdrawal limit.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account identifier")
	f.StringVar(&c.amount, "amount", "", "Amount to withdraw")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return cash(ctx, f, c.account, c.amount, (*bank.Bank).Withdraw)
}

// cash runs a deposit or a withdrawal.
func cash(ctx context.Context, f *flag.FlagSet, account, value string, op func(*bank.Bank, context.Context, string, bank.Money) (*bank.Receipt, error)) subcommands.ExitStatus {
	if !required(f, "account", "amount") {
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := op(b, ctx, account, amount)
		if err != nil {
			return "", err
		}
		return renderer.Transaction(*r.Transaction) + ".", nil
	})
}

// --- Balance Command ---

type balanceCmd struct {
	account string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display the balance of an account" }
func (*balanceCmd) Usage() string {
	return `bankctl balance -account <id>

  Displays the balance of an account and how much can be withdrawn from it.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account identifier")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "account") {
		return subcommands.ExitUsageError
	}
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		acc, err := b.Account(ctx, c.account)
		if err != nil {
			return "", err
		}
		available := acc.Headroom()
		if acc.Status != bank.Active || available.IsNegative() {
			available = bank.Money{}
		}
		return fmt.Sprintf("%s (%s, %s, %s): balance %s, available %s.", acc.ID, ownerName(ctx, b, acc.Customer), acc.Type, acc.Status, acc.Balance, available), nil
	})
}

// --- Statement Command ---

type statementCmd struct {
	account string
	tail    int
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "display the statement of an account" }
func (*statementCmd) Usage() string {
	return `bankctl statement -account <id> [-tail <n>]

  Displays the account and its transactions, oldest first.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account identifier")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "account") {
		return subcommands.ExitUsageError
	}
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		acc, err := b.Account(ctx, c.account)
		if err != nil {
			return "", err
		}
		txs, err := b.Statement(ctx, c.account)
		if err != nil {
			return "", err
		}
		if c.tail > 0 && len(txs) > c.tail {
			txs = txs[len(txs)-c.tail:]
		}
		return renderer.RenderStatement(&renderer.Statement{Account: acc, Transactions: txs}), nil
	})
}

// --- Freeze, Activate and Close Commands ---

// statusCmd moves an account to another status.
type statusCmd struct {
	name    string
	to      bank.AccountStatus
	account string
}

func (c *statusCmd) Name() string { return c.name }
func (c *statusCmd) Synopsis() string {
	switch c.to {
	case bank.Frozen:
		return "freeze an account, refusing every movement of money"
	case bank.Closed:
		return "close an account, paying out its balance"
	default:
		return "activate a frozen account"
	}
}
func (c *statusCmd) Usage() string {
	return fmt.Sprintf(`bankctl %s -account <id>

  %s.
`, c.name, c.Synopsis())
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account identifier")
}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "account") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		var (
			r   *bank.Receipt
			err error
		)
		switch c.to {
		case bank.Frozen:
			r, err = b.FreezeAccount(ctx, c.account)
		case bank.Closed:
			r, err = b.CloseAccount(ctx, c.account)
		default:
			r, err = b.ActivateAccount(ctx, c.account)
		}
		if err != nil {
			return "", err
		}
		msg := fmt.Sprintf("Account %s is now %s.", r.Account.ID, r.Account.Status)
		if r.Transaction != nil {
			msg += fmt.Sprintf(" Paid out %s.", r.Transaction.Amount)
		}
		return msg, nil
	})
}

// --- Interest Command ---

type interestCmd struct {
	amount string
	rate   string
	days   int
}

func (*interestCmd) Name() string     { return "interest" }
func (*interestCmd) Synopsis() string { return "compute simple interest" }
func (*interestCmd) Usage() string {
	return `bankctl interest -amount <principal> -rate <annual_percent> -days <n>

  Computes simple interest: principal × rate × days / 365 / 100.
`
}

func (c *interestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Principal")
	f.StringVar(&c.rate, "rate", "", "Annual rate in percent")
	f.IntVar(&c.days, "days", 365, "Number of days")
}

func (c *interestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "amount", "rate") {
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	rate, err := bank.ParseRate(c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.days < 0 {
		fmt.Fprintln(os.Stderr, "Error: -days must not be negative")
		return subcommands.ExitUsageError
	}
	interest := bank.SimpleInterest(amount, rate, c.days)
	printMarkdown(fmt.Sprintf("Interest on %s at %s for %d days: %s.", amount, rate, c.days, interest))
	return subcommands.ExitSuccess
}
