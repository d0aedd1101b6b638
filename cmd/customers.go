package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/etnz/bank"
	"github.com/etnz/bank/renderer"
)

type customerAddCmd struct {
	name  string
	phone string
	email string
}

func (*customerAddCmd) Name() string     { return "customer-add" }
func (*customerAddCmd) Synopsis() string { return "register a customer" }
func (*customerAddCmd) Usage() string {
	return `bankctl customer-add -name <name> [-phone <phone>] [-email <email>]

  Registers a customer and prints its identifier. Accounts and loans are
  opened for registered customers only.
`
}

func (c *customerAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Full name of the customer")
	f.StringVar(&c.phone, "phone", "", "Phone number")
	f.StringVar(&c.email, "email", "", "Email address")
}

func (c *customerAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "name") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.AddCustomer(ctx, bank.NewCustomer{Name: c.name, Phone: c.phone, Email: c.email})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Registered customer %s (%s).", r.Customer.ID, r.Customer.Name), nil
	})
}

type customersCmd struct{}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "list customers with their total balance" }
func (*customersCmd) Usage() string {
	return `bankctl customers

  Lists every customer with the number of accounts they own and the sum of
  their balances.
`
}

func (*customersCmd) SetFlags(*flag.FlagSet) {}

func (*customersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		rows, err := b.CustomerBalances(ctx)
		if err != nil {
			return "", err
		}
		return renderer.CustomersMarkdown(rows), nil
	})
}
