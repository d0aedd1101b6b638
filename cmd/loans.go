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

// --- Loan Apply Command ---

type loanApplyCmd struct {
	customer string
	category string
	amount   string
	tenure   int
	account  string
}

func (*loanApplyCmd) Name() string     { return "loan-apply" }
func (*loanApplyCmd) Synopsis() string { return "grant a loan at the rate of its category" }
func (*loanApplyCmd) Usage() string {
	return `bankctl loan-apply -customer <customer_id> -category <category> -amount <principal> -tenure <months> [-account <id>]

  Grants a loan. Categories are home, personal, car, education and business.
  The linked account, if any, must be active.
`
}

func (c *loanApplyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "customer", "", "Identifier of the borrowing customer, like CUST001")
	f.StringVar(&c.category, "category", "", "Loan category")
	f.StringVar(&c.amount, "amount", "", "Principal")
	f.IntVar(&c.tenure, "tenure", 0, "Tenure in months")
	f.StringVar(&c.account, "account", "", "Account linked to the loan")
}

func (c *loanApplyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "customer", "category", "amount") {
		return subcommands.ExitUsageError
	}
	category, err := bank.ParseLoanCategory(c.category)
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
		r, err := b.ApplyLoan(ctx, bank.LoanApplication{
			Customer:      c.customer,
			Category:      category,
			Principal:     amount,
			Tenure:        c.tenure,
			LinkedAccount: c.account,
		})
		if err != nil {
			return "", err
		}
		return renderer.RenderLoan(&renderer.LoanStatement{Loan: r.Loan}), nil
	})
}

// --- Loan Pay Command ---

type loanPayCmd struct {
	loan    string
	account string
}

func (*loanPayCmd) Name() string     { return "loan-pay" }
func (*loanPayCmd) Synopsis() string { return "pay one EMI of a loan" }
func (*loanPayCmd) Usage() string {
	return `bankctl loan-pay -loan <id> [-account <id>]

  Applies one EMI to an active loan. With -account the EMI is debited from
  that account, otherwise the payment is recorded without moving money.
`
}

func (c *loanPayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.loan, "loan", "", "Loan identifier")
	f.StringVar(&c.account, "account", "", "Account paying the EMI")
}

func (c *loanPayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "loan") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		if _, err := b.PayEMI(ctx, c.loan, c.account); err != nil {
			return "", err
		}
		return loanStatement(ctx, b, c.loan)
	})
}

// loanStatement renders a loan with all its payments.
func loanStatement(ctx context.Context, b *bank.Bank, id string) (string, error) {
	loan, err := b.Loan(ctx, id)
	if err != nil {
		return "", err
	}
	payments, err := b.Payments(ctx, id)
	if err != nil {
		return "", err
	}
	return renderer.RenderLoan(&renderer.LoanStatement{Loan: loan, Payments: payments}), nil
}

// --- Loan Default Command ---

type loanDefaultCmd struct {
	loan   string
	reason string
}

func (*loanDefaultCmd) Name() string     { return "loan-default" }
func (*loanDefaultCmd) Synopsis() string { return "mark an active loan as defaulted" }
func (*loanDefaultCmd) Usage() string {
	return `bankctl loan-default -loan <id> [-reason <text>]

  Marks a loan as defaulted. Its outstanding is left as is.
`
}

func (c *loanDefaultCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.loan, "loan", "", "Loan identifier")
	f.StringVar(&c.reason, "reason", "", "Reason recorded in the audit trail")
}

func (c *loanDefaultCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "loan") {
		return subcommands.ExitUsageError
	}
	return run(ctx, true, func(ctx context.Context, b *bank.Bank) (string, error) {
		r, err := b.DefaultLoan(ctx, c.loan, c.reason)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Loan %s is now %s with %s outstanding.", r.Loan.ID, r.Loan.Status, r.Loan.Outstanding), nil
	})
}

// --- EMI Command ---

type emiCmd struct {
	category string
	amount   string
	tenure   int
}

func (*emiCmd) Name() string     { return "emi" }
func (*emiCmd) Synopsis() string { return "quote the EMI of a loan" }
func (*emiCmd) Usage() string {
	return `bankctl emi -category <category> -amount <principal> -tenure <months>

  Quotes the EMI of a loan at the current rate of its category.
`
}

func (c *emiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Loan category")
	f.StringVar(&c.amount, "amount", "", "Principal")
	f.IntVar(&c.tenure, "tenure", 0, "Tenure in months")
}

func (c *emiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !required(f, "category", "amount") {
		return subcommands.ExitUsageError
	}
	category, err := bank.ParseLoanCategory(c.category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		q, err := b.QuoteEMI(ctx, category, amount, c.tenure)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("A %s loan of %s at %s over %d months costs an EMI of %s.\n\nTotal payment %s, of which interest %s.",
			q.Category, q.Principal, q.Rate, q.Tenure, q.EMI, q.TotalPayment, q.TotalInterest), nil
	})
}

// --- Schedule Command ---

type scheduleCmd struct {
	amount string
	rate   string
	tenure int
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "print the amortization schedule of a loan" }
func (*scheduleCmd) Usage() string {
	return `bankctl schedule -amount <principal> -rate <annual_percent> -tenure <months>

  Prints month by month how each EMI splits into interest and principal.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Principal")
	f.StringVar(&c.rate, "rate", "", "Annual rate in percent")
	f.IntVar(&c.tenure, "tenure", 0, "Tenure in months")
}

func (c *scheduleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	s, err := renderer.NewAmortizationSchedule(amount, rate, c.tenure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSchedule(s))
	return subcommands.ExitSuccess
}
