package bank

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxTenure is the longest loan the bank grants, in months.
const MaxTenure = 360

// emiPrecision is the number of decimals kept for (1+r)^n before dividing.
const emiPrecision = 24

// CalculateEMI returns the equated monthly installment repaying principal over
// tenure months at the annual rate:
//
//	EMI = P·r·(1+r)^n / ((1+r)^n − 1), r = rate/1200
//
// and P/n when the rate is zero. The result is rounded to paise. Invalid inputs
// return zero and an error wrapping ErrInvalidAmount.
func CalculateEMI(principal Money, rate Rate, tenure int) (Money, error) {
	if !principal.IsPositive() || tenure <= 0 || rate.IsNegative() {
		return Money{}, fmt.Errorf("%w: EMI needs a positive principal and tenure and a non negative rate (got %s, %d months, %s)",
			ErrInvalidAmount, principal, tenure, rate)
	}
	n := decimal.NewFromInt(int64(tenure))
	r := rate.Monthly()
	if r.IsZero() {
		return principal.Div(n).Round(), nil
	}
	f, err := decimal.NewFromInt(1).Add(r).PowInt32(int32(tenure))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	f = f.Round(emiPrecision)
	emi := principal.value.Mul(r).Mul(f).Div(f.Sub(decimal.NewFromInt(1)))
	return Money{value: emi}.Round(), nil
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month       int
	Payment     Money
	Interest    Money
	Principal   Money
	Outstanding Money
}

// Schedule returns the amortization schedule of a loan as a lazy sequence of
// tenure installments keyed by month number. It is a pure function of its
// arguments and can be ranged over any number of times. Each month pays the
// EMI; the last one settles whatever principal remains so the principal parts
// add up to the loan. Invalid inputs give an empty schedule.
func Schedule(principal Money, rate Rate, tenure int) iter.Seq2[int, Installment] {
	return func(yield func(int, Installment) bool) {
		emi, err := CalculateEMI(principal, rate, tenure)
		if err != nil {
			return
		}
		r := rate.Monthly()
		outstanding := principal.Round()
		for month := 1; month <= tenure; month++ {
			interest := outstanding.Mul(r).Round()
			part := emi.Sub(interest)
			if month == tenure || part.GreaterThan(outstanding) {
				part = outstanding
			}
			outstanding = outstanding.Sub(part)
			if outstanding.IsNegative() {
				outstanding = Money{}
			}
			row := Installment{
				Month:       month,
				Payment:     part.Add(interest),
				Interest:    interest,
				Principal:   part,
				Outstanding: outstanding,
			}
			if !yield(month, row) {
				return
			}
		}
	}
}

// LoanApplication describes a loan to grant.
type LoanApplication struct {
	Customer      string
	Category      LoanCategory
	Principal     Money
	Tenure        int    // in months
	LinkedAccount string // optional, must exist when set
}

// LoanReceipt is the result of a loan operation.
type LoanReceipt struct {
	Loan  Loan
	Audit AuditEntry
}

// PaymentReceipt is the result of an EMI payment.
type PaymentReceipt struct {
	Loan        Loan
	Payment     LoanPayment
	Transaction *Transaction // the funding account debit, nil for administrative payments
	Audit       AuditEntry
}

// Loan returns the loan id.
func (b *Bank) Loan(ctx context.Context, id string) (Loan, error) {
	loan, err := get[Loan](ctx, b.repo, LoanTable, id)
	if errors.Is(err, ErrNotFound) {
		return Loan{}, fmt.Errorf("loan %s: %w", id, ErrNotFound)
	}
	return loan, err
}

// Loans returns every loan in identifier order.
func (b *Bank) Loans(ctx context.Context) ([]Loan, error) {
	return list[Loan](ctx, b.repo, LoanTable)
}

// Payments returns the payments of loan id in identifier order.
func (b *Bank) Payments(ctx context.Context, id string) ([]LoanPayment, error) {
	all, err := list[LoanPayment](ctx, b.repo, PaymentTable)
	if err != nil {
		return nil, err
	}
	var out []LoanPayment
	for _, p := range all {
		if p.Loan == id {
			out = append(out, p)
		}
	}
	return out, nil
}

// ApplyLoan grants a loan at its category rate. The outstanding starts at the principal.
func (b *Bank) ApplyLoan(ctx context.Context, app LoanApplication) (*LoanReceipt, error) {
	fields := []zap.Field{zap.String("customer", app.Customer), zap.Stringer("principal", app.Principal)}
	if err := b.checkCustomer(ctx, app.Customer); err != nil {
		return nil, b.reject("loan", err, fields...)
	}
	if app.Category.String() == "unknown" {
		return nil, b.reject("loan", fmt.Errorf("unknown loan category %d", app.Category), fields...)
	}
	if err := checkAmount(app.Principal); err != nil {
		return nil, b.reject("loan", err, fields...)
	}
	if app.Tenure <= 0 || app.Tenure > MaxTenure {
		return nil, b.reject("loan", fmt.Errorf("%w: tenure must be between 1 and %d months, got %d", ErrInvalidAmount, MaxTenure, app.Tenure), fields...)
	}
	if app.LinkedAccount != "" {
		acc, err := b.Account(ctx, app.LinkedAccount)
		if err != nil {
			return nil, b.reject("loan", err, fields...)
		}
		if err := checkActive(&acc); err != nil {
			return nil, b.reject("loan", err, fields...)
		}
	}
	rate := app.Category.Rate()
	emi, err := CalculateEMI(app.Principal, rate, app.Tenure)
	if err != nil {
		return nil, b.reject("loan", err, fields...)
	}

	loan := Loan{
		ID:            b.seq[LoanTable].next(),
		Customer:      app.Customer,
		Category:      app.Category,
		Principal:     app.Principal,
		Rate:          rate,
		Tenure:        app.Tenure,
		EMI:           emi,
		Outstanding:   app.Principal,
		Status:        LoanActive,
		Start:         b.today(),
		LinkedAccount: app.LinkedAccount,
	}
	audit := b.newAudit(ctx, LoanApplied, b.detail(loan.Principal, "%s loan %s of %s at %s over %d months for %s, EMI %s", loan.Category, loan.ID, loan.Principal, loan.Rate, loan.Tenure, loan.Customer, loan.EMI), Success)
	if err := b.commit(ctx, loan, audit); err != nil {
		return nil, err
	}
	b.log.Info("loan granted", append(fields, zap.String("loan", loan.ID), zap.Stringer("emi", loan.EMI))...)
	return &LoanReceipt{Loan: loan, Audit: audit}, nil
}

func checkLoanActive(loan Loan) error {
	switch loan.Status {
	case LoanActive:
		return nil
	case LoanClosed, LoanDefaulted:
		return fmt.Errorf("%w: loan %s is %s", ErrInvalidTransition, loan.ID, loan.Status)
	default:
		return fmt.Errorf("%w: loan %s has unknown status", ErrInvalidTransition, loan.ID)
	}
}

// PayEMI applies one EMI to an Active loan. Interest is charged on the current
// outstanding, the principal part is capped at the outstanding, and the loan
// closes once nothing is outstanding.
//
// With an empty funding account the payment is administrative: it is recorded
// but no account is debited. Otherwise the installment is debited from funding
// in the same commit, and a funding account that cannot pay rejects the whole
// payment.
func (b *Bank) PayEMI(ctx context.Context, id, funding string) (*PaymentReceipt, error) {
	fields := []zap.Field{zap.String("loan", id), zap.String("funding", funding)}
	keys := []string{loanKey(id)}
	if funding != "" {
		keys = append(keys, accountKey(funding))
	}
	release, err := b.lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	loan, err := b.Loan(ctx, id)
	if err != nil {
		return nil, b.reject("emi", err, fields...)
	}
	if err := checkLoanActive(loan); err != nil {
		return nil, b.reject("emi", err, fields...)
	}

	interest := loan.Outstanding.Mul(loan.Rate.Monthly()).Round()
	principal := MinMoney(loan.EMI.Sub(interest), loan.Outstanding)
	if principal.IsNegative() {
		principal = Money{}
	}
	amount := principal.Add(interest)
	loan.Outstanding = loan.Outstanding.Sub(principal)
	if !loan.Outstanding.IsPositive() {
		loan.Outstanding = Money{}
		loan.Status = LoanClosed
	}

	pay := LoanPayment{
		ID:               b.seq[PaymentTable].next(),
		Loan:             loan.ID,
		Date:             b.today(),
		Amount:           amount,
		Principal:        principal,
		Interest:         interest,
		OutstandingAfter: loan.Outstanding,
		Method:           Administrative,
		Status:           Success,
	}
	records := []Record{loan, pay}

	var tx *Transaction
	if funding != "" {
		acc, err := b.Account(ctx, funding)
		if err != nil {
			return nil, b.reject("emi", err, fields...)
		}
		debit, err := b.debit(&acc, amount, EMIPayment, "EMI "+loan.ID)
		if err != nil {
			return nil, b.reject("emi", err, fields...)
		}
		pay.Method = AccountDebit
		pay.Account = funding
		records = []Record{loan, pay, acc, debit}
		tx = &debit
	}

	detail := fmt.Sprintf("EMI %s paid on %s (principal %s, interest %s), outstanding %s", amount, loan.ID, principal, interest, loan.Outstanding)
	if loan.Status == LoanClosed {
		detail += ", loan closed"
	}
	audit := b.newAudit(ctx, EMIPaid, detail, Success)
	if err := b.commit(ctx, append(records, audit)...); err != nil {
		return nil, err
	}
	b.log.Info("emi paid", append(fields, zap.String("payment", pay.ID), zap.Stringer("outstanding", loan.Outstanding), zap.Stringer("status", loan.Status))...)
	return &PaymentReceipt{Loan: loan, Payment: pay, Transaction: tx, Audit: audit}, nil
}

// DefaultLoan marks an Active loan as defaulted. It is an administrative
// decision, the outstanding is left as is.
func (b *Bank) DefaultLoan(ctx context.Context, id, reason string) (*LoanReceipt, error) {
	release, err := b.lock(ctx, loanKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	loan, err := b.Loan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkLoanActive(loan); err != nil {
		return nil, b.reject("loan default", err, zap.String("loan", id))
	}
	loan.Status = LoanDefaulted
	detail := fmt.Sprintf("Loan %s defaulted with %s outstanding", loan.ID, loan.Outstanding)
	if reason != "" {
		detail += ": " + reason
	}
	audit := b.newAudit(ctx, LoanDefault, detail, Success)
	if err := b.commit(ctx, loan, audit); err != nil {
		return nil, err
	}
	b.log.Warn("loan defaulted", zap.String("loan", id), zap.Stringer("outstanding", loan.Outstanding))
	return &LoanReceipt{Loan: loan, Audit: audit}, nil
}
