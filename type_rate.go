package bank

import (
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
	daysPerYear   = decimal.NewFromInt(365)
)

// Rate is a nominal annual interest rate in percent (12 means 12% a year).
type Rate struct {
	value decimal.Decimal
}

// R returns an annual rate of value percent.
func R[T number](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a percent value like "8.5".
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, err
	}
	return Rate{value: d}, nil
}

// Monthly returns the monthly rate as a fraction (annual/1200).
func (r Rate) Monthly() decimal.Decimal { return r.value.Div(monthsPerYear.Mul(hundred)) }

func (r Rate) Equal(q Rate) bool        { return r.value.Equal(q.value) }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) IsNegative() bool         { return r.value.IsNegative() }
func (r Rate) Decimal() decimal.Decimal { return r.value }

// String returns the rate like "8.50%".
func (r Rate) String() string { return r.value.StringFixed(2) + "%" }

func (r Rate) MarshalJSON() ([]byte, error)  { return []byte(r.value.String()), nil }
func (r *Rate) UnmarshalJSON(b []byte) error { return r.value.UnmarshalJSON(b) }

// SimpleInterest returns principal·rate·days/365/100 rounded to paise.
func SimpleInterest(principal Money, rate Rate, days int) Money {
	if days <= 0 || !principal.IsPositive() {
		return Money{}
	}
	interest := principal.value.Mul(rate.value).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear).Div(hundred)
	return Money{value: interest}.Round()
}
