package bank

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code of the only currency the ledger books.
const Currency = money.INR

// fraction is the number of minor-unit digits of Currency (paise).
const fraction = 2

type number interface {
	float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal
}

func newDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Money is an amount of rupees held as an exact decimal.
//
// Intermediate results (interest, EMI) may carry more digits; every value
// committed to a record goes through Round first, so the ledger never
// accumulates drift.
type Money struct {
	value decimal.Decimal // as major unit value
}

// INR returns value rupees.
func INR[T number](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a plain decimal amount like "1500.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: d}, nil
}

// MustParseMoney is like ParseMoney but panics on error.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// currency returns the money's currency
func (m Money) currency() *money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return money.New(0, Currency).Currency()
}

// String returns the amount formatted like "₹1,000.00".
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Round(fraction).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// Round returns m rounded half away from zero to paise.
func (m Money) Round() Money { return Money{value: m.value.Round(fraction)} }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// Float returns an approximate float, only meant for display and charts.
func (m Money) Float() float64 { return m.value.InexactFloat64() }

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(d decimal.Decimal) Money     { return Money{value: m.value.Mul(d)} }
func (m Money) Div(d decimal.Decimal) Money     { return Money{value: m.value.Div(d)} }

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if b.LessThan(a) {
		return b
	}
	return a
}

// MarshalJSON writes the amount as a bare number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.StringFixed(fraction)), nil
}

// UnmarshalJSON accepts both numbers and quoted numbers.
func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}

var _ json.Marshaler = Money{}
var _ json.Unmarshaler = (*Money)(nil)
