package bank

// LoanCategory is a loan product. Each category has a fixed annual rate.
type LoanCategory int

const (
	HomeLoan LoanCategory = iota
	PersonalLoan
	CarLoan
	EducationLoan
	BusinessLoan
)

var loanCategoryNames = []string{"home", "personal", "car", "education", "business"}

func (c LoanCategory) String() string { return enumName(c, loanCategoryNames) }

// ParseLoanCategory parses a string into a LoanCategory.
func ParseLoanCategory(s string) (LoanCategory, error) {
	return parseEnum[LoanCategory]("loan category", s, loanCategoryNames)
}

func (c LoanCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *LoanCategory) UnmarshalText(b []byte) (err error) {
	*c, err = ParseLoanCategory(string(b))
	return
}

// Rate returns the annual rate charged for the category.
func (c LoanCategory) Rate() Rate {
	switch c {
	case HomeLoan:
		return R(8.5)
	case PersonalLoan:
		return R(12.0)
	case CarLoan:
		return R(9.0)
	case EducationLoan:
		return R(7.0)
	case BusinessLoan:
		return R(10.0)
	default:
		return Rate{}
	}
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus int

const (
	LoanActive LoanStatus = iota
	LoanClosed
	LoanDefaulted
)

var loanStatusNames = []string{"active", "closed", "defaulted"}

func (s LoanStatus) String() string { return enumName(s, loanStatusNames) }

// ParseLoanStatus parses a string into a LoanStatus.
func ParseLoanStatus(s string) (LoanStatus, error) {
	return parseEnum[LoanStatus]("loan status", s, loanStatusNames)
}

func (s LoanStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *LoanStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseLoanStatus(string(b))
	return
}

// PaymentMethod tells how an EMI was paid.
type PaymentMethod int

const (
	// Administrative payments are recorded without any ledger movement, the
	// money came through a channel outside the bank.
	Administrative PaymentMethod = iota
	// AccountDebit payments are debited from a funding account of the bank.
	AccountDebit
)

var paymentMethodNames = []string{"administrative", "account-debit"}

func (m PaymentMethod) String() string { return enumName(m, paymentMethodNames) }

// ParsePaymentMethod parses a string into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return parseEnum[PaymentMethod]("payment method", s, paymentMethodNames)
}

func (m PaymentMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *PaymentMethod) UnmarshalText(b []byte) (err error) {
	*m, err = ParsePaymentMethod(string(b))
	return
}
