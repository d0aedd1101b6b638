package bank

// AccountType is the product an account was opened as.
type AccountType int

const (
	Savings AccountType = iota
	Current
	FixedDeposit
)

var accountTypeNames = []string{"savings", "current", "fixed-deposit"}

func (t AccountType) String() string { return enumName(t, accountTypeNames) }

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	return parseEnum[AccountType]("account type", s, accountTypeNames)
}

func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *AccountType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseAccountType(string(b))
	return
}

// Terms returns the default annual rate and minimum balance of the product.
func (t AccountType) Terms() (Rate, Money) {
	switch t {
	case Savings:
		return R(4.0), INR(1000)
	case Current:
		return R(0), INR(5000)
	case FixedDeposit:
		return R(7.5), INR(0)
	default:
		return Rate{}, Money{}
	}
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus int

const (
	Active AccountStatus = iota
	Frozen
	Closed
)

var accountStatusNames = []string{"active", "frozen", "closed"}

func (s AccountStatus) String() string { return enumName(s, accountStatusNames) }

// ParseAccountStatus parses a string into an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	return parseEnum[AccountStatus]("account status", s, accountStatusNames)
}

func (s AccountStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *AccountStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseAccountStatus(string(b))
	return
}
