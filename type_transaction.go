package bank

// TransactionType tags the event a transaction record was written for.
type TransactionType int

const (
	Deposit TransactionType = iota
	Withdrawal
	TransferDebit
	TransferCredit
	ChequeDebit
	ChequeCredit
	EMIPayment
	AccountOpening
)

var transactionTypeNames = []string{
	"deposit", "withdrawal", "transfer-debit", "transfer-credit",
	"cheque-debit", "cheque-credit", "emi-payment", "account-opening",
}

func (t TransactionType) String() string { return enumName(t, transactionTypeNames) }

// ParseTransactionType parses a string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	return parseEnum[TransactionType]("transaction type", s, transactionTypeNames)
}

func (t TransactionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *TransactionType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseTransactionType(string(b))
	return
}

// Direction returns the side of the ledger the type always books on.
func (t TransactionType) Direction() Direction {
	switch t {
	case Withdrawal, TransferDebit, ChequeDebit, EMIPayment:
		return Debit
	default:
		return Credit
	}
}

// Direction is the side of a single-entry mutation.
type Direction int

const (
	Credit Direction = iota
	Debit
)

var directionNames = []string{"credit", "debit"}

func (d Direction) String() string { return enumName(d, directionNames) }

// ParseDirection parses a string into a Direction.
func ParseDirection(s string) (Direction, error) {
	return parseEnum[Direction]("direction", s, directionNames)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *Direction) UnmarshalText(b []byte) (err error) {
	*d, err = ParseDirection(string(b))
	return
}

// Status is the outcome recorded on transactions, transfers, payments and audit entries.
type Status int

const (
	Success Status = iota
	Failed
)

var statusNames = []string{"success", "failed"}

func (s Status) String() string { return enumName(s, statusNames) }

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	return parseEnum[Status]("status", s, statusNames)
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *Status) UnmarshalText(b []byte) (err error) {
	*s, err = ParseStatus(string(b))
	return
}

// TransferKind distinguishes transfers between accounts of one customer from
// transfers to another customer.
type TransferKind int

const (
	Internal TransferKind = iota
	InterCustomer
)

var transferKindNames = []string{"internal", "inter-customer"}

func (k TransferKind) String() string { return enumName(k, transferKindNames) }

// ParseTransferKind parses a string into a TransferKind.
func ParseTransferKind(s string) (TransferKind, error) {
	return parseEnum[TransferKind]("transfer kind", s, transferKindNames)
}

func (k TransferKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *TransferKind) UnmarshalText(b []byte) (err error) {
	*k, err = ParseTransferKind(string(b))
	return
}
