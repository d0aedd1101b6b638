package bank

// ChequeStatus is the state of a cheque. Issued is the only non terminal state.
type ChequeStatus int

const (
	Issued ChequeStatus = iota
	Cleared
	Bounced
	Cancelled
)

var chequeStatusNames = []string{"issued", "cleared", "bounced", "cancelled"}

func (s ChequeStatus) String() string { return enumName(s, chequeStatusNames) }

// ParseChequeStatus parses a string into a ChequeStatus.
func ParseChequeStatus(s string) (ChequeStatus, error) {
	return parseEnum[ChequeStatus]("cheque status", s, chequeStatusNames)
}

func (s ChequeStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *ChequeStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseChequeStatus(string(b))
	return
}

// Terminal reports whether no transition can leave s.
func (s ChequeStatus) Terminal() bool {
	switch s {
	case Cleared, Bounced, Cancelled:
		return true
	default:
		return false
	}
}

// BounceReason is the structured cause of a bounced cheque. NotBounced is the
// value of every cheque that did not bounce.
type BounceReason int

const (
	NotBounced BounceReason = iota
	DrawerInsufficientFunds
	DrawerInactive
)

var bounceReasonNames = []string{"", "insufficient-funds", "drawer-inactive"}

func (r BounceReason) String() string { return enumName(r, bounceReasonNames) }

// ParseBounceReason parses a string into a BounceReason.
func ParseBounceReason(s string) (BounceReason, error) {
	return parseEnum[BounceReason]("bounce reason", s, bounceReasonNames)
}

func (r BounceReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *BounceReason) UnmarshalText(b []byte) (err error) {
	*r, err = ParseBounceReason(string(b))
	return
}

// Remark returns the human readable remark stored next to the reason.
func (r BounceReason) Remark() string {
	switch r {
	case DrawerInsufficientFunds:
		return "Insufficient funds"
	case DrawerInactive:
		return "Drawer account not active"
	default:
		return ""
	}
}
