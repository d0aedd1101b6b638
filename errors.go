package bank

import "errors"

// Errors returned by the engine. They are wrapped with the specific reason,
// callers match them with errors.Is.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account not active")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrBusy              = errors.New("resource busy")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCustomer   = errors.New("invalid customer")
	ErrKindMismatch      = errors.New("transfer kind does not match the account owners")
)
