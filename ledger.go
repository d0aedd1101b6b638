package bank

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Receipt is the result of an operation on a single account.
type Receipt struct {
	Account     Account
	Transaction *Transaction // nil when no money moved
	Audit       AuditEntry
}

// OpenAccountRequest describes a new account.
type OpenAccountRequest struct {
	Customer       string
	Type           AccountType
	InitialDeposit Money
}

// Account returns the account id.
func (b *Bank) Account(ctx context.Context, id string) (Account, error) {
	acc, err := get[Account](ctx, b.repo, AccountTable, id)
	if errors.Is(err, ErrNotFound) {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return acc, err
}

// Accounts returns every account in identifier order.
func (b *Bank) Accounts(ctx context.Context) ([]Account, error) {
	return list[Account](ctx, b.repo, AccountTable)
}

// checkActive returns ErrAccountInactive unless acc is Active.
func checkActive(acc *Account) error {
	switch acc.Status {
	case Active:
		return nil
	case Frozen, Closed:
		return fmt.Errorf("%w: %s is %s", ErrAccountInactive, acc.ID, acc.Status)
	default:
		return fmt.Errorf("%w: %s has unknown status", ErrAccountInactive, acc.ID)
	}
}

// checkFloor returns ErrInsufficientFunds when debiting amount from acc would
// take it below its minimum balance.
func checkFloor(acc *Account, amount Money) error {
	if acc.Balance.Sub(amount).LessThan(acc.MinimumBalance) {
		return fmt.Errorf("%w, minimum required %s (available %s)", ErrInsufficientFunds, acc.MinimumBalance, acc.Headroom())
	}
	return nil
}

func checkAmount(amount Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount)
	}
	if !amount.Round().Equal(amount) {
		return fmt.Errorf("%w: %s has more than two decimals", ErrInvalidAmount, amount.Decimal())
	}
	return nil
}

// debit takes amount out of acc and returns the transaction recording it.
// acc must be locked by the caller, who commits acc and the transaction together.
func (b *Bank) debit(acc *Account, amount Money, typ TransactionType, remark string) (Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return Transaction{}, err
	}
	if err := checkActive(acc); err != nil {
		return Transaction{}, err
	}
	if err := checkFloor(acc, amount); err != nil {
		return Transaction{}, err
	}
	acc.Balance = acc.Balance.Sub(amount).Round()
	return b.record(acc.ID, typ, amount, Debit, acc.Balance, remark), nil
}

// credit adds amount to acc and returns the transaction recording it.
// acc must be locked by the caller, who commits acc and the transaction together.
func (b *Bank) credit(acc *Account, amount Money, typ TransactionType, remark string) (Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return Transaction{}, err
	}
	if err := checkActive(acc); err != nil {
		return Transaction{}, err
	}
	acc.Balance = acc.Balance.Add(amount).Round()
	return b.record(acc.ID, typ, amount, Credit, acc.Balance, remark), nil
}

// detail appends the large transaction flag when needed.
func (b *Bank) detail(amount Money, format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	if b.large(amount) {
		s += " (large transaction)"
	}
	return s
}

// OpenAccount opens an account with its product terms and books the initial deposit.
func (b *Bank) OpenAccount(ctx context.Context, req OpenAccountRequest) (*Receipt, error) {
	if err := b.checkCustomer(ctx, req.Customer); err != nil {
		return nil, b.reject("open", err, zap.String("customer", req.Customer))
	}
	rate, floor := req.Type.Terms()
	if req.Type.String() == "unknown" {
		return nil, b.reject("open", fmt.Errorf("unknown account type %d", req.Type))
	}
	if err := checkAmount(req.InitialDeposit); err != nil {
		return nil, b.reject("open", err, zap.String("customer", req.Customer))
	}
	if req.InitialDeposit.LessThan(floor) {
		err := fmt.Errorf("%w, minimum required %s to open a %s account", ErrInsufficientFunds, floor, req.Type)
		return nil, b.reject("open", err, zap.String("customer", req.Customer))
	}

	acc := Account{
		ID:             b.seq[AccountTable].next(),
		Customer:       req.Customer,
		Type:           req.Type,
		Balance:        req.InitialDeposit.Round(),
		MinimumBalance: floor,
		InterestRate:   rate,
		Status:         Active,
		Opened:         b.today(),
	}
	tx := b.record(acc.ID, AccountOpening, acc.Balance, Credit, acc.Balance, "Initial Deposit")
	audit := b.newAudit(ctx, AccountOpened, b.detail(acc.Balance, "Opened %s account %s for %s with %s", acc.Type, acc.ID, acc.Customer, acc.Balance), Success)
	if err := b.commit(ctx, acc, tx, audit); err != nil {
		return nil, err
	}
	b.log.Info("account opened", zap.String("account", acc.ID), zap.String("customer", acc.Customer), zap.Stringer("balance", acc.Balance))
	return &Receipt{Account: acc, Transaction: &tx, Audit: audit}, nil
}

// Deposit credits cash to an account.
func (b *Bank) Deposit(ctx context.Context, id string, amount Money) (*Receipt, error) {
	return b.cash(ctx, id, amount, Deposit)
}

// Withdraw debits cash from an account. The minimum balance is always honoured.
func (b *Bank) Withdraw(ctx context.Context, id string, amount Money) (*Receipt, error) {
	return b.cash(ctx, id, amount, Withdrawal)
}

func (b *Bank) cash(ctx context.Context, id string, amount Money, typ TransactionType) (*Receipt, error) {
	op := typ.String()
	release, err := b.lock(ctx, accountKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	acc, err := b.Account(ctx, id)
	if err != nil {
		return nil, b.reject(op, err, zap.String("account", id))
	}

	var (
		tx     Transaction
		action Action
		detail string
	)
	switch typ {
	case Deposit:
		tx, err = b.credit(&acc, amount, Deposit, "Cash Deposit")
		action, detail = Deposited, b.detail(amount, "Deposited %s into %s", amount, id)
	case Withdrawal:
		if err = checkAmount(amount); err != nil {
			break
		}
		if limit := b.opts.WithdrawalLimit; limit.IsPositive() && amount.GreaterThan(limit) {
			err = fmt.Errorf("%w: withdrawal of %s is above the %s limit", ErrLimitExceeded, amount, limit)
			break
		}
		tx, err = b.debit(&acc, amount, Withdrawal, "Cash Withdrawal")
		action, detail = Withdrawn, b.detail(amount, "Withdrew %s from %s", amount, id)
	default:
		err = fmt.Errorf("%v is not a cash operation", typ)
	}
	if err != nil {
		return nil, b.reject(op, err, zap.String("account", id), zap.Stringer("amount", amount))
	}

	audit := b.newAudit(ctx, action, detail, Success)
	if err := b.commit(ctx, acc, tx, audit); err != nil {
		return nil, err
	}
	if b.large(amount) {
		b.log.Warn("large transaction", zap.String("account", id), zap.String("transaction", tx.ID), zap.Stringer("amount", amount))
	}
	b.log.Info(op, zap.String("account", id), zap.String("transaction", tx.ID), zap.Stringer("balance", acc.Balance))
	return &Receipt{Account: acc, Transaction: &tx, Audit: audit}, nil
}

// FreezeAccount blocks every movement on an Active account.
func (b *Bank) FreezeAccount(ctx context.Context, id string) (*Receipt, error) {
	return b.setStatus(ctx, id, Frozen)
}

// ActivateAccount unfreezes a Frozen account.
func (b *Bank) ActivateAccount(ctx context.Context, id string) (*Receipt, error) {
	return b.setStatus(ctx, id, Active)
}

// CloseAccount pays out the remaining balance (the minimum balance does not
// apply to a closing account) and closes it for good.
func (b *Bank) CloseAccount(ctx context.Context, id string) (*Receipt, error) {
	return b.setStatus(ctx, id, Closed)
}

func (b *Bank) setStatus(ctx context.Context, id string, to AccountStatus) (*Receipt, error) {
	release, err := b.lock(ctx, accountKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	acc, err := b.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	from := acc.Status

	var action Action
	switch {
	case to == Frozen && from == Active:
		action = AccountFrozen
	case to == Active && from == Frozen:
		action = AccountActivated
	case to == Closed && (from == Active || from == Frozen):
		action = AccountClosed
	default:
		return nil, b.reject("status change", fmt.Errorf("%w: account %s cannot go from %s to %s", ErrInvalidTransition, id, from, to))
	}

	records := []Record{}
	var payout *Transaction
	if to == Closed && acc.Balance.IsPositive() {
		amount := acc.Balance
		acc.Balance = Money{}
		tx := b.record(acc.ID, Withdrawal, amount, Debit, acc.Balance, "Closing Payout")
		payout = &tx
		records = append(records, tx)
	}
	acc.Status = to
	audit := b.newAudit(ctx, action, fmt.Sprintf("Account %s %s", id, to), Success)
	records = append(records, acc, audit)
	if err := b.commit(ctx, records...); err != nil {
		return nil, err
	}
	b.log.Info("account status changed", zap.String("account", id), zap.Stringer("from", from), zap.Stringer("to", to))
	return &Receipt{Account: acc, Transaction: payout, Audit: audit}, nil
}
