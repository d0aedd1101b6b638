package bank

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ChequeReceipt is the result of a cheque operation.
type ChequeReceipt struct {
	Cheque       Cheque
	Transactions []Transaction // the drawer debit and the payee credit of a cleared cheque
	Audit        AuditEntry
}

// Cheque returns the cheque number.
func (b *Bank) Cheque(ctx context.Context, number string) (Cheque, error) {
	chq, err := get[Cheque](ctx, b.repo, ChequeTable, number)
	if errors.Is(err, ErrNotFound) {
		return Cheque{}, fmt.Errorf("cheque %s: %w", number, ErrNotFound)
	}
	return chq, err
}

// Cheques returns every cheque in number order.
func (b *Bank) Cheques(ctx context.Context) ([]Cheque, error) {
	return list[Cheque](ctx, b.repo, ChequeTable)
}

func checkIssued(chq Cheque) error {
	switch chq.Status {
	case Issued:
		return nil
	case Cleared, Bounced, Cancelled:
		return fmt.Errorf("%w: cheque %s is already %s", ErrInvalidTransition, chq.Number, chq.Status)
	default:
		return fmt.Errorf("%w: cheque %s has unknown status", ErrInvalidTransition, chq.Number)
	}
}

// IssueCheque issues a cheque on the drawer account. No money moves: the
// minimum balance check is only advisory and is made again on deposit.
func (b *Bank) IssueCheque(ctx context.Context, drawer, payee string, amount Money) (*ChequeReceipt, error) {
	fields := []zap.Field{zap.String("drawer", drawer), zap.Stringer("amount", amount)}
	release, err := b.lock(ctx, accountKey(drawer))
	if err != nil {
		return nil, err
	}
	defer release()

	acc, err := b.Account(ctx, drawer)
	if err != nil {
		return nil, b.reject("cheque issue", err, fields...)
	}
	if payee == "" {
		return nil, b.reject("cheque issue", fmt.Errorf("payee is required"), fields...)
	}
	if err := checkAmount(amount); err != nil {
		return nil, b.reject("cheque issue", err, fields...)
	}
	if err := checkActive(&acc); err != nil {
		return nil, b.reject("cheque issue", err, fields...)
	}
	if err := checkFloor(&acc, amount); err != nil {
		return nil, b.reject("cheque issue", err, fields...)
	}

	chq := Cheque{
		Number: b.seq[ChequeTable].next(),
		Drawer: drawer,
		Payee:  payee,
		Amount: amount,
		Issued: b.today(),
		Status: Issued,
	}
	audit := b.newAudit(ctx, ChequeIssued, fmt.Sprintf("Cheque %s of %s issued on %s to %s", chq.Number, amount, drawer, payee), Success)
	if err := b.commit(ctx, chq, audit); err != nil {
		return nil, err
	}
	b.log.Info("cheque issued", append(fields, zap.String("cheque", chq.Number))...)
	return &ChequeReceipt{Cheque: chq, Audit: audit}, nil
}

// DepositCheque presents an Issued cheque for credit to destination.
//
// The drawer's balance is checked again now. When it cannot cover the cheque
// the cheque bounces: its status and reason are recorded, no money moves and
// the bounced receipt is returned without error. Otherwise the drawer is
// debited and destination credited in one commit and the cheque is cleared.
func (b *Bank) DepositCheque(ctx context.Context, number, destination string) (*ChequeReceipt, error) {
	fields := []zap.Field{zap.String("cheque", number), zap.String("destination", destination)}

	// The drawer never changes, it can be read before locking.
	chq, err := b.Cheque(ctx, number)
	if err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	release, err := b.lock(ctx, chequeKey(number), accountKey(chq.Drawer), accountKey(destination))
	if err != nil {
		return nil, err
	}
	defer release()

	if chq, err = b.Cheque(ctx, number); err != nil {
		return nil, err
	}
	if err := checkIssued(chq); err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	dst, err := b.Account(ctx, destination)
	if err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	if destination == chq.Drawer {
		return nil, b.reject("cheque deposit", fmt.Errorf("%w: cheque %s deposited on its drawer %s", ErrSameAccount, number, destination), fields...)
	}
	if err := checkActive(&dst); err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	drawer, err := b.Account(ctx, chq.Drawer)
	if err != nil {
		return nil, err
	}

	switch {
	case checkActive(&drawer) != nil:
		return b.bounce(ctx, chq, DrawerInactive)
	case checkFloor(&drawer, chq.Amount) != nil:
		return b.bounce(ctx, chq, DrawerInsufficientFunds)
	}

	debit, err := b.debit(&drawer, chq.Amount, ChequeDebit, fmt.Sprintf("Cheque %s to %s", chq.Number, chq.Payee))
	if err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	credit, err := b.credit(&dst, chq.Amount, ChequeCredit, fmt.Sprintf("Cheque %s from %s", chq.Number, chq.Drawer))
	if err != nil {
		return nil, b.reject("cheque deposit", err, fields...)
	}
	chq.Status = Cleared
	chq.Cleared = b.today()
	audit := b.newAudit(ctx, ChequeCleared, b.detail(chq.Amount, "Cheque %s of %s cleared from %s to %s", chq.Number, chq.Amount, chq.Drawer, destination), Success)
	if err := b.commit(ctx, drawer, dst, debit, credit, chq, audit); err != nil {
		return nil, err
	}
	b.log.Info("cheque cleared", append(fields, zap.Stringer("amount", chq.Amount))...)
	return &ChequeReceipt{Cheque: chq, Transactions: []Transaction{debit, credit}, Audit: audit}, nil
}

// bounce records a cheque that could not be honoured. Locks are held by the caller.
func (b *Bank) bounce(ctx context.Context, chq Cheque, reason BounceReason) (*ChequeReceipt, error) {
	chq.Status = Bounced
	chq.BounceReason = reason
	chq.Remark = reason.Remark()
	audit := b.newAudit(ctx, ChequeBounced, fmt.Sprintf("Cheque %s of %s on %s bounced: %s", chq.Number, chq.Amount, chq.Drawer, chq.Remark), Failed)
	if err := b.commit(ctx, chq, audit); err != nil {
		return nil, err
	}
	b.log.Warn("cheque bounced", zap.String("cheque", chq.Number), zap.Stringer("reason", reason))
	return &ChequeReceipt{Cheque: chq, Audit: audit}, nil
}

// CancelCheque cancels an Issued cheque.
func (b *Bank) CancelCheque(ctx context.Context, number string) (*ChequeReceipt, error) {
	release, err := b.lock(ctx, chequeKey(number))
	if err != nil {
		return nil, err
	}
	defer release()

	chq, err := b.Cheque(ctx, number)
	if err != nil {
		return nil, b.reject("cheque cancel", err, zap.String("cheque", number))
	}
	if err := checkIssued(chq); err != nil {
		return nil, b.reject("cheque cancel", err, zap.String("cheque", number))
	}
	chq.Status = Cancelled
	chq.Remark = "Cancelled by drawer"
	audit := b.newAudit(ctx, ChequeCancelled, fmt.Sprintf("Cheque %s of %s on %s cancelled", chq.Number, chq.Amount, chq.Drawer), Success)
	if err := b.commit(ctx, chq, audit); err != nil {
		return nil, err
	}
	b.log.Info("cheque cancelled", zap.String("cheque", number))
	return &ChequeReceipt{Cheque: chq, Audit: audit}, nil
}
