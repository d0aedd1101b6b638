package bank

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// TransferReceipt is the result of a successful transfer.
type TransferReceipt struct {
	Transfer Transfer
	From     Account
	To       Account
	Debit    Transaction
	Credit   Transaction
	Audit    AuditEntry
}

// Transfer moves amount from one account to another as a single unit: either
// both legs are committed with their transfer record and audit entry, or
// nothing is.
//
// Preconditions are checked in order and the first failure is returned: both
// accounts exist, they differ, amount is positive, amount is within the daily
// transfer limit, kind matches the owners of the accounts (see KindOf), the
// source keeps its minimum balance.
func (b *Bank) Transfer(ctx context.Context, from, to string, amount Money, kind TransferKind) (*TransferReceipt, error) {
	fields := []zap.Field{zap.String("from", from), zap.String("to", to), zap.Stringer("amount", amount)}

	release, err := b.lock(ctx, accountKey(from), accountKey(to))
	if err != nil {
		return nil, err
	}
	defer release()

	src, err := b.Account(ctx, from)
	if err != nil {
		return nil, b.reject("transfer", err, fields...)
	}
	dst, err := b.Account(ctx, to)
	if err != nil {
		return nil, b.reject("transfer", err, fields...)
	}
	if from == to {
		return nil, b.reject("transfer", fmt.Errorf("%w: %s", ErrSameAccount, from), fields...)
	}
	if err := checkAmount(amount); err != nil {
		return nil, b.reject("transfer", err, fields...)
	}
	if limit := b.opts.DailyTransferLimit; limit.IsPositive() && amount.GreaterThan(limit) {
		err := fmt.Errorf("%w: transfer of %s is above the daily limit of %s", ErrLimitExceeded, amount, limit)
		return nil, b.reject("transfer", err, fields...)
	}
	if kind.String() == "unknown" {
		return nil, b.reject("transfer", fmt.Errorf("unknown transfer kind %d", kind), fields...)
	}
	if want := KindOf(src, dst); kind != want {
		err := fmt.Errorf("%w: %s and %s make an %s transfer, not %s", ErrKindMismatch, from, to, want, kind)
		return nil, b.reject("transfer", err, fields...)
	}

	// Both legs work on local copies, a failing leg leaves the repository untouched.
	debit, err := b.debit(&src, amount, TransferDebit, "Transfer to "+to)
	if err != nil {
		return nil, b.reject("transfer", err, fields...)
	}
	credit, err := b.credit(&dst, amount, TransferCredit, "Transfer from "+from)
	if err != nil {
		return nil, b.reject("transfer", err, fields...)
	}

	now := b.now()
	trf := Transfer{
		ID:        b.seq[TransferTable].next(),
		From:      from,
		To:        to,
		Amount:    amount,
		Kind:      kind,
		Charges:   Money{},
		Time:      now,
		Status:    Success,
		Reference: b.refs.next(now),
	}
	audit := b.newAudit(ctx, TransferInitiated, b.detail(amount, "Transferred %s from %s to %s (%s, ref %s)", amount, from, to, kind, trf.Reference), Success)
	if err := b.commit(ctx, src, dst, debit, credit, trf, audit); err != nil {
		return nil, err
	}
	if b.large(amount) {
		b.log.Warn("large transaction", append(fields, zap.String("transfer", trf.ID))...)
	}
	b.log.Info("transfer", append(fields, zap.String("transfer", trf.ID), zap.String("reference", trf.Reference))...)
	return &TransferReceipt{Transfer: trf, From: src, To: dst, Debit: debit, Credit: credit, Audit: audit}, nil
}

// KindOf returns Internal when both accounts belong to the same customer and
// InterCustomer otherwise.
func KindOf(from, to Account) TransferKind {
	if from.Customer == to.Customer {
		return Internal
	}
	return InterCustomer
}

// Transfers returns every transfer in identifier order.
func (b *Bank) Transfers(ctx context.Context) ([]Transfer, error) {
	return list[Transfer](ctx, b.repo, TransferTable)
}
