package bank

import (
	"context"
	"slices"
)

// record builds the transaction of one side of a balance change. It never
// fails: the caller has already validated and applied the change, and commits
// the transaction with it.
func (b *Bank) record(account string, typ TransactionType, amount Money, dir Direction, balanceAfter Money, remark string) Transaction {
	return Transaction{
		ID:           b.seq[TransactionTable].next(),
		Account:      account,
		Type:         typ,
		Amount:       amount,
		Direction:    dir,
		BalanceAfter: balanceAfter,
		Time:         b.now(),
		Remark:       remark,
		Status:       Success,
	}
}

// Transactions returns every transaction in identifier order.
func (b *Bank) Transactions(ctx context.Context) ([]Transaction, error) {
	return list[Transaction](ctx, b.repo, TransactionTable)
}

// Statement returns the transactions of one account in identifier order.
func (b *Bank) Statement(ctx context.Context, account string) ([]Transaction, error) {
	if _, err := b.Account(ctx, account); err != nil {
		return nil, err
	}
	all, err := b.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(t Transaction) bool { return t.Account != account }), nil
}
