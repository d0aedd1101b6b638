package bank

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/etnz/bank/date"
)

// testNow is the fixed clock of test banks.
var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// cmpOpts compares records holding dates.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}

// newTestBank returns a bank over an empty memory repository with a fixed clock.
func newTestBank(t *testing.T, opts ...Option) (*Bank, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	b, err := New(context.Background(), repo, append([]Option{WithClock(func() time.Time { return testNow })}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return b, repo
}

// customer is a helper for tests to return the id of the customer called
// name, registering it on first use.
func customer(t *testing.T, b *Bank, name string) string {
	t.Helper()
	ctx := context.Background()
	all, err := b.Customers(ctx)
	if err != nil {
		t.Fatalf("Customers() failed: %v", err)
	}
	for _, c := range all {
		if c.Name == name {
			return c.ID
		}
	}
	r, err := b.AddCustomer(ctx, NewCustomer{Name: name})
	if err != nil {
		t.Fatalf("AddCustomer(%s) failed: %v", name, err)
	}
	return r.Customer.ID
}

// open is a helper for tests to open an account for the customer called name
// and return its id.
func open(t *testing.T, b *Bank, name string, typ AccountType, deposit float64) string {
	t.Helper()
	r, err := b.OpenAccount(context.Background(), OpenAccountRequest{Customer: customer(t, b, name), Type: typ, InitialDeposit: INR(deposit)})
	if err != nil {
		t.Fatalf("OpenAccount(%s, %v, %v) failed: %v", name, typ, deposit, err)
	}
	return r.Account.ID
}

// balance is a helper for tests to read the balance of an account.
func balance(t *testing.T, b *Bank, id string) Money {
	t.Helper()
	acc, err := b.Account(context.Background(), id)
	if err != nil {
		t.Fatalf("Account(%s) failed: %v", id, err)
	}
	return acc.Balance
}

// count is a helper for tests to count the records of a table.
func count(t *testing.T, repo Repository, table Table) int {
	t.Helper()
	recs, err := repo.List(context.Background(), table)
	if err != nil {
		t.Fatalf("List(%v) failed: %v", table, err)
	}
	return len(recs)
}

// counts returns the size of every table.
func counts(t *testing.T, repo Repository) map[Table]int {
	t.Helper()
	m := make(map[Table]int)
	for _, table := range Tables {
		m[table] = count(t, repo, table)
	}
	return m
}

func assertBalance(t *testing.T, b *Bank, id string, want float64) {
	t.Helper()
	if got := balance(t, b, id); !got.Equal(INR(want)) {
		t.Errorf("balance of %s = %v, want %v", id, got, INR(want))
	}
}
