package bank

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

func TestConcurrentDeposits(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	id := open(t, b, "Asha", Savings, 1000)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Deposit(ctx, id, INR(10)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Deposit() failed: %v", err)
	}
	assertBalance(t, b, id, 1500)

	txs, err := b.Statement(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, tx := range txs {
		if seen[tx.ID] {
			t.Errorf("transaction id %s used twice", tx.ID)
		}
		seen[tx.ID] = true
	}
	if len(txs) != workers+1 {
		t.Errorf("got %d transactions, want %d", len(txs), workers+1)
	}
}

func TestConcurrentWithdrawalsKeepFloor(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	id := open(t, b, "Asha", Savings, 5000)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Withdraw(ctx, id, INR(1000))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case !errors.Is(err, ErrInsufficientFunds):
			t.Errorf("Withdraw() error = %v, want nil or %v", err, ErrInsufficientFunds)
		}
	}
	if successes != 4 {
		t.Errorf("%d withdrawals succeeded, want 4", successes)
	}
	assertBalance(t, b, id, 1000)
}

// TestFloorUnderRandomOperations runs a seeded random mix of operations and
// checks after every step that no open account is below its minimum balance.
func TestFloorUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	rng := rand.New(rand.NewPCG(2025, 3))

	accounts := []string{
		open(t, b, "Asha", Savings, 5000),
		open(t, b, "Asha", Current, 20000),
		open(t, b, "Ravi", Savings, 1000),
		open(t, b, "Ravi", FixedDeposit, 50000),
		open(t, b, "Mira", Current, 5000),
	}
	var loans []string
	for _, name := range []string{"Asha", "Ravi"} {
		r, err := b.ApplyLoan(ctx, LoanApplication{Customer: customer(t, b, name), Category: PersonalLoan, Principal: INR(20000), Tenure: 6})
		if err != nil {
			t.Fatal(err)
		}
		loans = append(loans, r.Loan.ID)
	}

	pick := func() string { return accounts[rng.IntN(len(accounts))] }
	amount := func() Money { return INR(float64(rng.IntN(6_000_000)+1) / 100) }
	expected := []error{ErrInsufficientFunds, ErrLimitExceeded, ErrAccountInactive, ErrSameAccount, ErrInvalidTransition}

	const steps = 3000
	for step := range steps {
		var (
			op  string
			err error
		)
		switch rng.IntN(7) {
		case 0:
			op = "deposit"
			_, err = b.Deposit(ctx, pick(), amount())
		case 1:
			op = "withdraw"
			_, err = b.Withdraw(ctx, pick(), amount())
		case 2:
			op = "transfer"
			from, to := pick(), pick()
			src, _ := b.Account(ctx, from)
			dst, _ := b.Account(ctx, to)
			_, err = b.Transfer(ctx, from, to, amount(), KindOf(src, dst))
		case 3:
			op = "cheque"
			var chq *ChequeReceipt
			if chq, err = b.IssueCheque(ctx, pick(), "Payee", amount()); err == nil {
				_, err = b.DepositCheque(ctx, chq.Cheque.Number, pick())
			}
		case 4:
			op = "emi"
			_, err = b.PayEMI(ctx, loans[rng.IntN(len(loans))], pick())
		case 5:
			op = "freeze"
			_, err = b.FreezeAccount(ctx, pick())
		case 6:
			op = "activate"
			_, err = b.ActivateAccount(ctx, pick())
		}
		if err != nil && !errorsIsAny(err, expected) {
			t.Fatalf("step %d: %s failed unexpectedly: %v", step, op, err)
		}

		all, err := b.Accounts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		for _, acc := range all {
			if acc.Status != Closed && acc.Balance.LessThan(acc.MinimumBalance) {
				t.Fatalf("step %d: after %s %s holds %v, below its minimum of %v", step, op, acc.ID, acc.Balance, acc.MinimumBalance)
			}
		}
	}

	for _, id := range accounts {
		txs, err := b.Statement(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if last := txs[len(txs)-1]; !last.BalanceAfter.Equal(balance(t, b, id)) {
			t.Errorf("%s: balance %v but last transaction %s leaves %v", id, balance(t, b, id), last.ID, last.BalanceAfter)
		}
	}
	if n := b.locks.size(); n != 0 {
		t.Errorf("%d lock slots left after the run, want 0", n)
	}
}

func errorsIsAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestOpposingTransfers(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	a := open(t, b, "Asha", Savings, 100000)
	c := open(t, b, "Ravi", Savings, 100000)

	const rounds = 40
	var wg sync.WaitGroup
	for i := range rounds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from, to := a, c
			if i%2 == 1 {
				from, to = c, a
			}
			if _, err := b.Transfer(ctx, from, to, INR(100), InterCustomer); err != nil {
				t.Errorf("Transfer(%s, %s) failed: %v", from, to, err)
			}
		}()
	}
	wg.Wait()
	assertBalance(t, b, a, 100000)
	assertBalance(t, b, c, 100000)
}

func TestLockTimeout(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.LockTimeout = 20 * time.Millisecond
	b, repo := newTestBank(t, WithOptions(opts))
	id := open(t, b, "Asha", Savings, 5000)

	release, err := b.locks.acquire(ctx, time.Second, accountKey(id))
	if err != nil {
		t.Fatal(err)
	}
	before := counts(t, repo)
	if _, err := b.Deposit(ctx, id, INR(10)); !errors.Is(err, ErrBusy) {
		t.Errorf("Deposit() on a locked account error = %v, want %v", err, ErrBusy)
	}
	release()
	if after := counts(t, repo); after[TransactionTable] != before[TransactionTable] {
		t.Errorf("a busy deposit wrote a transaction")
	}
	if _, err := b.Deposit(ctx, id, INR(10)); err != nil {
		t.Errorf("Deposit() after release failed: %v", err)
	}
}

func TestLockTableOrder(t *testing.T) {
	ctx := context.Background()
	l := newLockTable()

	release, err := l.acquire(ctx, time.Second, "b", "a", "b")
	if err != nil {
		t.Fatalf("acquire() failed: %v", err)
	}
	// "0" is taken first, then the wait on "a" times out.
	if _, err := l.acquire(ctx, 10*time.Millisecond, "a", "0"); !errors.Is(err, ErrBusy) {
		t.Errorf("acquire() error = %v, want %v", err, ErrBusy)
	}
	// A failed acquire releases what it took.
	r, err := l.acquire(ctx, 10*time.Millisecond, "0")
	if err != nil {
		t.Fatalf("0 was left locked: %v", err)
	}
	r()
	release()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	hold, _ := l.acquire(ctx, time.Second, "a")
	defer hold()
	if _, err := l.acquire(cancelled, time.Second, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire() with a cancelled context error = %v, want %v", err, context.Canceled)
	}
}

func TestLockTableForgetsIdleKeys(t *testing.T) {
	ctx := context.Background()
	l := newLockTable()

	release, err := l.acquire(ctx, time.Second, "account:ACC1001", "loan:LOAN001")
	if err != nil {
		t.Fatal(err)
	}
	if n := l.size(); n != 2 {
		t.Errorf("size() while held = %d, want 2", n)
	}
	if _, err := l.acquire(ctx, 10*time.Millisecond, "account:ACC1001"); !errors.Is(err, ErrBusy) {
		t.Errorf("acquire() error = %v, want %v", err, ErrBusy)
	}
	release()
	if n := l.size(); n != 0 {
		t.Errorf("size() after release = %d, want 0", n)
	}

	// Operations on unknown accounts do not leave slots behind.
	b, _ := newTestBank(t)
	if _, err := b.Deposit(ctx, "ACC9999", INR(10)); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("Deposit() error = %v, want %v", err, ErrAccountNotFound)
	}
	if n := b.locks.size(); n != 0 {
		t.Errorf("%d lock slots left after a deposit on an unknown account, want 0", n)
	}
}

func TestSequence(t *testing.T) {
	seq := newSequences()
	if got := seq[AccountTable].next(); got != "ACC1001" {
		t.Errorf("first account = %q, want %q", got, "ACC1001")
	}
	seq[TransactionTable].observe("TXN00041")
	seq[TransactionTable].observe("TXN00007")
	if got := seq[TransactionTable].next(); got != "TXN00042" {
		t.Errorf("next transaction = %q, want %q", got, "TXN00042")
	}
	if got := seq[ChequeTable].next(); got != "CHQ000001" {
		t.Errorf("first cheque = %q, want %q", got, "CHQ000001")
	}
	if got := seq[LoanTable].next(); got != "LOAN001" {
		t.Errorf("first loan = %q, want %q", got, "LOAN001")
	}
}

func TestResumeIdentifiers(t *testing.T) {
	ctx := context.Background()
	b, repo := newTestBank(t)
	open(t, b, "Asha", Savings, 5000)
	open(t, b, "Ravi", Savings, 5000)

	again, err := New(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	id := open(t, again, "Mira", Savings, 5000)
	if id != "ACC1003" {
		t.Errorf("account after resume = %q, want %q", id, "ACC1003")
	}
	txs, err := again.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if last := txs[len(txs)-1].ID; last != "TXN00003" {
		t.Errorf("last transaction = %q, want %q", last, "TXN00003")
	}
}
