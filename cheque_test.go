package bank

import (
	"context"
	"errors"
	"testing"
)

func TestChequeClearance(t *testing.T) {
	ctx := context.Background()
	b, repo := newTestBank(t)
	a := open(t, b, "Asha", Savings, 5000)
	c := open(t, b, "Ravi", Current, 6000)

	issued, err := b.IssueCheque(ctx, a, "Ravi", INR(3000))
	if err != nil {
		t.Fatalf("IssueCheque() failed: %v", err)
	}
	if issued.Cheque.Number != "CHQ000001" || issued.Cheque.Status != Issued {
		t.Errorf("issued cheque = %+v", issued.Cheque)
	}
	assertBalance(t, b, a, 5000)

	before := counts(t, repo)
	r, err := b.DepositCheque(ctx, issued.Cheque.Number, c)
	if err != nil {
		t.Fatalf("DepositCheque() failed: %v", err)
	}
	if r.Cheque.Status != Cleared || r.Cheque.Cleared.IsZero() {
		t.Errorf("cheque = %+v, want Cleared with a date", r.Cheque)
	}
	if len(r.Transactions) != 2 || r.Transactions[0].Type != ChequeDebit || r.Transactions[1].Type != ChequeCredit {
		t.Errorf("transactions = %+v, want a cheque debit and a cheque credit", r.Transactions)
	}
	assertBalance(t, b, a, 2000)
	assertBalance(t, b, c, 9000)
	after := counts(t, repo)
	if got := after[TransactionTable] - before[TransactionTable]; got != 2 {
		t.Errorf("transactions grew by %d, want 2", got)
	}
	if got := after[AuditTable] - before[AuditTable]; got != 1 {
		t.Errorf("audit grew by %d, want 1", got)
	}

	if _, err := b.DepositCheque(ctx, issued.Cheque.Number, c); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second deposit error = %v, want %v", err, ErrInvalidTransition)
	}
	if _, err := b.CancelCheque(ctx, issued.Cheque.Number); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel of a cleared cheque error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestChequeBounce(t *testing.T) {
	ctx := context.Background()
	b, repo := newTestBank(t)
	a := open(t, b, "Asha", Savings, 2000)
	c := open(t, b, "Ravi", Current, 6000)

	issued, err := b.IssueCheque(ctx, a, "Ravi", INR(500))
	if err != nil {
		t.Fatal(err)
	}
	// The drawer spends the money before the cheque is presented.
	if _, err := b.Withdraw(ctx, a, INR(900)); err != nil {
		t.Fatal(err)
	}
	before := counts(t, repo)

	r, err := b.DepositCheque(ctx, issued.Cheque.Number, c)
	if err != nil {
		t.Fatalf("DepositCheque() failed: %v", err)
	}
	if r.Cheque.Status != Bounced || r.Cheque.BounceReason != DrawerInsufficientFunds || r.Cheque.Remark != "Insufficient funds" {
		t.Errorf("cheque = %+v, want bounced for insufficient funds", r.Cheque)
	}
	if r.Audit.Action != ChequeBounced || r.Audit.Status != Failed {
		t.Errorf("audit = %+v", r.Audit)
	}
	assertBalance(t, b, a, 1100)
	assertBalance(t, b, c, 6000)
	after := counts(t, repo)
	if got := after[TransactionTable] - before[TransactionTable]; got != 0 {
		t.Errorf("a bounce wrote %d transactions", got)
	}
	if got := after[AuditTable] - before[AuditTable]; got != 1 {
		t.Errorf("audit grew by %d, want 1", got)
	}

	stored, err := b.Cheque(ctx, issued.Cheque.Number)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != Bounced {
		t.Errorf("stored status = %v, want %v", stored.Status, Bounced)
	}
	if _, err := b.DepositCheque(ctx, issued.Cheque.Number, c); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("deposit of a bounced cheque error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestChequeBounceOnInactiveDrawer(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	a := open(t, b, "Asha", Savings, 5000)
	c := open(t, b, "Ravi", Current, 6000)
	issued, err := b.IssueCheque(ctx, a, "Ravi", INR(500))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.FreezeAccount(ctx, a); err != nil {
		t.Fatal(err)
	}
	r, err := b.DepositCheque(ctx, issued.Cheque.Number, c)
	if err != nil {
		t.Fatal(err)
	}
	if r.Cheque.BounceReason != DrawerInactive {
		t.Errorf("BounceReason = %v, want %v", r.Cheque.BounceReason, DrawerInactive)
	}
}

func TestChequeIssueChecks(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name    string
		drawer  string
		payee   string
		amount  Money
		wantErr error
	}{
		{"unknown drawer", "ACC9999", "Ravi", INR(10), ErrAccountNotFound},
		{"zero amount", "ACC1001", "Ravi", INR(0), ErrInvalidAmount},
		{"advisory floor", "ACC1001", "Ravi", INR(4500), ErrInsufficientFunds},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, repo := newTestBank(t)
			open(t, b, "Asha", Savings, 5000)
			if _, err := b.IssueCheque(ctx, tc.drawer, tc.payee, tc.amount); !errors.Is(err, tc.wantErr) {
				t.Errorf("IssueCheque() error = %v, want %v", err, tc.wantErr)
			}
			if n := count(t, repo, ChequeTable); n != 0 {
				t.Errorf("%d cheques stored after a rejected issue", n)
			}
		})
	}
}

func TestChequeCancel(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	a := open(t, b, "Asha", Savings, 5000)
	c := open(t, b, "Ravi", Current, 6000)
	issued, err := b.IssueCheque(ctx, a, "Ravi", INR(500))
	if err != nil {
		t.Fatal(err)
	}

	r, err := b.CancelCheque(ctx, issued.Cheque.Number)
	if err != nil {
		t.Fatalf("CancelCheque() failed: %v", err)
	}
	if r.Cheque.Status != Cancelled || r.Audit.Action != ChequeCancelled {
		t.Errorf("receipt = %+v", r)
	}
	if _, err := b.DepositCheque(ctx, issued.Cheque.Number, c); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("deposit of a cancelled cheque error = %v, want %v", err, ErrInvalidTransition)
	}
	if _, err := b.CancelCheque(ctx, issued.Cheque.Number); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second cancel error = %v, want %v", err, ErrInvalidTransition)
	}
	if _, err := b.CancelCheque(ctx, "CHQ999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancel of unknown cheque error = %v, want %v", err, ErrNotFound)
	}
	assertBalance(t, b, a, 5000)
}

func TestChequeDepositOnDrawer(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	a := open(t, b, "Asha", Savings, 5000)
	issued, err := b.IssueCheque(ctx, a, "Asha", INR(500))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.DepositCheque(ctx, issued.Cheque.Number, a); !errors.Is(err, ErrSameAccount) {
		t.Errorf("DepositCheque() error = %v, want %v", err, ErrSameAccount)
	}
}
