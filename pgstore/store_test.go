package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/etnz/bank"
)

// newTestStore connects to the database named by BANK_TEST_DATABASE_URL and
// starts from empty tables.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("BANK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BANK_TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	if _, err := s.pool.Exec(ctx, `TRUNCATE bank_records RESTART IDENTITY; DELETE FROM bank_meta`); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEmptyDatabase(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Meta.Schema != bank.SchemaVersion || len(snap.Records) != 0 {
		t.Errorf("Load() = %+v, want an empty snapshot", snap)
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, time.March, 10, 18, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }

	repo := bank.NewMemoryRepository()
	b, err := bank.New(ctx, repo, bank.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	asha, err := b.AddCustomer(ctx, bank.NewCustomer{Name: "Asha Rao"})
	if err != nil {
		t.Fatal(err)
	}
	ravi, err := b.AddCustomer(ctx, bank.NewCustomer{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatal(err)
	}
	from, err := b.OpenAccount(ctx, bank.OpenAccountRequest{Customer: asha.Customer.ID, Type: bank.Savings, InitialDeposit: bank.INR(20000)})
	if err != nil {
		t.Fatal(err)
	}
	to, err := b.OpenAccount(ctx, bank.OpenAccountRequest{Customer: ravi.Customer.ID, Type: bank.Current, InitialDeposit: bank.INR(10000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Transfer(ctx, from.Account.ID, to.Account.ID, bank.INR(2500), bank.InterCustomer); err != nil {
		t.Fatal(err)
	}

	snap, err := bank.Dump(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Meta.Install == "" || !got.Meta.Saved.Equal(now) {
		t.Errorf("Load().Meta = %+v", got.Meta)
	}
	if len(got.Records) != len(snap.Records) {
		t.Fatalf("Load() returned %d records, want %d", len(got.Records), len(snap.Records))
	}
	for i := range snap.Records {
		want, _ := bank.MarshalRecord(snap.Records[i])
		have, _ := bank.MarshalRecord(got.Records[i])
		if diff := cmp.Diff(string(want), string(have)); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	// Saving again replaces the records and keeps the install id.
	install := got.Meta.Install
	if err := s.Save(ctx, got); err != nil {
		t.Fatal(err)
	}
	again, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Meta.Install != install || len(again.Records) != len(snap.Records) {
		t.Errorf("second Save() changed the snapshot: %+v, %d records", again.Meta, len(again.Records))
	}
}
