package bank

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/etnz/bank/date"
)

// Options are the tunable limits of the engine.
type Options struct {
	// DailyTransferLimit is the largest amount a single transfer may move.
	DailyTransferLimit Money
	// WithdrawalLimit is the largest amount a single cash withdrawal may take.
	WithdrawalLimit Money
	// LargeTransactionThreshold flags operations at or above it in logs and audit.
	LargeTransactionThreshold Money
	// LockTimeout bounds the wait for an account, cheque or loan lock.
	LockTimeout time.Duration
}

// DefaultOptions returns the limits the bank runs with unless configured otherwise.
func DefaultOptions() Options {
	return Options{
		DailyTransferLimit:        INR(50000),
		WithdrawalLimit:           INR(50000),
		LargeTransactionThreshold: INR(100000),
		LockTimeout:               2 * time.Second,
	}
}

// Option configures a Bank.
type Option func(*Bank)

// WithOptions replaces the engine limits.
func WithOptions(o Options) Option { return func(b *Bank) { b.opts = o } }

// WithLogger sets the logger, the default discards everything.
func WithLogger(l *zap.Logger) Option { return func(b *Bank) { b.log = l } }

// WithClock sets the source of timestamps and value dates.
func WithClock(now func() time.Time) Option { return func(b *Bank) { b.now = now } }

// WithQuoteCache sets the cache used by QuoteEMI.
func WithQuoteCache(c QuoteCache) Option { return func(b *Bank) { b.quotes = c } }

// Bank is the ledger engine. All state lives in its Repository; a Bank only
// adds locks, identifier sequences and configuration on top of it.
type Bank struct {
	repo   Repository
	locks  *lockTable
	seq    sequences
	refs   *references
	quotes QuoteCache
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

// New returns an engine over repo. Identifier sequences resume after the
// largest identifier found in repo.
func New(ctx context.Context, repo Repository, opts ...Option) (*Bank, error) {
	b := &Bank{
		repo:   repo,
		locks:  newLockTable(),
		seq:    newSequences(),
		refs:   newReferences(),
		quotes: NewMemoryQuoteCache(),
		opts:   DefaultOptions(),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	for table, seq := range b.seq {
		recs, err := repo.List(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("could not resume %s identifiers: %w", table, err)
		}
		for _, rec := range recs {
			seq.observe(rec.Key())
		}
	}
	return b, nil
}

// Options returns the limits in use.
func (b *Bank) Options() Options { return b.opts }

func (b *Bank) today() date.Date { return date.Of(b.now()) }

// lock takes the locks of keys with the configured timeout.
func (b *Bank) lock(ctx context.Context, keys ...string) (func(), error) {
	release, err := b.locks.acquire(ctx, b.opts.LockTimeout, keys...)
	if err != nil {
		b.log.Warn("lock wait failed", zap.Strings("keys", keys), zap.Error(err))
		return nil, err
	}
	return release, nil
}

// commit stores every record of an operation at once.
func (b *Bank) commit(ctx context.Context, records ...Record) error {
	if err := b.repo.Upsert(ctx, records...); err != nil {
		b.log.Error("commit failed", zap.Int("records", len(records)), zap.Error(err))
		return err
	}
	return nil
}

// reject logs a refused operation and returns err unchanged.
func (b *Bank) reject(op string, err error, fields ...zap.Field) error {
	b.log.Warn(op+" rejected", append(fields, zap.Error(err))...)
	return err
}

// large reports whether amount reaches the large transaction threshold.
func (b *Bank) large(amount Money) bool {
	t := b.opts.LargeTransactionThreshold
	return t.IsPositive() && amount.GreaterThanOrEqual(t)
}

type actorKey struct{}

// WithActor returns a context whose operations are audited under actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// actorFrom returns the actor set by WithActor, "system" by default.
func actorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return "system"
}
