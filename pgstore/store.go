// Package pgstore keeps bank snapshots in PostgreSQL.
//
// Records are stored as JSON documents, in the same canonical form as the
// JSONL snapshot files, in a single table:
//
//	bank_records(seq bigserial, tbl text, id text, payload jsonb)
//
// and the snapshot meta in bank_meta. Save replaces everything inside one
// transaction, Load reads records back in insertion order.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etnz/bank"
)

const schema = `
CREATE TABLE IF NOT EXISTS bank_meta (
	id      int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	version int NOT NULL,
	install text NOT NULL,
	saved   timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS bank_records (
	seq     bigserial PRIMARY KEY,
	tbl     text NOT NULL,
	id      text NOT NULL,
	payload jsonb NOT NULL,
	UNIQUE (tbl, id)
);`

// Store implements bank.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool on databaseURL, checks the connection and creates the
// tables if needed.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New returns a store on an existing pool. The tables must exist, see Migrate.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Migrate creates the tables of the store if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("could not create bank tables: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Load reads the whole snapshot. An empty database gives an empty snapshot.
func (s *Store) Load(ctx context.Context) (*bank.Snapshot, error) {
	snap := bank.NewSnapshot()
	err := s.pool.QueryRow(ctx, `SELECT version, install, saved FROM bank_meta WHERE id = 1`).
		Scan(&snap.Meta.Schema, &snap.Meta.Install, &snap.Meta.Saved)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read snapshot meta: %w", err)
	}
	if snap.Meta.Schema != bank.SchemaVersion {
		return nil, fmt.Errorf("database schema %d is not supported (want %d)", snap.Meta.Schema, bank.SchemaVersion)
	}

	rows, err := s.pool.Query(ctx, `SELECT tbl, payload FROM bank_records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("could not read records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, err
		}
		table, err := bank.ParseTable(name)
		if err != nil {
			return nil, err
		}
		rec, err := bank.UnmarshalRecord(table, payload)
		if err != nil {
			return nil, err
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read records: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot with snap.
func (s *Store) Save(ctx context.Context, snap *bank.Snapshot) error {
	bank.Stamp(snap, s.now())

	rows := make([][]any, 0, len(snap.Records))
	for _, rec := range snap.Records {
		payload, err := bank.MarshalRecord(rec)
		if err != nil {
			return err
		}
		rows = append(rows, []any{rec.Table().String(), rec.Key(), string(payload)})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE bank_records RESTART IDENTITY`); err != nil {
		return fmt.Errorf("could not clear records: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"bank_records"}, []string{"tbl", "id", "payload"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("could not write records: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO bank_meta (id, version, install, saved) VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET version = $1, install = $2, saved = $3`,
		snap.Meta.Schema, snap.Meta.Install, snap.Meta.Saved)
	if err != nil {
		return fmt.Errorf("could not write snapshot meta: %w", err)
	}
	return tx.Commit(ctx)
}
