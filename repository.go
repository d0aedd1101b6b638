package bank

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Repository stores the entity set the engine works on.
//
// Upsert of several records is all or nothing: either every record is stored
// or the repository is left unchanged and an error is returned.
type Repository interface {
	// Get returns the record with key in table, or an error wrapping ErrNotFound.
	Get(ctx context.Context, table Table, key string) (Record, error)
	// List returns every record of table in insertion order.
	List(ctx context.Context, table Table) ([]Record, error)
	// Upsert inserts or replaces records.
	Upsert(ctx context.Context, records ...Record) error
}

// get is a typed Repository.Get.
func get[T Record](ctx context.Context, repo Repository, table Table, key string) (T, error) {
	var zero T
	rec, err := repo.Get(ctx, table, key)
	if err != nil {
		return zero, err
	}
	v, ok := rec.(T)
	if !ok {
		return zero, fmt.Errorf("%s %q holds a %T", table, key, rec)
	}
	return v, nil
}

// list is a typed Repository.List, sorted by identifier.
func list[T Record](ctx context.Context, repo Repository, table Table) ([]T, error) {
	recs, err := repo.List(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("%s %q holds a %T", table, rec.Key(), rec)
		}
		out = append(out, v)
	}
	slices.SortStableFunc(out, byID[T])
	return out, nil
}

type memoryTable struct {
	keys []string
	rows map[string]Record
}

// MemoryRepository is an in-process Repository. It is safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[Table]*memoryTable
}

// NewMemoryRepository returns a repository holding records.
func NewMemoryRepository(records ...Record) *MemoryRepository {
	r := &MemoryRepository{tables: make(map[Table]*memoryTable)}
	for _, t := range Tables {
		r.tables[t] = &memoryTable{rows: make(map[string]Record)}
	}
	r.put(records)
	return r
}

func (r *MemoryRepository) Get(_ context.Context, table Table, key string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %v", table)
	}
	rec, ok := t.rows[key]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", table, key, ErrNotFound)
	}
	return rec, nil
}

func (r *MemoryRepository) List(_ context.Context, table Table) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %v", table)
	}
	out := make([]Record, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.rows[k])
	}
	return out, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, records ...Record) error {
	for _, rec := range records {
		if rec == nil {
			return fmt.Errorf("upsert: nil record")
		}
		if _, ok := r.tables[rec.Table()]; !ok {
			return fmt.Errorf("upsert: unknown table %v", rec.Table())
		}
		if rec.Key() == "" {
			return fmt.Errorf("upsert: %s record without key", rec.Table())
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(records)
	return nil
}

// put stores records, r.mu must be held (or r not yet shared).
func (r *MemoryRepository) put(records []Record) {
	for _, rec := range records {
		t := r.tables[rec.Table()]
		if _, exists := t.rows[rec.Key()]; !exists {
			t.keys = append(t.keys, rec.Key())
		}
		t.rows[rec.Key()] = rec
	}
}

// Dump lists every table of repo into a snapshot.
func Dump(ctx context.Context, repo Repository) (*Snapshot, error) {
	snap := &Snapshot{Meta: Meta{Schema: SchemaVersion}}
	for _, t := range Tables {
		recs, err := repo.List(ctx, t)
		if err != nil {
			return nil, err
		}
		snap.Records = append(snap.Records, recs...)
	}
	return snap, nil
}
