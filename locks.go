package bank

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// lockTable hands out one exclusive lock per key (an account, a cheque or a
// loan). Waits are bounded, a lock that cannot be taken in time yields ErrBusy.
// A key only has a slot while someone holds or waits for it.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch    chan struct{}
	users int // holders and waiters, guarded by lockTable.mu
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]*lockSlot)}
}

// get returns the slot of key, registering the caller as one of its users.
func (l *lockTable) get(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.users++
	return s
}

// put unregisters a user of the slot of key and forgets idle slots.
func (l *lockTable) put(key string, s *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.users--
	if s.users == 0 {
		delete(l.slots, key)
	}
}

// size returns the number of keys held or waited for.
func (l *lockTable) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// acquire locks every key in ascending order and returns the function
// releasing them. On failure nothing stays locked.
func (l *lockTable) acquire(ctx context.Context, timeout time.Duration, keys ...string) (release func(), err error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	held := make([]*lockSlot, 0, len(keys))
	release = func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].ch
			l.put(keys[i], held[i])
		}
	}
	for _, key := range keys {
		s := l.get(key)
		select {
		case s.ch <- struct{}{}:
			held = append(held, s)
		case <-wait.Done():
			l.put(key, s)
			release()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if errors.Is(wait.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s still locked after %v", ErrBusy, key, timeout)
			}
			return nil, wait.Err()
		}
	}
	return release, nil
}

func accountKey(id string) string { return "account:" + id }
func chequeKey(n string) string   { return "cheque:" + n }
func loanKey(id string) string    { return "loan:" + id }
