package bank

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// references generates transfer reference tokens: a millisecond timestamp
// followed by monotonic entropy, so tokens made in the same millisecond still
// sort and never collide.
type references struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newReferences() *references {
	return &references{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (r *references) next(now time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), r.entropy).String()
}
