package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// QuoteCache stores EMI quotes by key. Implementations must be safe for
// concurrent use. A miss is reported with ok false and a nil error.
type QuoteCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryQuoteCache is a QuoteCache held in process memory.
type MemoryQuoteCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryQuoteCache returns an empty in-memory cache.
func NewMemoryQuoteCache() *MemoryQuoteCache {
	return &MemoryQuoteCache{values: make(map[string]string)}
}

func (c *MemoryQuoteCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *MemoryQuoteCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

// Quote is the EMI offered for a loan before it is applied for.
type Quote struct {
	Category      LoanCategory `json:"category"`
	Principal     Money        `json:"principal"`
	Rate          Rate         `json:"rate"`
	Tenure        int          `json:"tenure"`
	EMI           Money        `json:"emi"`
	TotalPayment  Money        `json:"totalPayment"`
	TotalInterest Money        `json:"totalInterest"`
}

// quoteKey identifies a quote in the cache.
func quoteKey(category LoanCategory, principal Money, tenure int) string {
	return fmt.Sprintf("emi:%s:%s:%d", category, principal.Decimal().StringFixed(fraction), tenure)
}

// QuoteEMI prices a loan of the category at its current rate. Quotes are
// pure, so they are served from the quote cache when possible; a failing
// cache is logged and bypassed.
func (b *Bank) QuoteEMI(ctx context.Context, category LoanCategory, principal Money, tenure int) (Quote, error) {
	if category.String() == "unknown" {
		return Quote{}, fmt.Errorf("unknown loan category %d", category)
	}
	key := quoteKey(category, principal, tenure)

	v, ok, err := b.quotes.Get(ctx, key)
	if err != nil {
		b.log.Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var q Quote
		if err := json.Unmarshal([]byte(v), &q); err == nil {
			return q, nil
		}
		b.log.Warn("quote cache holds an invalid quote", zap.String("key", key))
	}

	rate := category.Rate()
	emi, err := CalculateEMI(principal, rate, tenure)
	if err != nil {
		return Quote{}, err
	}
	var total Money
	for _, row := range Schedule(principal, rate, tenure) {
		total = total.Add(row.Payment)
	}
	q := Quote{
		Category:      category,
		Principal:     principal,
		Rate:          rate,
		Tenure:        tenure,
		EMI:           emi,
		TotalPayment:  total,
		TotalInterest: total.Sub(principal),
	}
	data, err := json.Marshal(q)
	if err != nil {
		return Quote{}, err
	}
	if err := b.quotes.Set(ctx, key, string(data)); err != nil {
		b.log.Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
	return q, nil
}
