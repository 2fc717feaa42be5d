package store

import (
	"sync"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Quote is one security's closing quotes for a simulated day.
type Quote struct {
	Name          string
	Day           int
	Ask           decimal.Decimal
	Bid           decimal.Decimal
	Value         decimal.Decimal
	PercentChange decimal.Decimal
}

// quoteLess orders quotes by name, then day, so that one security's history
// is a contiguous ascending range.
func quoteLess(a, b Quote) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Day < b.Day
}

// HistoryStore is a thread-safe record of daily quotes, kept in a B-tree
// ordered by (name, day).
type HistoryStore struct {
	mu     sync.RWMutex
	quotes *btree.BTreeG[Quote]
}

// NewHistoryStore creates an empty HistoryStore.
func NewHistoryStore() *HistoryStore {
	const degree = 32
	return &HistoryStore{
		quotes: btree.NewG[Quote](degree, quoteLess),
	}
}

// Record stores the quotes of every security for day, replacing any quotes
// already recorded for that day.
func (h *HistoryStore) Record(day int, secs []domain.Security) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range secs {
		h.quotes.ReplaceOrInsert(Quote{
			Name:          s.Name,
			Day:           day,
			Ask:           s.Ask,
			Bid:           s.Bid,
			Value:         s.Value,
			PercentChange: s.PercentChange,
		})
	}
}

// Range returns the quotes of name for days in [from, to], ascending by day.
// Returns an empty slice if none were recorded.
func (h *HistoryStore) Range(name string, from, to int) []Quote {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := []Quote{}
	if from > to {
		return result
	}
	h.quotes.AscendGreaterOrEqual(Quote{Name: name, Day: from}, func(q Quote) bool {
		if q.Name != name || q.Day > to {
			return false
		}
		result = append(result, q)
		return true
	})
	return result
}

// Len returns the number of recorded quotes.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.quotes.Len()
}

// Reset discards every recorded quote.
func (h *HistoryStore) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.quotes.Clear(false)
}
