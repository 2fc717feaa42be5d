package store

import (
	"testing"

	"github.com/efreitasn/minimarket/internal/domain"
	"pgregory.net/rapid"
)

func TestProperty_HistoryRangeIsContiguousAndOrdered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := []string{"Acme", "Globex", "Initech"}
		days := rapid.IntRange(1, 60).Draw(t, "days")

		h := NewHistoryStore()
		// Record days in a shuffled order; the tree keeps them sorted.
		order := rapid.Permutation(makeDays(days)).Draw(t, "order")
		for _, day := range order {
			secs := make([]domain.Security, len(names))
			for i, n := range names {
				secs[i] = quoteAt(n, int64(day+1))
			}
			h.Record(day, secs)
		}

		name := rapid.SampledFrom(names).Draw(t, "name")
		from := rapid.IntRange(0, days-1).Draw(t, "from")
		to := rapid.IntRange(from, days-1).Draw(t, "to")

		got := h.Range(name, from, to)
		if len(got) != to-from+1 {
			t.Fatalf("Range(%s, %d, %d) = %d quotes, want %d", name, from, to, len(got), to-from+1)
		}
		for i, q := range got {
			if q.Name != name || q.Day != from+i {
				t.Fatalf("quote %d = %s day %d, want %s day %d", i, q.Name, q.Day, name, from+i)
			}
		}
		if h.Len() != days*len(names) {
			t.Fatalf("Len() = %d, want %d", h.Len(), days*len(names))
		}
	})
}

func makeDays(n int) []int {
	days := make([]int, n)
	for i := range days {
		days[i] = i
	}
	return days
}
