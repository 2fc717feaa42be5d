package engine

import (
	"math/rand"
	"testing"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

var testRoster = []string{"Shibe Inc.", "Papaya", "Tweety", "GuCCe", "MIYO", "Yoko"}

// checkQuotes fails the test if s breaks the security invariants or if its
// value is not the rounded midpoint of its quotes.
func checkQuotes(t *rapid.T, day int, s domain.Security) {
	if err := s.Validate(); err != nil {
		t.Fatalf("day %d: %v", day, err)
	}
	if !s.Value.Equal(midpoint(s.Ask, s.Bid)) {
		t.Fatalf("day %d: %s value %s is not the midpoint of %s/%s", day, s.Name, s.Value, s.Ask, s.Bid)
	}
}

func TestProperty_InvariantsHoldAcrossDays(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		days := rapid.IntRange(0, 200).Draw(t, "days")

		m, err := NewMarket(testRoster, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("NewMarket: %v", err)
		}
		for _, s := range m.AllSecurities() {
			checkQuotes(t, 0, s)
			if !s.PercentChange.IsZero() {
				t.Fatalf("opening percent change = %s, want 0", s.PercentChange)
			}
		}

		for day := 1; day <= days; day++ {
			if err := m.AdvanceDay(); err != nil {
				t.Fatalf("day %d: AdvanceDay: %v", day, err)
			}
			for _, s := range m.AllSecurities() {
				checkQuotes(t, day, s)
			}
		}
	})
}

func TestProperty_NarrowSpreadsKeepBidAtOrBelowAsk(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		askCents := rapid.Int64Range(1, 100_000).Draw(t, "askCents")
		spreadCents := rapid.Int64Range(0, 5).Draw(t, "spreadCents")
		bidCents := askCents - spreadCents
		if bidCents < 1 {
			bidCents = 1
		}
		seed := rapid.Int64().Draw(t, "seed")

		ask := decimal.New(askCents, -2)
		bid := decimal.New(bidCents, -2)
		s := domain.Security{
			Name:          "Acme",
			Ask:           ask,
			Bid:           bid,
			Value:         midpoint(ask, bid),
			PercentChange: decimal.Zero,
		}

		rng := rand.New(rand.NewSource(seed))
		for day := 1; day <= 50; day++ {
			if err := AdvanceOneDay(&s, rng); err != nil {
				t.Fatalf("day %d: %v", day, err)
			}
			checkQuotes(t, day, s)
		}
	})
}

func TestProperty_SeededMarketIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		days := rapid.IntRange(0, 50).Draw(t, "days")

		run := func() []domain.Security {
			m, err := NewMarket(testRoster, rand.New(rand.NewSource(seed)))
			if err != nil {
				t.Fatalf("NewMarket: %v", err)
			}
			for i := 0; i < days; i++ {
				if err := m.AdvanceDay(); err != nil {
					t.Fatalf("AdvanceDay: %v", err)
				}
			}
			return m.AllSecurities()
		}

		first, second := run(), run()
		for i := range first {
			if !sameSecurity(first[i], second[i]) {
				t.Fatalf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}
