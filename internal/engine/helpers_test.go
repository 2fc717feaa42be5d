package engine

import (
	"math/rand"
	"testing"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
)

// scriptedRand replays fixed draws. It panics when a queue runs dry or a
// scripted int falls outside [0, n), which fails the calling test.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		panic("scriptedRand: out of ints")
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v < 0 || v >= n {
		panic("scriptedRand: scripted int out of range")
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		panic("scriptedRand: out of floats")
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) exhausted() bool {
	return len(r.ints) == 0 && len(r.floats) == 0
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestSecurity builds a security with the given quotes and no shares.
func newTestSecurity(name, ask, bid, value string) domain.Security {
	return domain.Security{
		Name:          name,
		Ask:           dec(ask),
		Bid:           dec(bid),
		Value:         dec(value),
		PercentChange: decimal.Zero,
	}
}

// newTestMarket restores a market from the given securities with a seeded
// random source for later day advances.
func newTestMarket(t *testing.T, secs ...domain.Security) *Market {
	t.Helper()
	m, err := RestoreMarket(secs, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RestoreMarket: %v", err)
	}
	return m
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func sameSecurity(a, b domain.Security) bool {
	return a.Name == b.Name &&
		a.Ask.Equal(b.Ask) &&
		a.Bid.Equal(b.Bid) &&
		a.Value.Equal(b.Value) &&
		a.PercentChange.Equal(b.PercentChange) &&
		a.Shares == b.Shares
}
