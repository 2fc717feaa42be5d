package engine

import (
	"fmt"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxBidRedraws bounds how many magnitudes a rising bid may draw in one day,
// counting the first draw. When none fits under the spread the bid holds.
const MaxBidRedraws = 64

// maxOpeningAsk is the exclusive upper bound of the integer part of an
// opening ask.
const maxOpeningAsk = 1000

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// NewSecurity creates a security with randomized opening quotes:
// ask in (0, 1000), bid = ask minus a random offset, clamped so that
// 0 < bid <= ask, and value at the midpoint.
func NewSecurity(name string, rng domain.Rand) domain.Security {
	fraction := decimal.NewFromFloat(rng.Float64())
	whole := decimal.NewFromInt(int64(rng.Intn(maxOpeningAsk)))
	ask := decimal.Max(domain.Round(whole.Add(fraction)), domain.MinPrice)

	offset := decimal.Zero
	if n := ask.IntPart(); n > 0 {
		offset = decimal.NewFromInt(int64(rng.Intn(int(n))))
	}
	offset = offset.Add(decimal.NewFromFloat(rng.Float64()))
	bid := domain.Round(ask.Sub(offset))
	bid = clamp(bid, domain.MinPrice, ask)

	return domain.Security{
		Name:          name,
		Ask:           ask,
		Bid:           bid,
		Value:         midpoint(ask, bid),
		PercentChange: decimal.Zero,
	}
}

// AdvanceOneDay moves the security's quotes one simulated day forward.
//
// Both sides move independently by a magnitude of 0-2 plus a rounded
// fraction. A falling ask is floored at the bid. A rising bid redraws its
// magnitude until it is strictly below the spread, giving up after
// MaxBidRedraws draws and holding the bid for the day. A falling bid is
// floored at domain.MinPrice.
//
// It returns an error wrapping domain.ErrInvariantViolation without touching
// s if s does not satisfy the security invariants on entry.
func AdvanceOneDay(s *domain.Security, rng domain.Rand) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}

	prev := s.Value
	askRises := rng.Intn(2) == 1
	bidRises := rng.Intn(2) == 1
	askMagnitude := magnitude(rng)
	bidMagnitude := magnitude(rng)

	ask := s.Ask
	if askRises {
		ask = ask.Add(askMagnitude)
	} else {
		ask = decimal.Max(ask.Sub(askMagnitude), s.Bid)
	}

	bid := s.Bid
	if bidRises {
		bid = bid.Add(fittingRise(ask.Sub(bid), bidMagnitude, rng))
	} else {
		bid = decimal.Max(bid.Sub(bidMagnitude), domain.MinPrice)
	}

	s.Ask = domain.Round(ask)
	s.Bid = domain.Round(bid)
	s.Value = midpoint(s.Ask, s.Bid)
	s.PercentChange = domain.Round(s.Value.Sub(prev).Mul(hundred).Div(prev))
	return nil
}

// fittingRise returns the first magnitude, starting with first, that is
// strictly below spread. It returns zero when the spread is closed or when
// MaxBidRedraws draws all came out too large.
func fittingRise(spread, first decimal.Decimal, rng domain.Rand) decimal.Decimal {
	if !spread.IsPositive() {
		return decimal.Zero
	}
	m := first
	for draws := 1; m.GreaterThanOrEqual(spread); draws++ {
		if draws == MaxBidRedraws {
			return decimal.Zero
		}
		m = magnitude(rng)
	}
	return m
}

// magnitude draws a daily price step: an integer in {0,1,2} plus a random
// fraction rounded to cents.
func magnitude(rng domain.Rand) decimal.Decimal {
	whole := decimal.NewFromInt(int64(rng.Intn(3)))
	return whole.Add(domain.RoundFloat(rng.Float64()))
}

func midpoint(ask, bid decimal.Decimal) decimal.Decimal {
	return domain.Round(ask.Add(bid).Div(two))
}

func clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
