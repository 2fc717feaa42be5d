package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Security is one simulated tradeable instrument. All monetary fields are
// rounded to two decimal places.
type Security struct {
	Name          string
	Ask           decimal.Decimal // price a buyer pays
	Bid           decimal.Decimal // price a seller receives
	Value         decimal.Decimal // midpoint of ask and bid
	PercentChange decimal.Decimal // change of Value against the previous day
	Shares        int64           // shares held by the portfolio
}

// Spread returns the ask minus the bid.
func (s *Security) Spread() decimal.Decimal {
	return s.Ask.Sub(s.Bid)
}

// MarketValue returns the value of the held shares at the current value.
func (s *Security) MarketValue() decimal.Decimal {
	return Round(s.Value.Mul(decimal.NewFromInt(s.Shares)))
}

// Validate checks the security invariants: 0 < bid <= ask, a positive
// value, every monetary field rounded to two decimals and a non-negative
// share count. The returned error names the first violated field.
func (s *Security) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("name must not be empty")
	case !s.Bid.IsPositive():
		return fmt.Errorf("%s: bid must be > 0, got %s", s.Name, s.Bid)
	case s.Bid.GreaterThan(s.Ask):
		return fmt.Errorf("%s: bid %s exceeds ask %s", s.Name, s.Bid, s.Ask)
	case !s.Value.IsPositive():
		return fmt.Errorf("%s: value must be > 0, got %s", s.Name, s.Value)
	case !IsRounded(s.Ask), !IsRounded(s.Bid), !IsRounded(s.Value), !IsRounded(s.PercentChange):
		return fmt.Errorf("%s: monetary fields must have at most 2 decimal places", s.Name)
	case s.Shares < 0:
		return fmt.Errorf("%s: shares must be >= 0, got %d", s.Name, s.Shares)
	}
	return nil
}
