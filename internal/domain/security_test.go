package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func acme() Security {
	return Security{
		Name:          "Acme",
		Ask:           decimal.RequireFromString("100.00"),
		Bid:           decimal.RequireFromString("90.00"),
		Value:         decimal.RequireFromString("95.00"),
		PercentChange: decimal.Zero,
	}
}

func TestSecurity_SpreadAndMarketValue(t *testing.T) {
	s := acme()
	s.Shares = 3

	if !s.Spread().Equal(decimal.NewFromInt(10)) {
		t.Errorf("Spread() = %s, want 10", s.Spread())
	}
	if !s.MarketValue().Equal(decimal.NewFromInt(285)) {
		t.Errorf("MarketValue() = %s, want 285", s.MarketValue())
	}
}

func TestSecurity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Security)
		wantErr bool
	}{
		{"valid", func(s *Security) {}, false},
		{"bid equals ask", func(s *Security) { s.Bid = s.Ask }, false},
		{"empty name", func(s *Security) { s.Name = "" }, true},
		{"zero bid", func(s *Security) { s.Bid = decimal.Zero }, true},
		{"negative bid", func(s *Security) { s.Bid = decimal.NewFromInt(-1) }, true},
		{"bid above ask", func(s *Security) { s.Bid = decimal.RequireFromString("100.01") }, true},
		{"zero value", func(s *Security) { s.Value = decimal.Zero }, true},
		{"unrounded ask", func(s *Security) { s.Ask = decimal.RequireFromString("100.001") }, true},
		{"unrounded percent", func(s *Security) { s.PercentChange = decimal.RequireFromString("0.333") }, true},
		{"negative shares", func(s *Security) { s.Shares = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := acme()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
