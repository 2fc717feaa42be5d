package engine

import (
	"math/rand"
	"testing"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// genTradingState draws a single-security portfolio with arbitrary quotes,
// holdings and balance.
func genTradingState(t *rapid.T) *Portfolio {
	askCents := rapid.Int64Range(1, 100_000).Draw(t, "askCents")
	bidCents := rapid.Int64Range(1, askCents).Draw(t, "bidCents")
	held := rapid.Int64Range(0, 1_000).Draw(t, "held")
	balanceCents := rapid.Int64Range(0, 100_000_000).Draw(t, "balanceCents")

	ask := decimal.New(askCents, -2)
	bid := decimal.New(bidCents, -2)
	m, err := RestoreMarket([]domain.Security{{
		Name:          "Acme",
		Ask:           ask,
		Bid:           bid,
		Value:         midpoint(ask, bid),
		PercentChange: decimal.Zero,
		Shares:        held,
	}}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RestoreMarket: %v", err)
	}
	p, err := NewPortfolio(m, decimal.New(balanceCents, -2))
	if err != nil {
		t.Fatalf("NewPortfolio: %v", err)
	}
	return p
}

func TestProperty_BuyConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genTradingState(t)
		amount := rapid.Int64Range(1, 2_000).Draw(t, "amount")

		before, _ := p.Market().Lookup("Acme")
		balance := p.Balance()
		cost := before.Ask.Mul(decimal.NewFromInt(amount))

		_, err := p.Buy("Acme", amount)
		after, _ := p.Market().Lookup("Acme")

		if balance.LessThan(cost) {
			if err != domain.ErrInsufficientFunds {
				t.Fatalf("got %v, want ErrInsufficientFunds", err)
			}
			if !p.Balance().Equal(balance) || after.Shares != before.Shares {
				t.Fatalf("rejected buy changed state")
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Balance().Equal(balance.Sub(cost)) {
			t.Fatalf("balance = %s, want %s", p.Balance(), balance.Sub(cost))
		}
		if after.Shares != before.Shares+amount {
			t.Fatalf("shares = %d, want %d", after.Shares, before.Shares+amount)
		}
		if p.Balance().IsNegative() {
			t.Fatalf("balance went negative: %s", p.Balance())
		}
	})
}

func TestProperty_SellConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genTradingState(t)
		amount := rapid.Int64Range(1, 2_000).Draw(t, "amount")

		before, _ := p.Market().Lookup("Acme")
		balance := p.Balance()
		proceeds := before.Bid.Mul(decimal.NewFromInt(amount))

		_, err := p.Sell("Acme", amount)
		after, _ := p.Market().Lookup("Acme")

		if before.Shares < amount {
			if err != domain.ErrInsufficientShares {
				t.Fatalf("got %v, want ErrInsufficientShares", err)
			}
			if !p.Balance().Equal(balance) || after.Shares != before.Shares {
				t.Fatalf("rejected sell changed state")
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Balance().Equal(balance.Add(proceeds)) {
			t.Fatalf("balance = %s, want %s", p.Balance(), balance.Add(proceeds))
		}
		if after.Shares != before.Shares-amount {
			t.Fatalf("shares = %d, want %d", after.Shares, before.Shares-amount)
		}
	})
}

func TestProperty_RoundTripTradeNeverGains(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genTradingState(t)
		amount := rapid.Int64Range(1, 100).Draw(t, "amount")
		balance := p.Balance()

		if _, err := p.Buy("Acme", amount); err != nil {
			t.Skip("cannot afford the buy")
		}
		if _, err := p.Sell("Acme", amount); err != nil {
			t.Fatalf("Sell after Buy: %v", err)
		}
		if p.Balance().GreaterThan(balance) {
			t.Fatalf("round trip gained money: %s → %s", balance, p.Balance())
		}
	})
}
