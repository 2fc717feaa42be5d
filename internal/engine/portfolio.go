package engine

import (
	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
)

// Side indicates whether a trade bought or sold shares.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is the receipt of a successful buy or sell.
type Trade struct {
	Name    string
	Side    Side
	Amount  int64
	Price   decimal.Decimal // ask for buys, bid for sells
	Total   decimal.Decimal // cost or proceeds, rounded to cents
	Balance decimal.Decimal // cash balance after the trade
}

// Holding is an owned security together with its market value.
type Holding struct {
	Security    domain.Security
	MarketValue decimal.Decimal
}

// Portfolio is a cash balance trading against a Market. Share counts live on
// the market's securities; the portfolio refers to them by name only.
type Portfolio struct {
	market  *Market
	balance decimal.Decimal
}

// NewPortfolio creates a portfolio over m with the given starting balance,
// which must be non-negative with at most two decimal places.
func NewPortfolio(m *Market, balance decimal.Decimal) (*Portfolio, error) {
	if balance.IsNegative() {
		return nil, &domain.ValidationError{Message: "balance must be >= 0"}
	}
	if !domain.IsRounded(balance) {
		return nil, &domain.ValidationError{Message: "balance must have at most 2 decimal places"}
	}
	return &Portfolio{
		market:  m,
		balance: balance,
	}, nil
}

// Market returns the market the portfolio trades against.
func (p *Portfolio) Market() *Market {
	return p.market
}

// Balance returns the cash available.
func (p *Portfolio) Balance() decimal.Decimal {
	return p.balance
}

// Buy purchases amount shares of the named security at its ask price.
// It returns domain.ErrInvalidAmount for amount <= 0,
// domain.ErrSecurityNotFound for an unknown name and
// domain.ErrInsufficientFunds if the cost exceeds the balance. Nothing
// changes on error.
func (p *Portfolio) Buy(name string, amount int64) (Trade, error) {
	if amount <= 0 {
		return Trade{}, domain.ErrInvalidAmount
	}

	var trade Trade
	err := p.market.Update(name, func(s *domain.Security) error {
		cost := domain.Round(s.Ask.Mul(decimal.NewFromInt(amount)))
		if p.balance.LessThan(cost) {
			return domain.ErrInsufficientFunds
		}
		s.Shares += amount
		trade = Trade{Name: name, Side: SideBuy, Amount: amount, Price: s.Ask, Total: cost}
		return nil
	})
	if err != nil {
		return Trade{}, err
	}

	p.balance = domain.Round(p.balance.Sub(trade.Total))
	trade.Balance = p.balance
	return trade, nil
}

// Sell disposes of amount shares of the named security at its bid price.
// It returns domain.ErrInvalidAmount for amount <= 0,
// domain.ErrSecurityNotFound for an unknown name and
// domain.ErrInsufficientShares if fewer than amount shares are held.
// Nothing changes on error.
func (p *Portfolio) Sell(name string, amount int64) (Trade, error) {
	if amount <= 0 {
		return Trade{}, domain.ErrInvalidAmount
	}

	var trade Trade
	err := p.market.Update(name, func(s *domain.Security) error {
		if s.Shares < amount {
			return domain.ErrInsufficientShares
		}
		s.Shares -= amount
		proceeds := domain.Round(s.Bid.Mul(decimal.NewFromInt(amount)))
		trade = Trade{Name: name, Side: SideSell, Amount: amount, Price: s.Bid, Total: proceeds}
		return nil
	})
	if err != nil {
		return Trade{}, err
	}

	p.balance = domain.Round(p.balance.Add(trade.Total))
	trade.Balance = p.balance
	return trade, nil
}

// StocksOwned returns the securities with at least one share held, in
// registry order.
func (p *Portfolio) StocksOwned() []domain.Security {
	var owned []domain.Security
	for _, s := range p.market.AllSecurities() {
		if s.Shares > 0 {
			owned = append(owned, s)
		}
	}
	return owned
}

// Holdings returns the owned securities with their market value at the
// current value.
func (p *Portfolio) Holdings() []Holding {
	owned := p.StocksOwned()
	holdings := make([]Holding, len(owned))
	for i, s := range owned {
		holdings[i] = Holding{
			Security:    s,
			MarketValue: s.MarketValue(),
		}
	}
	return holdings
}

// NetWorth returns the balance plus the market value of every holding.
func (p *Portfolio) NetWorth() decimal.Decimal {
	total := p.balance
	for _, h := range p.Holdings() {
		total = total.Add(h.MarketValue)
	}
	return domain.Round(total)
}
