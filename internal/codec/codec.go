// Package codec encodes a market and its portfolio into the two JSON
// documents used for saved games, and restores them exactly.
//
// The market document is an ordered array of security records:
//
//	[{"name":"Acme","askPrice":100.00,"bidPrice":90.00,"currentValue":95.00,"percentChange":0.00,"sharesHeld":5}]
//
// The portfolio document holds the cash balance only; holdings live on the
// security records:
//
//	{"balance":500.00}
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/efreitasn/minimarket/internal/engine"
	"github.com/shopspring/decimal"
)

// Documents is the persisted form of a game: one market document and one
// portfolio document.
type Documents struct {
	Market    []byte
	Portfolio []byte
}

// Field names shared by both documents.
const (
	fieldName          = "name"
	fieldAskPrice      = "askPrice"
	fieldBidPrice      = "bidPrice"
	fieldCurrentValue  = "currentValue"
	fieldPercentChange = "percentChange"
	fieldSharesHeld    = "sharesHeld"
	fieldBalance       = "balance"
)

// securityRecord is one entry of the market document as written.
type securityRecord struct {
	Name          string      `json:"name"`
	AskPrice      json.Number `json:"askPrice"`
	BidPrice      json.Number `json:"bidPrice"`
	CurrentValue  json.Number `json:"currentValue"`
	PercentChange json.Number `json:"percentChange"`
	SharesHeld    int64       `json:"sharesHeld"`
}

type portfolioRecord struct {
	Balance json.Number `json:"balance"`
}

// rawRecord is a document object as read, so that missing fields and wrong
// shapes can be told apart from zero values.
type rawRecord map[string]json.RawMessage

// Encode serializes the market's securities, in registry order, and the
// portfolio's balance.
func Encode(m *engine.Market, p *engine.Portfolio) (*Documents, error) {
	secs := m.AllSecurities()
	records := make([]securityRecord, len(secs))
	for i, s := range secs {
		records[i] = securityRecord{
			Name:          s.Name,
			AskPrice:      number(s.Ask),
			BidPrice:      number(s.Bid),
			CurrentValue:  number(s.Value),
			PercentChange: number(s.PercentChange),
			SharesHeld:    s.Shares,
		}
	}

	marketDoc, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode market: %w", err)
	}
	portfolioDoc, err := json.Marshal(portfolioRecord{Balance: number(p.Balance())})
	if err != nil {
		return nil, fmt.Errorf("encode portfolio: %w", err)
	}

	return &Documents{
		Market:    marketDoc,
		Portfolio: portfolioDoc,
	}, nil
}

// Decode rebuilds the market and portfolio from docs without drawing from
// rng; rng drives the restored market's future day advances. Any missing
// field, wrong JSON shape or broken invariant returns an error wrapping
// domain.ErrMalformedState.
func Decode(docs *Documents, rng domain.Rand) (*engine.Market, *engine.Portfolio, error) {
	if docs == nil {
		return nil, nil, malformed("no documents")
	}

	var records []rawRecord
	if err := json.Unmarshal(docs.Market, &records); err != nil {
		return nil, nil, malformed("market document: %v", err)
	}
	if len(records) == 0 {
		return nil, nil, malformed("market document: no securities")
	}

	secs := make([]domain.Security, len(records))
	for i, rec := range records {
		s, err := rec.security()
		if err != nil {
			return nil, nil, malformed("market record %d: %v", i, err)
		}
		secs[i] = s
	}

	m, err := engine.RestoreMarket(secs, rng)
	if err != nil {
		return nil, nil, malformed("market document: %v", err)
	}

	var prec rawRecord
	if err := json.Unmarshal(docs.Portfolio, &prec); err != nil {
		return nil, nil, malformed("portfolio document: %v", err)
	}
	if prec == nil {
		return nil, nil, malformed("portfolio document: not an object")
	}
	balance, err := prec.money(fieldBalance)
	if err != nil {
		return nil, nil, malformed("portfolio document: %v", err)
	}
	p, err := engine.NewPortfolio(m, balance)
	if err != nil {
		return nil, nil, malformed("portfolio document: %v", err)
	}

	return m, p, nil
}

func (r rawRecord) security() (domain.Security, error) {
	if r == nil {
		return domain.Security{}, errors.New("not an object")
	}

	var s domain.Security
	var err error
	if s.Name, err = r.name(); err != nil {
		return domain.Security{}, err
	}
	if s.Ask, err = r.money(fieldAskPrice); err != nil {
		return domain.Security{}, err
	}
	if s.Bid, err = r.money(fieldBidPrice); err != nil {
		return domain.Security{}, err
	}
	if s.Value, err = r.money(fieldCurrentValue); err != nil {
		return domain.Security{}, err
	}
	if s.PercentChange, err = r.money(fieldPercentChange); err != nil {
		return domain.Security{}, err
	}
	if s.Shares, err = r.integer(fieldSharesHeld); err != nil {
		return domain.Security{}, err
	}

	if err := s.Validate(); err != nil {
		return domain.Security{}, err
	}
	return s, nil
}

func (r rawRecord) name() (string, error) {
	raw, ok := r[fieldName]
	if !ok {
		return "", fmt.Errorf("missing %s", fieldName)
	}
	var name string
	if strings.TrimSpace(string(raw)) == "null" {
		return "", fmt.Errorf("%s must be a string", fieldName)
	}
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", fmt.Errorf("%s must be a string", fieldName)
	}
	return name, nil
}

func (r rawRecord) money(field string) (decimal.Decimal, error) {
	text, err := r.numberText(field)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := domain.ParseMoney(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %v", field, err)
	}
	return d, nil
}

func (r rawRecord) integer(field string) (int64, error) {
	text, err := r.numberText(field)
	if err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %s", field, text)
	}
	return i, nil
}

// numberText returns the literal text of a JSON number field.
func (r rawRecord) numberText(field string) (string, error) {
	raw, ok := r[field]
	if !ok {
		return "", fmt.Errorf("missing %s", field)
	}
	text := strings.TrimSpace(string(raw))
	var n json.Number
	if text == "" || text[0] == '"' || json.Unmarshal(raw, &n) != nil || n == "" {
		return "", fmt.Errorf("%s must be a number", field)
	}
	return text, nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedState, fmt.Sprintf(format, args...))
}
