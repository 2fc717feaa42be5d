package engine

import (
	"fmt"

	"github.com/efreitasn/minimarket/internal/domain"
)

// Market is a fixed, ordered registry of securities. It is the sole owner of
// the securities it holds: readers get copies, and writes go through Update.
//
// A Market is not safe for concurrent use.
type Market struct {
	rng        domain.Rand
	securities []domain.Security
	index      map[string]int // name → position in securities
}

// NewMarket creates a market with one freshly randomized security per name,
// in the given order. It returns domain.ErrDuplicateSecurity if a name
// repeats and a *domain.ValidationError for an empty roster or name.
func NewMarket(names []string, rng domain.Rand) (*Market, error) {
	if err := validateRoster(names); err != nil {
		return nil, err
	}

	secs := make([]domain.Security, len(names))
	for i, name := range names {
		secs[i] = NewSecurity(name, rng)
	}
	return newMarket(secs, rng), nil
}

// RestoreMarket creates a market holding exactly the given securities, in
// order, without drawing from rng. Each security must satisfy the security
// invariants.
func RestoreMarket(secs []domain.Security, rng domain.Rand) (*Market, error) {
	names := make([]string, len(secs))
	for i := range secs {
		names[i] = secs[i].Name
	}
	if err := validateRoster(names); err != nil {
		return nil, err
	}
	for i := range secs {
		if err := secs[i].Validate(); err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
	}

	own := make([]domain.Security, len(secs))
	copy(own, secs)
	return newMarket(own, rng), nil
}

func newMarket(secs []domain.Security, rng domain.Rand) *Market {
	index := make(map[string]int, len(secs))
	for i := range secs {
		index[secs[i].Name] = i
	}
	return &Market{
		rng:        rng,
		securities: secs,
		index:      index,
	}
}

func validateRoster(names []string) error {
	if len(names) == 0 {
		return &domain.ValidationError{Message: "roster must not be empty"}
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return &domain.ValidationError{Message: "security name must not be empty"}
		}
		if seen[name] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSecurity, name)
		}
		seen[name] = true
	}
	return nil
}

// Lookup returns a copy of the named security, or
// domain.ErrSecurityNotFound.
func (m *Market) Lookup(name string) (domain.Security, error) {
	i, ok := m.index[name]
	if !ok {
		return domain.Security{}, domain.ErrSecurityNotFound
	}
	return m.securities[i], nil
}

// AllSecurities returns copies of every security in registry order.
func (m *Market) AllSecurities() []domain.Security {
	result := make([]domain.Security, len(m.securities))
	copy(result, m.securities)
	return result
}

// Names returns the roster in registry order.
func (m *Market) Names() []string {
	names := make([]string, len(m.securities))
	for i := range m.securities {
		names[i] = m.securities[i].Name
	}
	return names
}

// Len returns the number of securities in the market.
func (m *Market) Len() int {
	return len(m.securities)
}

// AdvanceDay advances every security one day, in registry order. Either all
// securities move or, on error, none do.
func (m *Market) AdvanceDay() error {
	next := make([]domain.Security, len(m.securities))
	copy(next, m.securities)
	for i := range next {
		if err := AdvanceOneDay(&next[i], m.rng); err != nil {
			return err
		}
	}
	m.securities = next
	return nil
}

// Update applies fn to a copy of the named security and stores the result if
// fn returns nil. A result that renames the security or breaks its
// invariants is discarded with an error wrapping
// domain.ErrInvariantViolation.
func (m *Market) Update(name string, fn func(s *domain.Security) error) error {
	i, ok := m.index[name]
	if !ok {
		return domain.ErrSecurityNotFound
	}

	s := m.securities[i]
	if err := fn(&s); err != nil {
		return err
	}
	if s.Name != name {
		return fmt.Errorf("%w: security %q cannot be renamed to %q", domain.ErrInvariantViolation, name, s.Name)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	m.securities[i] = s
	return nil
}
