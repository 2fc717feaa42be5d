package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinPrice is the smallest quote a security can carry.
var MinPrice = decimal.New(1, -2)

var half = decimal.New(5, -1)

// Round rounds d to two decimal places, half up: ties go toward positive
// infinity, so -0.125 rounds to -0.12. Every monetary field in the model goes
// through Round as the last step of its computation.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// RoundFloat converts f to a decimal rounded to two decimal places.
func RoundFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// IsRounded reports whether d has at most two decimal places.
func IsRounded(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ParseMoney parses s as a monetary amount. It returns an error if s is not
// a number or has more than two decimal places.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid monetary value %q", s)
	}
	if !IsRounded(d) {
		return decimal.Zero, fmt.Errorf("monetary values must have at most 2 decimal places")
	}
	return d, nil
}

// ToCents converts a monetary amount to an int64 number of cents.
func ToCents(d decimal.Decimal) int64 {
	return Round(d).Shift(2).IntPart()
}
