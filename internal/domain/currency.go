package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// MaxScale is the number of fractional digits the NUMERIC(10,2) columns hold.
const MaxScale = 2

// Bounds on the decimal representation of an amount. Rounding and comparing
// rescale through a power of ten as large as the exponent, so amounts outside
// them are rejected before any arithmetic.
const (
	MinAmountExponent = -16
	MaxAmountExponent = 8
	MaxAmountDigits   = 24
)

// AmountInBounds reports whether d stays within the exponent and digit bounds.
func AmountInBounds(d decimal.Decimal) bool {
	return d.Exponent() >= MinAmountExponent &&
		d.Exponent() <= MaxAmountExponent &&
		d.NumDigits() <= MaxAmountDigits
}

// Currency is the store currency together with its fixed-point scale.
type Currency struct {
	Unit  currency.Unit
	Scale int32
}

func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	if scale > MaxScale {
		return Currency{}, fmt.Errorf("currency[%s] needs %d fractional digits, at most %d supported", code, scale, MaxScale)
	}

	return Currency{Unit: unit, Scale: int32(scale)}, nil
}

func MustParseCurrency(code string) Currency {
	c, err := ParseCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.Scale)
}

// Exact reports whether d has no more fractional digits than the scale allows.
func (c Currency) Exact(d decimal.Decimal) bool {
	return d.Equal(d.Round(c.Scale))
}

// Format renders d with exactly Scale fractional digits, e.g. "599.98".
func (c Currency) Format(d decimal.Decimal) string {
	return d.StringFixed(c.Scale)
}

func (c Currency) String() string {
	return c.Unit.String()
}
