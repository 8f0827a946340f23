// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to a decimal rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Negative values are accepted;
// callers decide whether the sign is meaningful.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("-50")    -> -50.00
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, InvalidInput("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, InvalidInput("amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, InvalidInput("amount %q", s)
	}
	return d.Round(2), nil
}

// ParsePositiveAmount is ParseAmount restricted to values greater than zero.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, InvalidInput("amount must be positive")
	}
	return d, nil
}

// ToCents converts an amount to integer cents, rounding half-up.
func ToCents(d decimal.Decimal) (int64, error) {
	c := d.Round(2).Mul(hundred)
	if c.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || c.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrComputation
	}
	return c.IntPart(), nil
}

// FromCents converts integer cents back to a two-place decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatMoney renders an amount with its currency symbol, e.g. "1234.50 €"
// for EUR and "$1234.50" for USD and GBP.
func FormatMoney(d decimal.Decimal, c Currency) string {
	amount := d.StringFixed(2)
	switch c.Code {
	case "USD", "GBP":
		if d.IsNegative() {
			return "-" + c.Symbol + strings.TrimPrefix(amount, "-")
		}
		return c.Symbol + amount
	default:
		sym := c.Symbol
		if sym == "" {
			sym = DefaultCurrency.Symbol
		}
		return amount + " " + sym
	}
}
