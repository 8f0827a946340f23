package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO code paired with its display symbol.
type Currency struct {
	Code   string
	Symbol string
}

var (
	DefaultCurrency   = Currency{Code: "EUR", Symbol: "€"}
	ReportingCurrency = DefaultCurrency

	// USDToEUR is a fixed approximation, not a live exchange rate.
	USDToEUR = decimal.RequireFromString("0.85")

	knownSymbols = map[string]string{
		"EUR": "€",
		"USD": "$",
		"GBP": "£",
	}
)

// CurrencyFor returns the known currency for code, with ok=false when the
// code is not one of EUR, USD or GBP.
func CurrencyFor(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	sym, ok := knownSymbols[code]
	return Currency{Code: code, Symbol: sym}, ok
}

// IsZero reports whether neither code nor symbol is set.
func (c Currency) IsZero() bool {
	return c.Code == "" && c.Symbol == ""
}

// Validate checks that code and symbol belong together.
func (c Currency) Validate() error {
	sym, ok := knownSymbols[c.Code]
	if !ok {
		return InvalidInput("unsupported currency %q", c.Code)
	}
	if sym != c.Symbol {
		return InvalidInput("currency %s must use symbol %s, got %q", c.Code, sym, c.Symbol)
	}
	return nil
}

// ResolveCurrency returns the client's currency, or fallback when the client
// has none. A zero fallback means DefaultCurrency.
func ResolveCurrency(client Client, fallback Currency) Currency {
	if client.Currency.Code != "" {
		cur := client.Currency
		if cur.Symbol == "" {
			if known, ok := CurrencyFor(cur.Code); ok {
				cur = known
			}
		}
		return cur
	}
	if fallback.IsZero() {
		return DefaultCurrency
	}
	return fallback
}

// NormalizeToReporting converts USD amounts to EUR using USDToEUR. EUR is
// returned unchanged and any other currency passes through under its own code.
func NormalizeToReporting(amount decimal.Decimal, c Currency) (decimal.Decimal, Currency) {
	switch strings.ToUpper(c.Code) {
	case "USD":
		return amount.Mul(USDToEUR), ReportingCurrency
	case "", "EUR":
		return amount, ReportingCurrency
	default:
		return amount, c
	}
}
