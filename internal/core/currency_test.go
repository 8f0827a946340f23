package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCurrency(t *testing.T) {
	usd := Client{Name: "Artificial Intelligence Orchestrator LLC", Currency: Currency{Code: "USD", Symbol: "$"}}
	assert.Equal(t, Currency{Code: "USD", Symbol: "$"}, ResolveCurrency(usd, DefaultCurrency))

	none := Client{Name: "Empresa Ejemplo S.L."}
	assert.Equal(t, DefaultCurrency, ResolveCurrency(none, Currency{}))

	gbp := Currency{Code: "GBP", Symbol: "£"}
	assert.Equal(t, gbp, ResolveCurrency(none, gbp))

	codeOnly := Client{Currency: Currency{Code: "GBP"}}
	assert.Equal(t, gbp, ResolveCurrency(codeOnly, DefaultCurrency))
}

func TestNormalizeToReporting(t *testing.T) {
	amt, cur := NormalizeToReporting(dec("100"), Currency{Code: "USD", Symbol: "$"})
	assert.Equal(t, "85.00", amt.StringFixed(2))
	assert.Equal(t, ReportingCurrency, cur)

	amt, cur = NormalizeToReporting(dec("100"), DefaultCurrency)
	assert.Equal(t, "100.00", amt.StringFixed(2))
	assert.Equal(t, ReportingCurrency, cur)

	gbp := Currency{Code: "GBP", Symbol: "£"}
	amt, cur = NormalizeToReporting(dec("10"), gbp)
	assert.Equal(t, "10.00", amt.StringFixed(2))
	assert.Equal(t, gbp, cur)
}

func TestCurrencyValidate(t *testing.T) {
	assert.NoError(t, Currency{Code: "EUR", Symbol: "€"}.Validate())
	assert.NoError(t, Currency{Code: "GBP", Symbol: "£"}.Validate())
	assert.ErrorIs(t, Currency{Code: "EUR", Symbol: "$"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Currency{Code: "JPY", Symbol: "¥"}.Validate(), ErrInvalidInput)
}
