package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals are the frozen monetary fields of an invoice or estimate.
type Totals struct {
	Subtotal    decimal.Decimal
	VAT         decimal.Decimal
	Withholding decimal.Decimal
	Total       decimal.Decimal
}

// TaxRates holds the rates applied when a tax flag is enabled.
type TaxRates struct {
	VAT         decimal.Decimal
	Withholding decimal.Decimal
}

var (
	DefaultVATRate         = decimal.RequireFromString("0.21")
	DefaultWithholdingRate = decimal.RequireFromString("0.15")
)

// DefaultTaxRates returns 21% VAT and 15% withholding.
func DefaultTaxRates() TaxRates {
	return TaxRates{VAT: DefaultVATRate, Withholding: DefaultWithholdingRate}
}

// Validate checks both rates are fractions in [0,1].
func (r TaxRates) Validate() error {
	if err := validateRate("vat", r.VAT); err != nil {
		return err
	}
	return validateRate("withholding", r.Withholding)
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return InvalidInput("%s rate %s must be within [0,1]", name, rate.String())
	}
	return nil
}

// Calculate computes VAT, withholding and total for a subtotal.
//
// Every component is rounded to two places half-up (half away from zero),
// and Total is derived from the rounded components so that
// Total == Subtotal + VAT - Withholding holds exactly.
func Calculate(subtotal, vatRate, withholdingRate decimal.Decimal) (Totals, error) {
	if subtotal.IsNegative() {
		return Totals{}, InvalidInput("subtotal cannot be negative")
	}
	if err := (TaxRates{VAT: vatRate, Withholding: withholdingRate}).Validate(); err != nil {
		return Totals{}, err
	}
	sub := subtotal.Round(2)
	vat := sub.Mul(vatRate).Round(2)
	wh := sub.Mul(withholdingRate).Round(2)
	t := Totals{
		Subtotal:    sub,
		VAT:         vat,
		Withholding: wh,
		Total:       sub.Add(vat).Sub(wh),
	}
	if !t.Total.Equal(t.Subtotal.Add(t.VAT).Sub(t.Withholding)) {
		return Totals{}, fmt.Errorf("%w: total mismatch for subtotal %s", ErrComputation, sub)
	}
	return t, nil
}

// CalculateLine multiplies price by quantity and applies the configured rate
// for each enabled flag.
func CalculateLine(unitPrice decimal.Decimal, quantity int64, applyVAT, applyWithholding bool, rates TaxRates) (Totals, error) {
	if unitPrice.IsNegative() {
		return Totals{}, InvalidInput("unit price cannot be negative")
	}
	if quantity <= 0 {
		return Totals{}, InvalidInput("quantity must be positive")
	}
	vat, wh := decimal.Zero, decimal.Zero
	if applyVAT {
		vat = rates.VAT
	}
	if applyWithholding {
		wh = rates.Withholding
	}
	return Calculate(unitPrice.Mul(decimal.NewFromInt(quantity)), vat, wh)
}
