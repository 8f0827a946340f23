package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	got, err := Calculate(dec("100.0"), dec("0.21"), dec("0.15"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "21.00", got.VAT.StringFixed(2))
	assert.Equal(t, "15.00", got.Withholding.StringFixed(2))
	assert.Equal(t, "106.00", got.Total.StringFixed(2))
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	// 2.50 * 0.21 = 0.525 -> 0.53, 2.50 * 0.15 = 0.375 -> 0.38
	got, err := Calculate(dec("2.50"), dec("0.21"), dec("0.15"))
	require.NoError(t, err)
	assert.Equal(t, "0.53", got.VAT.StringFixed(2))
	assert.Equal(t, "0.38", got.Withholding.StringFixed(2))
	assert.Equal(t, "2.65", got.Total.StringFixed(2))
}

func TestCalculate_TotalIdentity(t *testing.T) {
	subtotals := []string{"0", "0.01", "33.33", "99.99", "1234.567", "75", "1000000"}
	rates := []string{"0", "0.07", "0.15", "0.19", "0.21", "1"}
	for _, s := range subtotals {
		for _, vat := range rates {
			for _, wh := range rates {
				got, err := Calculate(dec(s), dec(vat), dec(wh))
				require.NoError(t, err)
				assert.True(t, got.Total.Equal(got.Subtotal.Add(got.VAT).Sub(got.Withholding)),
					"identity broken for %s/%s/%s", s, vat, wh)
				assert.False(t, got.Subtotal.IsNegative())
				assert.False(t, got.VAT.IsNegative())
				assert.False(t, got.Withholding.IsNegative())
				if got.Withholding.LessThanOrEqual(got.Subtotal.Add(got.VAT)) {
					assert.False(t, got.Total.IsNegative())
				}
			}
		}
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	_, err := Calculate(dec("-1"), dec("0.21"), dec("0.15"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Calculate(dec("10"), dec("1.5"), dec("0.15"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Calculate(dec("10"), dec("0.21"), dec("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateLine(t *testing.T) {
	rates := DefaultTaxRates()

	tests := []struct {
		name             string
		price            string
		qty              int64
		vat, withholding bool
		wantVAT, wantWH  string
		wantTotal        string
	}{
		{"both taxes", "100", 1, true, true, "21.00", "15.00", "106.00"},
		{"no taxes", "100", 1, false, false, "0.00", "0.00", "100.00"},
		{"only vat", "100", 1, true, false, "21.00", "0.00", "121.00"},
		{"only withholding", "100", 1, false, true, "0.00", "15.00", "85.00"},
		{"hours", "75", 8, true, true, "126.00", "90.00", "636.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateLine(dec(tt.price), tt.qty, tt.vat, tt.withholding, rates)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVAT, got.VAT.StringFixed(2))
			assert.Equal(t, tt.wantWH, got.Withholding.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.Total.StringFixed(2))
		})
	}
}

func TestCalculateLine_InvalidInput(t *testing.T) {
	_, err := CalculateLine(dec("-1"), 1, true, true, DefaultTaxRates())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = CalculateLine(dec("10"), 0, true, true, DefaultTaxRates())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
