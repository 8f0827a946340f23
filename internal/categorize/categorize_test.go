package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpenseCategory(t *testing.T) {
	tests := []struct {
		desc string
		want int64
	}{
		{"UBER EATS MADRID", 2},
		{"uber eats madrid", 2},
		{"Compra AMAZON Marketplace", 1},
		{"RESTAURANTE CASA PEPE", 3},
		{"CUOTA AUTONOMOS TGSS", 5},
		{"RECIBO IBERDROLA", 7},
		{"Udemy curso Go", 9},
		{"Transferencia a Juan", OtherExpenseCategory},
		{"", OtherExpenseCategory},
		{"   ", OtherExpenseCategory},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpenseCategory(tt.desc), tt.desc)
	}
}

func TestExpenseCategory_FirstRuleWins(t *testing.T) {
	// IMPRESORA is listed under office supplies and equipment.
	assert.Equal(t, int64(1), ExpenseCategory("IMPRESORA HP"))
	// TALLER is listed under transport and training.
	assert.Equal(t, int64(2), ExpenseCategory("TALLER DE ESCRITURA"))
	// MOVIL is listed under utilities and equipment.
	assert.Equal(t, int64(7), ExpenseCategory("MOVIL NUEVO"))
	// GESTOR (4) and CUOTA (5) both match; 4 is declared first.
	assert.Equal(t, int64(4), ExpenseCategory("CUOTA GESTORIA"))
}

func TestIncomeSource(t *testing.T) {
	tests := []struct {
		desc string
		want int64
	}{
		{"TRANSFERENCIA ARTIFICIAL INTELLIGENCE ORCHESTRATOR", 1},
		{"Devolución IRPF", 2},
		{"DEVOLUCION HACIENDA", 2},
		{"SUBVENCION KIT DIGITAL", 3},
		// FACTURA (1) and IVA (2) both match.
		{"FACTURA CON IVA", 1},
		{"BIZUM AMIGO", OtherIncomeSource},
		{"", OtherIncomeSource},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IncomeSource(tt.desc), tt.desc)
	}
}

func TestMatcher_Custom(t *testing.T) {
	m := Matcher{
		Default: 99,
		Rules: []Rule{
			{2, []string{"B"}},
			{1, []string{"A"}},
		},
	}
	assert.Equal(t, int64(2), m.Match("ab"))
	assert.Equal(t, int64(1), m.Match("a"))
	assert.Equal(t, int64(99), m.Match("zzz"))
}

func TestIsTaxDeductible(t *testing.T) {
	tests := []struct {
		desc     string
		category int64
		want     bool
	}{
		{"ORDENADOR PORTATIL", 8, true},
		{"COMIDA CLIENTE", 3, false},
		{"Varios", OtherExpenseCategory, false},
		{"Regalo cumpleaños", 1, false},
		{"CURSO OCIO NOCTURNO", 9, false},
		{"Gasto PERSONAL", 2, false},
		{"RENFE Madrid-Barcelona", 2, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTaxDeductible(tt.desc, tt.category), tt.desc)
	}
}
