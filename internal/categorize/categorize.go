// Package categorize assigns bank statement descriptions to expense
// categories and income sources by keyword.
//
// Rules are scanned in declaration order and the first rule with a matching
// keyword wins, so rule order is part of the behaviour: "UBER EATS" is
// transport because transport is declared before food.
package categorize

import "strings"

const (
	OtherExpenseCategory int64 = 10
	OtherIncomeSource    int64 = 4

	FoodCategory int64 = 3
)

// Rule maps a set of upper-case keywords to a category or source id.
type Rule struct {
	ID       int64
	Keywords []string
}

// Matcher is an ordered rule list with a catch-all id.
type Matcher struct {
	Rules   []Rule
	Default int64
}

// Match returns the id of the first rule with a keyword contained in desc,
// compared case-insensitively. Empty or unmatched descriptions get Default.
func (m Matcher) Match(desc string) int64 {
	upper := strings.ToUpper(strings.TrimSpace(desc))
	if upper == "" {
		return m.Default
	}
	for _, r := range m.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(upper, kw) {
				return r.ID
			}
		}
	}
	return m.Default
}

var expenseMatcher = Matcher{
	Default: OtherExpenseCategory,
	Rules: []Rule{
		{1, []string{ // office supplies
			"MATERIAL", "OFICINA", "PAPELERIA", "AMAZON", "CARTUCHO", "TINTA",
			"IMPRESORA", "PAPEL", "CARPETA", "ARCHIVADOR",
		}},
		{2, []string{ // transport
			"TAXI", "CABIFY", "UBER", "RENFE", "METRO", "BUS", "AUTOBUS",
			"TRANSPORTE", "GASOLINA", "COMBUSTIBLE", "PARKING", "APARCAMIENTO",
			"PEAJE", "AUTOPISTA", "TALLER", "COCHE", "VEHICULO", "ITV",
		}},
		{3, []string{ // food
			"RESTAURANTE", "CAFETERIA", "BAR", "COMIDA", "CAFE", "MENU",
			"DESAYUNO", "ALMUERZO", "CENA", "MERCADONA", "CARREFOUR", "LIDL",
			"SUPERMERCADO", "ALIMENTACION",
		}},
		{4, []string{ // professional services
			"ASESORIA", "CONSULTORIA", "ABOGADO", "NOTARIO", "GESTOR",
			"CONTABLE", "FISCAL", "LEGAL", "SERVICIO PROFESIONAL",
		}},
		{5, []string{ // social security
			"SEGURIDAD SOCIAL", "AUTONOMO", "CUOTA", "TGSS", "COTIZACION",
		}},
		{6, []string{ // health insurance
			"SEGURO MEDICO", "ADESLAS", "SANITAS", "ASISA", "DKV", "MAPFRE SALUD",
			"SEGURO SALUD", "MUTUA", "FARMACIA", "MEDICO", "CLINICA", "HOSPITAL",
		}},
		{7, []string{ // utilities
			"LUZ", "ELECTRICIDAD", "ENDESA", "IBERDROLA", "NATURGY", "GAS",
			"AGUA", "CANAL", "TELEFONO", "MOVIL", "INTERNET", "FIBRA",
			"MOVISTAR", "VODAFONE", "ORANGE", "JAZZTEL", "MASMOVIL", "YOIGO",
		}},
		{8, []string{ // equipment
			"ORDENADOR", "PORTATIL", "LAPTOP", "TABLET", "MOVIL", "SMARTPHONE",
			"MONITOR", "TECLADO", "RATON", "IMPRESORA", "ESCANER", "DISCO",
			"MEMORIA", "USB", "HARDWARE", "SOFTWARE", "LICENCIA", "APPLE",
			"MICROSOFT", "DELL", "HP", "LENOVO", "ASUS", "ACER", "SAMSUNG",
		}},
		{9, []string{ // training
			"CURSO", "FORMACION", "LIBRO", "EBOOK", "SEMINARIO", "CONFERENCIA",
			"CONGRESO", "TALLER", "WEBINAR", "ACADEMIA", "UNIVERSIDAD", "MASTER",
			"CERTIFICACION", "UDEMY", "COURSERA", "EDUCACION",
		}},
	},
}

var incomeMatcher = Matcher{
	Default: OtherIncomeSource,
	Rules: []Rule{
		{1, []string{ // invoices
			"FACTURA", "HONORARIO", "SERVICIO", "CLIENTE", "PROYECTO",
			"CONSULTOR", "DESARROLLO", "ARTIFICIAL", "INTELLIGENCE", "ORCHESTRATOR",
			"AIO", "GUADALIX", "AYUNTAMIENTO",
		}},
		{2, []string{ // tax refunds
			"DEVOLUCION", "HACIENDA", "AEAT", "AGENCIA TRIBUTARIA", "IRPF",
			"IVA", "IMPUESTO",
		}},
		{3, []string{ // grants
			"SUBVENCION", "AYUDA", "BECA", "GRANT", "FONDO", "PROGRAMA",
		}},
	},
}

var (
	nonDeductibleCategories = map[int64]bool{FoodCategory: true, OtherExpenseCategory: true}
	personalKeywords        = []string{"personal", "privado", "regalo", "ocio", "entretenimiento"}
)

// ExpenseCategory returns the expense category id for desc.
func ExpenseCategory(desc string) int64 { return expenseMatcher.Match(desc) }

// IncomeSource returns the income source id for desc.
func IncomeSource(desc string) int64 { return incomeMatcher.Match(desc) }

// IsTaxDeductible reports whether an expense can be deducted. Food and
// uncategorised expenses never are, nor is anything described as personal.
func IsTaxDeductible(desc string, categoryID int64) bool {
	if nonDeductibleCategories[categoryID] {
		return false
	}
	lower := strings.ToLower(desc)
	for _, kw := range personalKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}
