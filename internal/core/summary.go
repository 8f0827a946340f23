package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// FinancialSummary is the yearly profit overview. Invoice subtotals count as
// income alongside manually recorded incomes.
type FinancialSummary struct {
	Year          int
	TotalExpenses decimal.Decimal
	TotalIncomes  decimal.Decimal
	TotalInvoices decimal.Decimal
	TaxDeductible decimal.Decimal
	Profit        decimal.Decimal
	ByCategory    []CategoryAmount
}

// NewFinancialSummary derives totals and profit from the raw yearly sums.
func NewFinancialSummary(year int, expenses, incomes, invoices, deductible decimal.Decimal) FinancialSummary {
	totalIncomes := incomes.Add(invoices)
	return FinancialSummary{
		Year:          year,
		TotalExpenses: expenses,
		TotalIncomes:  totalIncomes,
		TotalInvoices: invoices,
		TaxDeductible: deductible,
		Profit:        totalIncomes.Sub(expenses),
	}
}
