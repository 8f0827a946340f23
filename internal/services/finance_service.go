package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"facturas/internal/core"
	applog "facturas/internal/log"
	"facturas/internal/storage"
)

type FinanceStore interface {
	ExpenseCategories(ctx context.Context) ([]core.Category, error)
	IncomeSources(ctx context.Context) ([]core.Category, error)
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	CreateIncome(ctx context.Context, i core.Income) (int64, error)
	ListExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error)
	ListIncomes(ctx context.Context, from, to core.Date) ([]core.Income, error)
	TaxDeductibleExpenses(ctx context.Context, year int) ([]core.Expense, error)
	ExpensesByCategory(ctx context.Context, year int) ([]core.CategoryAmount, error)
	DeleteExpense(ctx context.Context, id int64) error
	DeleteIncome(ctx context.Context, id int64) error
	YearTotals(ctx context.Context, year int) (storage.YearTotals, error)
}

// FinanceService records expenses and incomes and builds the yearly summary.
type FinanceService struct {
	store FinanceStore
}

func NewFinanceService(store FinanceStore) *FinanceService {
	return &FinanceService{store: store}
}

func (s *FinanceService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ExpenseCategories(ctx)
}

func (s *FinanceService) Sources(ctx context.Context) ([]core.Category, error) {
	return s.store.IncomeSources(ctx)
}

// AddExpense stores a manually entered expense.
func (s *FinanceService) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	e.Description = strings.TrimSpace(e.Description)
	e.PaymentMethod = strings.TrimSpace(e.PaymentMethod)
	e.Notes = strings.TrimSpace(e.Notes)
	e.Amount = e.Amount.Round(2)
	if err := e.Validate(); err != nil {
		return 0, err
	}
	return s.store.CreateExpense(ctx, e)
}

func (s *FinanceService) AddIncome(ctx context.Context, i core.Income) (int64, error) {
	i.Description = strings.TrimSpace(i.Description)
	i.Notes = strings.TrimSpace(i.Notes)
	i.Amount = i.Amount.Round(2)
	if err := i.Validate(); err != nil {
		return 0, err
	}
	return s.store.CreateIncome(ctx, i)
}

// Expenses lists expenses dated within [from, to]; zero dates leave that
// side open.
func (s *FinanceService) Expenses(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, from, to)
}

func (s *FinanceService) Incomes(ctx context.Context, from, to core.Date) ([]core.Income, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.store.ListIncomes(ctx, from, to)
}

func (s *FinanceService) DeductibleExpenses(ctx context.Context, year int) ([]core.Expense, error) {
	return s.store.TaxDeductibleExpenses(ctx, year)
}

func (s *FinanceService) DeleteExpense(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

func (s *FinanceService) DeleteIncome(ctx context.Context, id int64) error {
	return s.store.DeleteIncome(ctx, id)
}

// Summary builds the financial summary of year. Invoice subtotals are
// normalized to the reporting currency before they count as income.
func (s *FinanceService) Summary(ctx context.Context, year int) (core.FinancialSummary, error) {
	totals, err := s.store.YearTotals(ctx, year)
	if err != nil {
		return core.FinancialSummary{}, err
	}
	invoices := decimal.Zero
	for _, row := range totals.Invoices {
		amount, cur := core.NormalizeToReporting(row.Amount, row.Currency)
		if cur.Code != core.ReportingCurrency.Code {
			slog.WarnContext(ctx, "Invoice subtotal in unconverted currency counted as-is",
				applog.FieldComponent, applog.ComponentFinance,
				applog.FieldCurrency, cur.Code,
				"amount", amount.StringFixed(2),
				applog.FieldYear, year)
		}
		invoices = invoices.Add(amount)
	}

	summary := core.NewFinancialSummary(year, totals.Expenses, totals.Incomes, invoices.Round(2), totals.Deductible)
	summary.ByCategory, err = s.store.ExpensesByCategory(ctx, year)
	if err != nil {
		return core.FinancialSummary{}, err
	}
	return summary, nil
}

func checkRange(from, to core.Date) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		return core.InvalidInput("date range ends (%s) before it starts (%s)", to, from)
	}
	return nil
}
