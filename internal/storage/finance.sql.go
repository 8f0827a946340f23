package storage

import (
	"context"
)

const listExpenseCategories = `SELECT id, name FROM expense_categories ORDER BY id`

func (q *Queries) ListExpenseCategories(ctx context.Context) ([]Category, error) {
	return q.listCategories(ctx, listExpenseCategories)
}

const listIncomeSources = `SELECT id, name FROM income_sources ORDER BY id`

func (q *Queries) ListIncomeSources(ctx context.Context) ([]Category, error) {
	return q.listCategories(ctx, listIncomeSources)
}

func (q *Queries) listCategories(ctx context.Context, query string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createExpense = `
INSERT INTO expenses (category_id, description, amount_cents, date, payment_method, notes, tax_deductible)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateExpenseParams struct {
	CategoryID    int64
	Description   string
	AmountCents   int64
	Date          string
	PaymentMethod string
	Notes         string
	TaxDeductible bool
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.CategoryID, arg.Description, arg.AmountCents, arg.Date,
		arg.PaymentMethod, arg.Notes, arg.TaxDeductible,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const expenseColumns = `
SELECT e.id, e.category_id, e.description, e.amount_cents, e.date,
       e.payment_method, e.notes, e.tax_deductible, c.name
FROM expenses e
JOIN expense_categories c ON c.id = e.category_id
`

const listExpensesBetween = expenseColumns + `
WHERE e.date BETWEEN ? AND ?
ORDER BY e.date DESC, e.id DESC
`

// ListExpensesBetween returns expenses dated within [from, to], both YYYY-MM-DD.
func (q *Queries) ListExpensesBetween(ctx context.Context, from, to string) ([]Expense, error) {
	return q.listExpenses(ctx, listExpensesBetween, from, to)
}

const listTaxDeductibleExpenses = expenseColumns + `
WHERE e.tax_deductible = 1 AND substr(e.date, 1, 4) = ?
ORDER BY e.date DESC, e.id DESC
`

func (q *Queries) ListTaxDeductibleExpenses(ctx context.Context, year string) ([]Expense, error) {
	return q.listExpenses(ctx, listTaxDeductibleExpenses, year)
}

const listAllExpenses = expenseColumns + `ORDER BY e.date DESC, e.id DESC`

func (q *Queries) ListAllExpenses(ctx context.Context) ([]Expense, error) {
	return q.listExpenses(ctx, listAllExpenses)
}

func (q *Queries) listExpenses(ctx context.Context, query string, args ...any) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID, &i.CategoryID, &i.Description, &i.AmountCents, &i.Date,
			&i.PaymentMethod, &i.Notes, &i.TaxDeductible, &i.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const expensesByCategory = `
SELECT c.name, SUM(e.amount_cents) AS total_cents
FROM expenses e
JOIN expense_categories c ON c.id = e.category_id
WHERE substr(e.date, 1, 4) = ?
GROUP BY c.id, c.name
ORDER BY total_cents DESC
`

type CategorySumRow struct {
	Name       string
	TotalCents int64
}

func (q *Queries) ExpensesByCategory(ctx context.Context, year string) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, expensesByCategory, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySumRow
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Name, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const yearTotals = `
SELECT
    (SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE substr(date, 1, 4) = ?) AS expenses_cents,
    (SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE substr(date, 1, 4) = ? AND tax_deductible = 1) AS deductible_cents,
    (SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE substr(date, 1, 4) = ?) AS incomes_cents
`

type YearTotalsRow struct {
	ExpensesCents   int64
	DeductibleCents int64
	IncomesCents    int64
}

func (q *Queries) YearTotals(ctx context.Context, year string) (YearTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, yearTotals, year, year, year)
	var i YearTotalsRow
	err := row.Scan(&i.ExpensesCents, &i.DeductibleCents, &i.IncomesCents)
	return i, err
}

const createIncome = `
INSERT INTO incomes (source_id, description, amount_cents, date, notes)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

type CreateIncomeParams struct {
	SourceID    int64
	Description string
	AmountCents int64
	Date        string
	Notes       string
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createIncome, arg.SourceID, arg.Description, arg.AmountCents, arg.Date, arg.Notes)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const incomeColumns = `
SELECT i.id, i.source_id, i.description, i.amount_cents, i.date, i.notes, s.name
FROM incomes i
JOIN income_sources s ON s.id = i.source_id
`

const listIncomesBetween = incomeColumns + `
WHERE i.date BETWEEN ? AND ?
ORDER BY i.date DESC, i.id DESC
`

func (q *Queries) ListIncomesBetween(ctx context.Context, from, to string) ([]Income, error) {
	return q.listIncomes(ctx, listIncomesBetween, from, to)
}

const listAllIncomes = incomeColumns + `ORDER BY i.date DESC, i.id DESC`

func (q *Queries) ListAllIncomes(ctx context.Context) ([]Income, error) {
	return q.listIncomes(ctx, listAllIncomes)
}

func (q *Queries) listIncomes(ctx context.Context, query string, args ...any) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		var i Income
		if err := rows.Scan(&i.ID, &i.SourceID, &i.Description, &i.AmountCents, &i.Date, &i.Notes, &i.SourceName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteIncome = `DELETE FROM incomes WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
