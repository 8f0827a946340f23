package storage

import (
	"context"
)

const countInvoiceNumbers = `
SELECT COUNT(*) FROM invoices
WHERE client_id = ? AND substr(number, 1, ?) = ?
`

// CountInvoiceNumbers counts numbers of clientID starting with prefix.
// prefixLen is the prefix length in characters.
func (q *Queries) CountInvoiceNumbers(ctx context.Context, clientID int64, prefixLen int, prefix string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countInvoiceNumbers, clientID, prefixLen, prefix)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const invoiceNumberExists = `
SELECT EXISTS(SELECT 1 FROM invoices WHERE client_id = ? AND number = ?)
`

func (q *Queries) InvoiceNumberExists(ctx context.Context, clientID int64, number string) (bool, error) {
	row := q.db.QueryRowContext(ctx, invoiceNumberExists, clientID, number)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createInvoice = `
INSERT INTO invoices (
    number, client_id, service_id, quantity, date, apply_vat, apply_withholding,
    subtotal_cents, vat_cents, withholding_cents, total_cents, currency_code, currency_symbol
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateInvoiceParams struct {
	Number           string
	ClientID         int64
	ServiceID        int64
	Quantity         int64
	Date             string
	ApplyVat         bool
	ApplyWithholding bool
	SubtotalCents    int64
	VatCents         int64
	WithholdingCents int64
	TotalCents       int64
	CurrencyCode     string
	CurrencySymbol   string
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createInvoice,
		arg.Number, arg.ClientID, arg.ServiceID, arg.Quantity, arg.Date,
		arg.ApplyVat, arg.ApplyWithholding,
		arg.SubtotalCents, arg.VatCents, arg.WithholdingCents, arg.TotalCents,
		arg.CurrencyCode, arg.CurrencySymbol,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const invoiceRowColumns = `
SELECT i.id, i.number, i.client_id, i.service_id, i.quantity, i.date,
       i.apply_vat, i.apply_withholding,
       i.subtotal_cents, i.vat_cents, i.withholding_cents, i.total_cents,
       i.currency_code, i.currency_symbol,
       c.name, s.description
FROM invoices i
JOIN clients c ON c.id = i.client_id
JOIN services s ON s.id = i.service_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoiceRow(r rowScanner) (InvoiceRow, error) {
	var i InvoiceRow
	err := r.Scan(
		&i.ID, &i.Number, &i.ClientID, &i.ServiceID, &i.Quantity, &i.Date,
		&i.ApplyVat, &i.ApplyWithholding,
		&i.SubtotalCents, &i.VatCents, &i.WithholdingCents, &i.TotalCents,
		&i.CurrencyCode, &i.CurrencySymbol,
		&i.ClientName, &i.ServiceDescription,
	)
	return i, err
}

const getInvoice = invoiceRowColumns + `WHERE i.id = ?`

func (q *Queries) GetInvoice(ctx context.Context, id int64) (InvoiceRow, error) {
	return scanInvoiceRow(q.db.QueryRowContext(ctx, getInvoice, id))
}

const listInvoicesByYear = invoiceRowColumns + `
WHERE substr(i.date, 1, 4) = ?
ORDER BY i.date DESC, i.id DESC
`

func (q *Queries) ListInvoicesByYear(ctx context.Context, year string) ([]InvoiceRow, error) {
	return q.listInvoiceRows(ctx, listInvoicesByYear, year)
}

const listRecentInvoices = invoiceRowColumns + `
ORDER BY i.date DESC, i.id DESC
LIMIT ?
`

func (q *Queries) ListRecentInvoices(ctx context.Context, limit int64) ([]InvoiceRow, error) {
	return q.listInvoiceRows(ctx, listRecentInvoices, limit)
}

func (q *Queries) listInvoiceRows(ctx context.Context, query string, args ...any) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceRow
	for rows.Next() {
		i, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listInvoiceYears = `
SELECT DISTINCT CAST(substr(date, 1, 4) AS INTEGER) AS year
FROM invoices
WHERE length(date) >= 10
ORDER BY year DESC
`

func (q *Queries) ListInvoiceYears(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listInvoiceYears)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var year int64
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		items = append(items, year)
	}
	return items, rows.Err()
}

const deleteInvoice = `DELETE FROM invoices WHERE id = ?`

func (q *Queries) DeleteInvoice(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInvoice, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listDuplicateDocumentNumbers = `
SELECT 'invoice' AS kind, number, COUNT(*) AS n FROM invoices GROUP BY client_id, number HAVING n > 1
UNION ALL
SELECT 'estimate' AS kind, number, COUNT(*) AS n FROM estimates GROUP BY number HAVING n > 1
ORDER BY kind, number
`

type DuplicateNumber struct {
	Kind   string
	Number string
	Count  int64
}

// ListDuplicateDocumentNumbers returns numbers stored more than once within
// their scope: per client for invoices, globally for estimates. Only
// databases created before the unique indexes can have any.
func (q *Queries) ListDuplicateDocumentNumbers(ctx context.Context) ([]DuplicateNumber, error) {
	rows, err := q.db.QueryContext(ctx, listDuplicateDocumentNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DuplicateNumber
	for rows.Next() {
		var i DuplicateNumber
		if err := rows.Scan(&i.Kind, &i.Number, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const invoiceCountsByMonth = `
SELECT CAST(substr(date, 6, 2) AS INTEGER) AS month, COUNT(*) AS count
FROM invoices
WHERE substr(date, 1, 4) = ?
GROUP BY month
ORDER BY month
`

type MonthCountRow struct {
	Month int64
	Count int64
}

func (q *Queries) InvoiceCountsByMonth(ctx context.Context, year string) ([]MonthCountRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceCountsByMonth, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthCountRow
	for rows.Next() {
		var i MonthCountRow
		if err := rows.Scan(&i.Month, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const invoiceRevenueByMonth = `
SELECT CAST(substr(date, 6, 2) AS INTEGER) AS month, currency_code, currency_symbol,
       SUM(subtotal_cents) AS subtotal_cents
FROM invoices
WHERE substr(date, 1, 4) = ?
GROUP BY month, currency_code, currency_symbol
ORDER BY month
`

type RevenueRow struct {
	Month          int64
	CurrencyCode   string
	CurrencySymbol string
	SubtotalCents  int64
}

func (q *Queries) InvoiceRevenueByMonth(ctx context.Context, year string) ([]RevenueRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceRevenueByMonth, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RevenueRow
	for rows.Next() {
		var i RevenueRow
		if err := rows.Scan(&i.Month, &i.CurrencyCode, &i.CurrencySymbol, &i.SubtotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const invoiceCountsByClient = `
SELECT c.name, COUNT(*) AS count
FROM invoices i
JOIN clients c ON c.id = i.client_id
WHERE substr(i.date, 1, 4) = ?
GROUP BY c.name
ORDER BY count DESC, c.name
`

type ClientCountRow struct {
	Name  string
	Count int64
}

func (q *Queries) InvoiceCountsByClient(ctx context.Context, year string) ([]ClientCountRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceCountsByClient, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ClientCountRow
	for rows.Next() {
		var i ClientCountRow
		if err := rows.Scan(&i.Name, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const invoiceCountsByClientMonth = `
SELECT CAST(substr(i.date, 6, 2) AS INTEGER) AS month, c.name, COUNT(*) AS count
FROM invoices i
JOIN clients c ON c.id = i.client_id
WHERE substr(i.date, 1, 4) = ?
GROUP BY month, c.name
ORDER BY month, count DESC
`

type ClientMonthCountRow struct {
	Month int64
	Name  string
	Count int64
}

func (q *Queries) InvoiceCountsByClientMonth(ctx context.Context, year string) ([]ClientMonthCountRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceCountsByClientMonth, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ClientMonthCountRow
	for rows.Next() {
		var i ClientMonthCountRow
		if err := rows.Scan(&i.Month, &i.Name, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const invoiceSubtotalsByCurrency = `
SELECT currency_code, currency_symbol, SUM(subtotal_cents) AS subtotal_cents
FROM invoices
WHERE substr(date, 1, 4) = ?
GROUP BY currency_code, currency_symbol
`

type CurrencySumRow struct {
	CurrencyCode   string
	CurrencySymbol string
	SubtotalCents  int64
}

func (q *Queries) InvoiceSubtotalsByCurrency(ctx context.Context, year string) ([]CurrencySumRow, error) {
	rows, err := q.db.QueryContext(ctx, invoiceSubtotalsByCurrency, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CurrencySumRow
	for rows.Next() {
		var i CurrencySumRow
		if err := rows.Scan(&i.CurrencyCode, &i.CurrencySymbol, &i.SubtotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
