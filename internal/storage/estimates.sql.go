package storage

import (
	"context"
)

const countEstimateNumbers = `
SELECT COUNT(*) FROM estimates
WHERE substr(number, 1, ?) = ?
`

func (q *Queries) CountEstimateNumbers(ctx context.Context, prefixLen int, prefix string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEstimateNumbers, prefixLen, prefix)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const estimateNumberExists = `
SELECT EXISTS(SELECT 1 FROM estimates WHERE number = ?)
`

func (q *Queries) EstimateNumberExists(ctx context.Context, number string) (bool, error) {
	row := q.db.QueryRowContext(ctx, estimateNumberExists, number)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createEstimate = `
INSERT INTO estimates (
    number, client_id, service_id, quantity, issue_date, valid_until, withholding_rate,
    subtotal_cents, vat_cents, withholding_cents, total_cents,
    currency_code, currency_symbol, status, notes, terms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateEstimateParams struct {
	Number           string
	ClientID         int64
	ServiceID        int64
	Quantity         int64
	IssueDate        string
	ValidUntil       string
	WithholdingRate  string
	SubtotalCents    int64
	VatCents         int64
	WithholdingCents int64
	TotalCents       int64
	CurrencyCode     string
	CurrencySymbol   string
	Status           string
	Notes            string
	Terms            string
}

func (q *Queries) CreateEstimate(ctx context.Context, arg CreateEstimateParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createEstimate,
		arg.Number, arg.ClientID, arg.ServiceID, arg.Quantity, arg.IssueDate, arg.ValidUntil,
		arg.WithholdingRate,
		arg.SubtotalCents, arg.VatCents, arg.WithholdingCents, arg.TotalCents,
		arg.CurrencyCode, arg.CurrencySymbol, arg.Status, arg.Notes, arg.Terms,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const estimateRowColumns = `
SELECT e.id, e.number, e.client_id, e.service_id, e.quantity, e.issue_date, e.valid_until,
       e.withholding_rate, e.subtotal_cents, e.vat_cents, e.withholding_cents, e.total_cents,
       e.currency_code, e.currency_symbol, e.status, e.notes, e.terms,
       c.name, s.description
FROM estimates e
JOIN clients c ON c.id = e.client_id
JOIN services s ON s.id = e.service_id
`

func scanEstimateRow(r rowScanner) (EstimateRow, error) {
	var i EstimateRow
	err := r.Scan(
		&i.ID, &i.Number, &i.ClientID, &i.ServiceID, &i.Quantity, &i.IssueDate, &i.ValidUntil,
		&i.WithholdingRate, &i.SubtotalCents, &i.VatCents, &i.WithholdingCents, &i.TotalCents,
		&i.CurrencyCode, &i.CurrencySymbol, &i.Status, &i.Notes, &i.Terms,
		&i.ClientName, &i.ServiceDescription,
	)
	return i, err
}

const getEstimateByNumber = estimateRowColumns + `WHERE e.number = ?`

func (q *Queries) GetEstimateByNumber(ctx context.Context, number string) (EstimateRow, error) {
	return scanEstimateRow(q.db.QueryRowContext(ctx, getEstimateByNumber, number))
}

const listEstimates = estimateRowColumns + `ORDER BY e.issue_date DESC, e.id DESC`

func (q *Queries) ListEstimates(ctx context.Context) ([]EstimateRow, error) {
	rows, err := q.db.QueryContext(ctx, listEstimates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EstimateRow
	for rows.Next() {
		i, err := scanEstimateRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateEstimateStatus = `UPDATE estimates SET status = ? WHERE number = ?`

func (q *Queries) UpdateEstimateStatus(ctx context.Context, number, status string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateEstimateStatus, status, number)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteEstimateByNumber = `DELETE FROM estimates WHERE number = ?`

func (q *Queries) DeleteEstimateByNumber(ctx context.Context, number string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEstimateByNumber, number)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
