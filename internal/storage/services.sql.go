package storage

import (
	"context"
)

const listServices = `
SELECT id, description, unit_price_cents, unit_type
FROM services
ORDER BY description
`

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx, listServices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Service
	for rows.Next() {
		var i Service
		if err := rows.Scan(&i.ID, &i.Description, &i.UnitPriceCents, &i.UnitType); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getService = `
SELECT id, description, unit_price_cents, unit_type
FROM services
WHERE id = ?
`

func (q *Queries) GetService(ctx context.Context, id int64) (Service, error) {
	row := q.db.QueryRowContext(ctx, getService, id)
	var i Service
	err := row.Scan(&i.ID, &i.Description, &i.UnitPriceCents, &i.UnitType)
	return i, err
}

const createService = `
INSERT INTO services (description, unit_price_cents, unit_type)
VALUES (?, ?, ?)
RETURNING id
`

type CreateServiceParams struct {
	Description    string
	UnitPriceCents int64
	UnitType       string
}

func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createService, arg.Description, arg.UnitPriceCents, arg.UnitType)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateService = `
UPDATE services SET description = ?, unit_price_cents = ?, unit_type = ?
WHERE id = ?
`

type UpdateServiceParams struct {
	CreateServiceParams
	ID int64
}

func (q *Queries) UpdateService(ctx context.Context, arg UpdateServiceParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateService, arg.Description, arg.UnitPriceCents, arg.UnitType, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteService = `DELETE FROM services WHERE id = ?`

func (q *Queries) DeleteService(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteService, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countInvoicesByService = `SELECT COUNT(*) FROM invoices WHERE service_id = ?`

func (q *Queries) CountInvoicesByService(ctx context.Context, serviceID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countInvoicesByService, serviceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countEstimatesByService = `SELECT COUNT(*) FROM estimates WHERE service_id = ?`

func (q *Queries) CountEstimatesByService(ctx context.Context, serviceID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEstimatesByService, serviceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
