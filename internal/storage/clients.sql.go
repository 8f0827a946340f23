package storage

import (
	"context"
)

const listClients = `
SELECT id, name, tax_id, address, country, email, currency_code, currency_symbol
FROM clients
ORDER BY name
`

func (q *Queries) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, listClients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Client
	for rows.Next() {
		var i Client
		if err := rows.Scan(
			&i.ID, &i.Name, &i.TaxID, &i.Address, &i.Country, &i.Email,
			&i.CurrencyCode, &i.CurrencySymbol,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getClient = `
SELECT id, name, tax_id, address, country, email, currency_code, currency_symbol
FROM clients
WHERE id = ?
`

func (q *Queries) GetClient(ctx context.Context, id int64) (Client, error) {
	row := q.db.QueryRowContext(ctx, getClient, id)
	var i Client
	err := row.Scan(
		&i.ID, &i.Name, &i.TaxID, &i.Address, &i.Country, &i.Email,
		&i.CurrencyCode, &i.CurrencySymbol,
	)
	return i, err
}

const createClient = `
INSERT INTO clients (name, tax_id, address, country, email, currency_code, currency_symbol)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateClientParams struct {
	Name           string
	TaxID          string
	Address        string
	Country        string
	Email          string
	CurrencyCode   string
	CurrencySymbol string
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createClient,
		arg.Name, arg.TaxID, arg.Address, arg.Country, arg.Email,
		arg.CurrencyCode, arg.CurrencySymbol,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateClient = `
UPDATE clients
SET name = ?, tax_id = ?, address = ?, country = ?, email = ?, currency_code = ?, currency_symbol = ?
WHERE id = ?
`

type UpdateClientParams struct {
	CreateClientParams
	ID int64
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateClient,
		arg.Name, arg.TaxID, arg.Address, arg.Country, arg.Email,
		arg.CurrencyCode, arg.CurrencySymbol, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteClient = `DELETE FROM clients WHERE id = ?`

func (q *Queries) DeleteClient(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteClient, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countInvoicesByClient = `SELECT COUNT(*) FROM invoices WHERE client_id = ?`

func (q *Queries) CountInvoicesByClient(ctx context.Context, clientID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countInvoicesByClient, clientID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countEstimatesByClient = `SELECT COUNT(*) FROM estimates WHERE client_id = ?`

func (q *Queries) CountEstimatesByClient(ctx context.Context, clientID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEstimatesByClient, clientID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
