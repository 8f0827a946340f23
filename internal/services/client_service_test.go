package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/core"
)

func TestClientService_DeleteGuard(t *testing.T) {
	env := newTestEnv(t)
	clients := NewClientService(env.repo, env.stats)
	invoices := NewInvoiceService(env.repo, env.settings, nil, nil)
	invoices.numbers.Now = fixedNow(2024, time.July, 15)
	ctx := context.Background()

	billed, err := clients.Save(ctx, core.Client{Name: "Billed SL", TaxID: "B1"})
	require.NoError(t, err)
	idle, err := clients.Save(ctx, core.Client{Name: "Idle SL", TaxID: "B2"})
	require.NoError(t, err)
	s := env.service(t, "10")

	_, err = invoices.Create(ctx, InvoiceRequest{ClientID: billed.ID, ServiceID: s.ID, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, clients.Delete(ctx, billed.ID), core.ErrReferentialConflict)
	_, err = clients.Get(ctx, billed.ID)
	assert.NoError(t, err)

	require.NoError(t, clients.Delete(ctx, idle.ID))
	_, err = clients.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClientService_Save(t *testing.T) {
	env := newTestEnv(t)
	svc := NewClientService(env.repo, env.stats)
	ctx := context.Background()

	c, err := svc.Save(ctx, core.Client{Name: "  Yankee  ", TaxID: " US1 ", Currency: core.Currency{Code: "USD"}})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Yankee", c.Name)
	assert.Equal(t, core.Currency{Code: "USD", Symbol: "$"}, c.Currency)
	assert.Zero(t, env.stats.count())

	c.Name = "Yankee Corp"
	_, err = svc.Save(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, env.stats.count())

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yankee Corp", got.Name)

	_, err = svc.Save(ctx, core.Client{Name: "Bad", TaxID: "X", Currency: core.Currency{Code: "USD", Symbol: "€"}})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Save(ctx, core.Client{TaxID: "X"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalogService_SaveAndGuard(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.repo)
	invoices := NewInvoiceService(env.repo, env.settings, nil, nil)
	ctx := context.Background()

	s, err := svc.Save(ctx, core.Service{Description: "Soporte", UnitPrice: decimal.RequireFromString("12.345"), UnitType: "hora"})
	require.NoError(t, err)
	assert.Equal(t, "12.35", s.UnitPrice.StringFixed(2))

	_, err = svc.Save(ctx, core.Service{Description: "Gratis", UnitPrice: decimal.NewFromInt(-1), UnitType: "hora"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	c := env.client(t, "Acme", core.Currency{})
	_, err = invoices.Create(ctx, InvoiceRequest{ClientID: c.ID, ServiceID: s.ID, Quantity: 1, Date: core.NewDate(2024, 1, 10)})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, s.ID), core.ErrReferentialConflict)

	free, err := svc.Save(ctx, core.Service{Description: "Libre", UnitPrice: decimal.NewFromInt(1), UnitType: "mes"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, free.ID))
	assert.ErrorIs(t, svc.Delete(ctx, free.ID), core.ErrNotFound)
}
