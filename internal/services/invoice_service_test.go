package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/amqp"
	"facturas/internal/config"
	"facturas/internal/core"
)

func newInvoiceService(env *testEnv) *InvoiceService {
	svc := NewInvoiceService(env.repo, env.settings, env.pub, env.stats)
	svc.numbers.Now = fixedNow(2024, time.July, 15)
	return svc
}

func TestInvoiceService_SequencesPerClient(t *testing.T) {
	env := newTestEnv(t)
	svc := newInvoiceService(env)
	ctx := context.Background()

	aio := env.client(t, "Artificial Intelligence Orchestrator", core.Currency{})
	other := env.client(t, "Agencia Integral Online", core.Currency{})
	s := env.service(t, "75.50")

	req := InvoiceRequest{ClientID: aio.ID, ServiceID: s.ID, Quantity: 2, ApplyVAT: true, ApplyWithholding: true}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AIO-1", first.Number)

	second, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AIO-2", second.Number)

	req.ClientID = other.ID
	third, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AIO-1", third.Number)

	assert.Equal(t, "151.00", first.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "160.06", first.Totals.Total.StringFixed(2))
	assert.Equal(t, core.DefaultCurrency, first.Currency)
	assert.Equal(t, "2024-07-15", first.Date.String())

	assert.Equal(t, []amqp.EventKind{amqp.EventInvoiceIssued, amqp.EventInvoiceIssued, amqp.EventInvoiceIssued}, env.pub.kinds())
	assert.Equal(t, 3, env.stats.count())
	assert.Equal(t, other.ID, env.settings.Get().Preferences.LastClientID)
	assert.Equal(t, s.ID, env.settings.Get().Preferences.LastServiceID)
}

func TestInvoiceService_UnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	svc := newInvoiceService(env)
	ctx := context.Background()
	c := env.client(t, "Acme", core.Currency{})
	s := env.service(t, "10")

	_, err := svc.Create(ctx, InvoiceRequest{ClientID: 999, ServiceID: s.ID, Quantity: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Create(ctx, InvoiceRequest{ClientID: c.ID, ServiceID: 999, Quantity: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Create(ctx, InvoiceRequest{ClientID: c.ID, ServiceID: s.ID, Quantity: 0})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	assert.Empty(t, env.pub.kinds())
	assert.Zero(t, env.stats.count())
}

func TestInvoiceService_CurrencyFromClientOrSettings(t *testing.T) {
	env := newTestEnv(t)
	svc := newInvoiceService(env)
	ctx := context.Background()
	s := env.service(t, "100")

	usd := env.client(t, "Yankee Ltd", core.Currency{Code: "USD", Symbol: "$"})
	inv, err := svc.Create(ctx, InvoiceRequest{ClientID: usd.ID, ServiceID: s.ID, Quantity: 1, Date: core.NewDate(2024, 6, 3)})
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency.Code)
	assert.Equal(t, "100.00", inv.Totals.Total.StringFixed(2))
	assert.Equal(t, "2024-06-03", inv.Date.String())

	require.NoError(t, env.settings.Update(func(st *config.Settings) {
		st.Currency.Code, st.Currency.Symbol = "GBP", "£"
	}))
	plain := env.client(t, "Plain", core.Currency{})
	inv, err = svc.Create(ctx, InvoiceRequest{ClientID: plain.ID, ServiceID: s.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, core.Currency{Code: "GBP", Symbol: "£"}, inv.Currency)
}

func TestInvoiceService_ViewListingDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := newInvoiceService(env)
	ctx := context.Background()
	s := env.service(t, "100")
	acme := env.client(t, "Acme", core.Currency{})
	usd := env.client(t, "Beta Inc", core.Currency{Code: "USD"})

	a, err := svc.Create(ctx, InvoiceRequest{ClientID: acme.ID, ServiceID: s.ID, Quantity: 2, Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, InvoiceRequest{ClientID: usd.ID, ServiceID: s.ID, Quantity: 1, Date: core.NewDate(2024, 4, 1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, InvoiceRequest{ClientID: acme.ID, ServiceID: s.ID, Quantity: 1, Date: core.NewDate(2024, 5, 1)})
	require.NoError(t, err)

	view, err := svc.View(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", view.Client.Name)
	assert.Equal(t, s.ID, view.Service.ID)

	listing, err := svc.Listing(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, listing.Invoices, 3)
	assert.Equal(t, []string{"Acme", "Beta Inc"}, listing.Clients)
	require.Len(t, listing.Subtotals, 2)
	totals := map[string]string{}
	for _, ct := range listing.Subtotals {
		totals[ct.Currency.Code] = ct.Amount.StringFixed(2)
	}
	assert.Equal(t, map[string]string{"EUR": "300.00", "USD": "100.00"}, totals)

	years, err := svc.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, years)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.View(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), core.ErrNotFound)

	kinds := env.pub.kinds()
	assert.Equal(t, amqp.EventInvoiceDeleted, kinds[len(kinds)-1])
}

func TestInvoiceService_YearsDefaultsToCurrent(t *testing.T) {
	env := newTestEnv(t)
	years, err := newInvoiceService(env).Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{time.Now().Year()}, years)
}

func TestInvoiceService_NumberAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := newInvoiceService(env)
	ctx := context.Background()
	acme := env.client(t, "Acme Corp", core.Currency{})
	s := env.service(t, "10")
	req := InvoiceRequest{ClientID: acme.ID, ServiceID: s.ID, Quantity: 1}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AC-2", second.Number)

	require.NoError(t, svc.Delete(ctx, first.ID))

	third, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AC-3", third.Number)

	fourth, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2406-AC-4", fourth.Number)
}
