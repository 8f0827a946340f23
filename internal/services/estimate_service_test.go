package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/amqp"
	"facturas/internal/core"
)

func TestEstimateService_NumbersAndTotals(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEstimateService(env.repo, env.settings, env.pub)
	ctx := context.Background()
	c := env.client(t, "Acme", core.Currency{})
	s := env.service(t, "50")

	req := EstimateRequest{
		ClientID:        c.ID,
		ServiceID:       s.ID,
		Quantity:        2,
		IssueDate:       core.NewDate(2024, 7, 15),
		WithholdingRate: decimal.RequireFromString("0.15"),
		Notes:           "  Two sessions ",
	}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-P001", first.Number)
	assert.Equal(t, core.EstimateDraft, first.Status)
	assert.Equal(t, "2024-08-14", first.ValidUntil.String())
	assert.Equal(t, "Two sessions", first.Notes)
	assert.Equal(t, "100.00", first.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "21.00", first.Totals.VAT.StringFixed(2))
	assert.Equal(t, "15.00", first.Totals.Withholding.StringFixed(2))
	assert.Equal(t, "106.00", first.Totals.Total.StringFixed(2))

	second, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-P002", second.Number)

	req.IssueDate = core.NewDate(2024, 8, 1)
	august, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-08-P001", august.Number)

	assert.Equal(t, []amqp.EventKind{amqp.EventEstimateIssued, amqp.EventEstimateIssued, amqp.EventEstimateIssued}, env.pub.kinds())
}

func TestEstimateService_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEstimateService(env.repo, env.settings, nil)
	ctx := context.Background()
	c := env.client(t, "Acme", core.Currency{})
	s := env.service(t, "50")

	tests := []struct {
		name string
		req  EstimateRequest
		want error
	}{
		{"missing issue date", EstimateRequest{ClientID: c.ID, ServiceID: s.ID, Quantity: 1}, core.ErrInvalidInput},
		{"valid until before issue", EstimateRequest{
			ClientID: c.ID, ServiceID: s.ID, Quantity: 1,
			IssueDate: core.NewDate(2024, 7, 15), ValidUntil: core.NewDate(2024, 7, 1),
		}, core.ErrInvalidInput},
		{"zero quantity", EstimateRequest{ClientID: c.ID, ServiceID: s.ID, IssueDate: core.NewDate(2024, 7, 15)}, core.ErrInvalidInput},
		{"withholding out of range", EstimateRequest{
			ClientID: c.ID, ServiceID: s.ID, Quantity: 1, IssueDate: core.NewDate(2024, 7, 15),
			WithholdingRate: decimal.NewFromInt(2),
		}, core.ErrInvalidInput},
		{"unknown client", EstimateRequest{ClientID: 404, ServiceID: s.ID, Quantity: 1, IssueDate: core.NewDate(2024, 7, 15)}, core.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEstimateService_StatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEstimateService(env.repo, env.settings, env.pub)
	ctx := context.Background()
	c := env.client(t, "Acme", core.Currency{Code: "USD", Symbol: "$"})
	s := env.service(t, "80")

	est, err := svc.Create(ctx, EstimateRequest{ClientID: c.ID, ServiceID: s.ID, Quantity: 1, IssueDate: core.NewDate(2024, 7, 15)})
	require.NoError(t, err)
	assert.Equal(t, "USD", est.Currency.Code)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, est.Number, "Lost"), core.ErrInvalidInput)
	require.NoError(t, svc.UpdateStatus(ctx, est.Number, core.EstimateAccepted))
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "2024-07-P999", core.EstimateSent), core.ErrNotFound)

	view, err := svc.View(ctx, est.Number)
	require.NoError(t, err)
	assert.Equal(t, core.EstimateAccepted, view.Estimate.Status)
	assert.True(t, view.Estimate.Totals.Total.Equal(est.Totals.Total))
	assert.Equal(t, "Acme", view.Client.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, est.Number))
	_, err = svc.View(ctx, est.Number)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []amqp.EventKind{amqp.EventEstimateIssued, amqp.EventEstimateStatusChanged}, env.pub.kinds())
}

func TestEstimateService_NumberAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEstimateService(env.repo, env.settings, nil)
	ctx := context.Background()
	c := env.client(t, "Acme", core.Currency{})
	s := env.service(t, "50")
	req := EstimateRequest{ClientID: c.ID, ServiceID: s.ID, Quantity: 1, IssueDate: core.NewDate(2024, 7, 15)}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.Number))

	next, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-P003", next.Number)

	// The freed P001 is not reused either: the count is back at two.
	last, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-P004", last.Number)
}
