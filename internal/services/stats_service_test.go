package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/core"
	"facturas/internal/stats"
)

type fakeStatsStore struct {
	mu      sync.Mutex
	calls   int
	err     error
	months  []stats.MonthCount
	revenue []stats.RevenueRow
	clients []stats.ClientCount
	cells   []stats.ClientMonthCount
}

func (f *fakeStatsStore) hit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeStatsStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStatsStore) InvoiceCountsByMonth(context.Context, int) ([]stats.MonthCount, error) {
	return f.months, f.hit()
}

func (f *fakeStatsStore) InvoiceRevenueByMonth(context.Context, int) ([]stats.RevenueRow, error) {
	return f.revenue, f.hit()
}

func (f *fakeStatsStore) InvoiceCountsByClient(context.Context, int) ([]stats.ClientCount, error) {
	return f.clients, f.hit()
}

func (f *fakeStatsStore) InvoiceCountsByClientMonth(context.Context, int) ([]stats.ClientMonthCount, error) {
	return f.cells, f.hit()
}

func TestStatsService_CachesPerYear(t *testing.T) {
	store := &fakeStatsStore{months: []stats.MonthCount{{Month: 3, Count: 2}, {Month: 12, Count: 1}}}
	svc := NewStatsService(store, time.Minute)
	ctx := context.Background()

	got, err := svc.InvoiceCounts(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 1}, got.Counts)
	assert.Equal(t, "Jan", got.Months[0])
	assert.Equal(t, 2024, got.Year)

	_, err = svc.InvoiceCounts(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, store.count())

	_, err = svc.InvoiceCounts(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2, store.count())

	svc.Invalidate()
	_, err = svc.InvoiceCounts(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, store.count())
}

func TestStatsService_ErrorsAreNotCached(t *testing.T) {
	store := &fakeStatsStore{err: errors.New("db down")}
	svc := NewStatsService(store, time.Minute)
	ctx := context.Background()

	_, err := svc.ClientShares(ctx, 2024)
	require.Error(t, err)

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()

	got, err := svc.ClientShares(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{stats.NoDataLabel}, got.Labels)
	assert.Equal(t, []int{100}, got.Values)
}

func TestStatsService_Revenue(t *testing.T) {
	usd, _ := core.CurrencyFor("USD")
	gbp := core.Currency{Code: "GBP"}
	store := &fakeStatsStore{revenue: []stats.RevenueRow{
		{Month: 1, Amount: decimal.RequireFromString("100"), Currency: core.ReportingCurrency},
		{Month: 1, Amount: decimal.RequireFromString("100"), Currency: usd},
		{Month: 2, Amount: decimal.RequireFromString("40"), Currency: gbp},
	}}
	svc := NewStatsService(store, time.Minute)

	got, err := svc.Revenue(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, core.ReportingCurrency.Symbol, got.Currency)
	require.Len(t, got.Amounts, 12)
	assert.InDelta(t, 185.0, got.Amounts[0], 0.001)
	assert.Zero(t, got.Amounts[1])
	require.Len(t, got.Other, 1)
	assert.Equal(t, "GBP", got.Other[0].Currency)
	assert.InDelta(t, 40.0, got.Other[0].Amounts[1], 0.001)
}

func TestStatsService_ClientMonthly(t *testing.T) {
	store := &fakeStatsStore{
		clients: []stats.ClientCount{{Name: "Acme", Count: 3}, {Name: "Beta", Count: 1}},
		cells: []stats.ClientMonthCount{
			{Month: 1, Name: "Acme", Count: 2},
			{Month: 4, Name: "Acme", Count: 1},
			{Month: 4, Name: "Beta", Count: 1},
		},
	}
	svc := NewStatsService(store, time.Minute)

	got, err := svc.ClientMonthly(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got.Series, 2)
	assert.Equal(t, "Acme", got.Series[0].Name)
	assert.Equal(t, int64(2), got.Series[0].Data[0])
	assert.Equal(t, int64(1), got.Series[1].Data[3])

	shares, err := svc.ClientShares(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Beta"}, shares.Labels)
	assert.Equal(t, []int{75, 25}, shares.Values)
}
