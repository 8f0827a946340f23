package stats

import (
	"testing"

	"facturas/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyCounts(t *testing.T) {
	got := MonthlyCounts([]MonthCount{{1, 2}, {7, 3}, {12, 1}, {13, 9}, {0, 9}})
	assert.Equal(t, [12]int64{2, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0, 1}, got)
}

func TestClientShares(t *testing.T) {
	rows := []ClientCount{{"A", 40}, {"B", 30}, {"C", 20}, {"D", 5}, {"E", 5}}
	got := ClientShares(rows, TopClientShares)
	assert.Equal(t, []Share{
		{"A", 40}, {"B", 30}, {"C", 20}, {"D", 5}, {OthersLabel, 5},
	}, got)
}

func TestClientShares_IndependentRounding(t *testing.T) {
	got := ClientShares([]ClientCount{{"A", 1}, {"B", 1}, {"C", 1}}, TopClientShares)
	require.Len(t, got, 3)
	sum := 0
	for _, s := range got {
		assert.Equal(t, 33, s.Percent)
		sum += s.Percent
	}
	assert.Equal(t, 99, sum)

	// 1/8 = 12.5 rounds to even.
	got = ClientShares([]ClientCount{{"A", 7}, {"B", 1}}, TopClientShares)
	assert.Equal(t, []Share{{"A", 88}, {"B", 12}}, got)
}

func TestClientShares_Empty(t *testing.T) {
	want := []Share{{NoDataLabel, 100}}
	assert.Equal(t, want, ClientShares(nil, TopClientShares))
	assert.Equal(t, want, ClientShares([]ClientCount{{"A", 0}}, TopClientShares))
}

func TestClientShares_SortsUnorderedInput(t *testing.T) {
	got := ClientShares([]ClientCount{{"small", 1}, {"big", 3}}, 1)
	assert.Equal(t, []Share{{"big", 75}, {OthersLabel, 25}}, got)
}

func TestMonthlyByClient(t *testing.T) {
	clients := []ClientCount{{"A", 6}, {"B", 5}, {"C", 4}, {"D", 3}, {"E", 2}, {"F", 1}, {"G", 1}}
	cells := []ClientMonthCount{
		{1, "A", 6}, {2, "B", 5}, {3, "C", 4}, {3, "D", 3}, {4, "E", 2},
		{5, "F", 1}, {5, "G", 1},
	}
	got := MonthlyByClient(cells, clients, TopClientSeries)
	require.Len(t, got, 6)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, int64(6), got[0].Data[0])
	assert.Equal(t, OthersLabel, got[5].Name)
	assert.Equal(t, int64(2), got[5].Data[4])
}

func TestMonthlyByClient_NoOthersWhenFewClients(t *testing.T) {
	clients := []ClientCount{{"A", 1}, {"B", 1}}
	got := MonthlyByClient([]ClientMonthCount{{6, "A", 1}, {6, "B", 1}}, clients, TopClientSeries)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.NotEqual(t, OthersLabel, s.Name)
		assert.Equal(t, int64(1), s.Data[5])
	}
}

func TestMonthlyRevenue(t *testing.T) {
	usd := core.Currency{Code: "USD", Symbol: "$"}
	gbp := core.Currency{Code: "GBP", Symbol: "£"}
	got := MonthlyRevenue([]RevenueRow{
		{Month: 3, Amount: decimal.NewFromInt(100), Currency: usd},
		{Month: 3, Amount: decimal.NewFromInt(50), Currency: core.DefaultCurrency},
		{Month: 4, Amount: decimal.NewFromInt(10), Currency: core.Currency{}},
		{Month: 4, Amount: decimal.NewFromInt(20), Currency: gbp},
		{Month: 0, Amount: decimal.NewFromInt(999), Currency: usd},
	})
	require.Len(t, got, 2)

	eur := got[0]
	assert.Equal(t, core.ReportingCurrency, eur.Currency)
	assert.Equal(t, "135.00", eur.Amounts[2].StringFixed(2))
	assert.Equal(t, "10.00", eur.Amounts[3].StringFixed(2))
	assert.True(t, eur.Amounts[0].IsZero())

	assert.Equal(t, gbp, got[1].Currency)
	assert.Equal(t, "20.00", got[1].Amounts[3].StringFixed(2))
}

func TestMonthlyRevenue_Empty(t *testing.T) {
	got := MonthlyRevenue(nil)
	require.Len(t, got, 1)
	assert.Equal(t, core.ReportingCurrency, got[0].Currency)
}
