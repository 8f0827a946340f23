// Package stats shapes stored invoice aggregates into dashboard chart data.
package stats

import (
	"cmp"
	"math"
	"slices"

	"facturas/internal/core"

	"github.com/shopspring/decimal"
)

const (
	OthersLabel = "Others"
	NoDataLabel = "No Data"

	// Dashboard defaults.
	TopClientShares = 4
	TopClientSeries = 5
)

// MonthLabels are the x-axis labels of every monthly chart.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type (
	MonthCount struct {
		Month int // 1..12
		Count int64
	}

	RevenueRow struct {
		Month    int
		Amount   decimal.Decimal
		Currency core.Currency
	}

	ClientCount struct {
		Name  string
		Count int64
	}

	ClientMonthCount struct {
		Month int
		Name  string
		Count int64
	}

	// Revenue is one year of monthly amounts in a single currency.
	Revenue struct {
		Currency core.Currency
		Amounts  [12]decimal.Decimal
	}

	Share struct {
		Label   string
		Percent int
	}

	Series struct {
		Name string
		Data [12]int64
	}
)

// MonthlyCounts spreads per-month counts over a 12 slot array. Months outside
// 1..12 are ignored.
func MonthlyCounts(rows []MonthCount) [12]int64 {
	var out [12]int64
	for _, r := range rows {
		if r.Month >= 1 && r.Month <= 12 {
			out[r.Month-1] += r.Count
		}
	}
	return out
}

// MonthlyRevenue sums amounts per month after normalizing them to the
// reporting currency. Each resulting currency gets its own Revenue; the
// reporting currency always comes first.
func MonthlyRevenue(rows []RevenueRow) []Revenue {
	byCode := map[string]*Revenue{}
	var order []string
	get := func(c core.Currency) *Revenue {
		if r, ok := byCode[c.Code]; ok {
			return r
		}
		r := &Revenue{Currency: c}
		for i := range r.Amounts {
			r.Amounts[i] = decimal.Zero
		}
		byCode[c.Code] = r
		order = append(order, c.Code)
		return r
	}
	get(core.ReportingCurrency)

	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		amount, cur := core.NormalizeToReporting(row.Amount, row.Currency)
		if cur.Symbol == "" {
			if known, ok := core.CurrencyFor(cur.Code); ok {
				cur = known
			}
		}
		r := get(cur)
		r.Amounts[row.Month-1] = r.Amounts[row.Month-1].Add(amount)
	}

	out := make([]Revenue, 0, len(order))
	for _, code := range order {
		r := byCode[code]
		for i := range r.Amounts {
			r.Amounts[i] = r.Amounts[i].Round(2)
		}
		out = append(out, *r)
	}
	return out
}

// ClientShares returns the top clients by invoice count with their share of
// the total, plus an Others row for the remainder. Percentages are rounded
// independently (half to even), so they need not add up to 100.
func ClientShares(rows []ClientCount, top int) []Share {
	var total int64
	for _, r := range rows {
		total += r.Count
	}
	if total == 0 {
		return []Share{{Label: NoDataLabel, Percent: 100}}
	}

	sorted := sortClients(rows)
	percent := func(n int64) int {
		return int(math.RoundToEven(float64(n) / float64(total) * 100))
	}

	n := min(top, len(sorted))
	out := make([]Share, 0, n+1)
	for _, r := range sorted[:n] {
		out = append(out, Share{Label: r.Name, Percent: percent(r.Count)})
	}
	if len(sorted) > n {
		var others int64
		for _, r := range sorted[n:] {
			others += r.Count
		}
		out = append(out, Share{Label: OthersLabel, Percent: percent(others)})
	}
	return out
}

// MonthlyByClient builds one 12 month series per top client. When there are
// more clients than top, a trailing Others series collects the rest.
func MonthlyByClient(cells []ClientMonthCount, clients []ClientCount, top int) []Series {
	sorted := sortClients(clients)
	n := min(top, len(sorted))

	index := make(map[string]int, n)
	series := make([]Series, 0, n+1)
	for i, c := range sorted[:n] {
		index[c.Name] = i
		series = append(series, Series{Name: c.Name})
	}
	others := -1
	if len(sorted) > n {
		others = len(series)
		series = append(series, Series{Name: OthersLabel})
	}

	for _, c := range cells {
		if c.Month < 1 || c.Month > 12 {
			continue
		}
		i, ok := index[c.Name]
		if !ok {
			if others < 0 {
				continue
			}
			i = others
		}
		series[i].Data[c.Month-1] += c.Count
	}
	return series
}

// sortClients orders by count descending, then name.
func sortClients(rows []ClientCount) []ClientCount {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b ClientCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}
