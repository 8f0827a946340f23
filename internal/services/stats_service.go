package services

import (
	"context"
	"strconv"
	"time"

	"facturas/internal/cache"
	"facturas/internal/metrics"
	"facturas/internal/stats"
)

const statsCacheSize = 32

type StatsStore interface {
	InvoiceCountsByMonth(ctx context.Context, year int) ([]stats.MonthCount, error)
	InvoiceRevenueByMonth(ctx context.Context, year int) ([]stats.RevenueRow, error)
	InvoiceCountsByClient(ctx context.Context, year int) ([]stats.ClientCount, error)
	InvoiceCountsByClientMonth(ctx context.Context, year int) ([]stats.ClientMonthCount, error)
}

// InvoiceStats is the payload of /api/invoice_stats.
type InvoiceStats struct {
	Months []string `json:"months"`
	Counts []int64  `json:"counts"`
	Year   int      `json:"year"`
}

// RevenueStats is the payload of /api/revenue_stats. Amounts are in the
// reporting currency; amounts in currencies without a conversion are listed
// separately.
type RevenueStats struct {
	Months   []string          `json:"months"`
	Amounts  []float64         `json:"amounts"`
	Currency string            `json:"currency"`
	Year     int               `json:"year"`
	Other    []CurrencyRevenue `json:"other_currencies,omitempty"`
}

type CurrencyRevenue struct {
	Currency string    `json:"currency"`
	Amounts  []float64 `json:"amounts"`
}

// ClientStats is the payload of /api/client_stats.
type ClientStats struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Year   int      `json:"year"`
}

// ClientMonthlyStats is the payload of /api/client_monthly_stats.
type ClientMonthlyStats struct {
	Months []string       `json:"months"`
	Series []SeriesValues `json:"series"`
	Year   int            `json:"year"`
}

type SeriesValues struct {
	Name string  `json:"name"`
	Data []int64 `json:"data"`
}

// StatsService computes dashboard charts and caches them per year until the
// next write invalidates them.
type StatsService struct {
	store   StatsStore
	counts  *cache.Loader[InvoiceStats]
	revenue *cache.Loader[RevenueStats]
	shares  *cache.Loader[ClientStats]
	series  *cache.Loader[ClientMonthlyStats]

	caches []cache.Cleaner
}

func NewStatsService(store StatsStore, ttl time.Duration) *StatsService {
	counts := cache.NewLRUCache[InvoiceStats](statsCacheSize, ttl)
	revenue := cache.NewLRUCache[RevenueStats](statsCacheSize, ttl)
	shares := cache.NewLRUCache[ClientStats](statsCacheSize, ttl)
	series := cache.NewLRUCache[ClientMonthlyStats](statsCacheSize, ttl)
	return &StatsService{
		store:   store,
		counts:  cache.NewLoader[InvoiceStats](counts),
		revenue: cache.NewLoader[RevenueStats](revenue),
		shares:  cache.NewLoader[ClientStats](shares),
		series:  cache.NewLoader[ClientMonthlyStats](series),
		caches:  []cache.Cleaner{counts, revenue, shares, series},
	}
}

// Register hands the underlying caches to m for expiry cleanup.
func (s *StatsService) Register(m *cache.Manager) {
	for _, c := range s.caches {
		m.Register(c)
	}
}

// Invalidate drops every cached chart.
func (s *StatsService) Invalidate() {
	s.counts.Invalidate()
	s.revenue.Invalidate()
	s.shares.Invalidate()
	s.series.Invalidate()
}

func (s *StatsService) InvoiceCounts(ctx context.Context, year int) (InvoiceStats, error) {
	return s.counts.Get(ctx, strconv.Itoa(year), func(ctx context.Context) (InvoiceStats, error) {
		metrics.StatsLoads.WithLabelValues("invoice_counts").Inc()
		rows, err := s.store.InvoiceCountsByMonth(ctx, year)
		if err != nil {
			return InvoiceStats{}, err
		}
		counts := stats.MonthlyCounts(rows)
		return InvoiceStats{Months: monthLabels(), Counts: counts[:], Year: year}, nil
	})
}

func (s *StatsService) Revenue(ctx context.Context, year int) (RevenueStats, error) {
	return s.revenue.Get(ctx, strconv.Itoa(year), func(ctx context.Context) (RevenueStats, error) {
		metrics.StatsLoads.WithLabelValues("revenue").Inc()
		rows, err := s.store.InvoiceRevenueByMonth(ctx, year)
		if err != nil {
			return RevenueStats{}, err
		}
		buckets := stats.MonthlyRevenue(rows)
		// The reporting currency always comes first.
		out := RevenueStats{
			Months:   monthLabels(),
			Amounts:  floats(buckets[0]),
			Currency: buckets[0].Currency.Symbol,
			Year:     year,
		}
		for _, b := range buckets[1:] {
			out.Other = append(out.Other, CurrencyRevenue{Currency: b.Currency.Code, Amounts: floats(b)})
		}
		return out, nil
	})
}

func (s *StatsService) ClientShares(ctx context.Context, year int) (ClientStats, error) {
	return s.shares.Get(ctx, strconv.Itoa(year), func(ctx context.Context) (ClientStats, error) {
		metrics.StatsLoads.WithLabelValues("client_shares").Inc()
		rows, err := s.store.InvoiceCountsByClient(ctx, year)
		if err != nil {
			return ClientStats{}, err
		}
		out := ClientStats{Year: year}
		for _, sh := range stats.ClientShares(rows, stats.TopClientShares) {
			out.Labels = append(out.Labels, sh.Label)
			out.Values = append(out.Values, sh.Percent)
		}
		return out, nil
	})
}

func (s *StatsService) ClientMonthly(ctx context.Context, year int) (ClientMonthlyStats, error) {
	return s.series.Get(ctx, strconv.Itoa(year), func(ctx context.Context) (ClientMonthlyStats, error) {
		metrics.StatsLoads.WithLabelValues("client_monthly").Inc()
		clients, err := s.store.InvoiceCountsByClient(ctx, year)
		if err != nil {
			return ClientMonthlyStats{}, err
		}
		cells, err := s.store.InvoiceCountsByClientMonth(ctx, year)
		if err != nil {
			return ClientMonthlyStats{}, err
		}
		out := ClientMonthlyStats{Months: monthLabels(), Series: []SeriesValues{}, Year: year}
		for _, sr := range stats.MonthlyByClient(cells, clients, stats.TopClientSeries) {
			data := sr.Data
			out.Series = append(out.Series, SeriesValues{Name: sr.Name, Data: data[:]})
		}
		return out, nil
	})
}

func monthLabels() []string {
	labels := stats.MonthLabels
	return labels[:]
}

func floats(r stats.Revenue) []float64 {
	out := make([]float64, len(r.Amounts))
	for i, a := range r.Amounts {
		out[i] = a.InexactFloat64()
	}
	return out
}
