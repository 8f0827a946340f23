package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"facturas/internal/amqp"
	"facturas/internal/config"
	"facturas/internal/core"
	"facturas/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) kinds() []amqp.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type testEnv struct {
	repo     *storage.SQLiteRepository
	settings *config.SettingsStore
	pub      *recordingPublisher
	stats    *countingInvalidator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "facturas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	settings, err := config.LoadSettings(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	return &testEnv{
		repo:     repo,
		settings: settings,
		pub:      &recordingPublisher{},
		stats:    &countingInvalidator{},
	}
}

func (e *testEnv) client(t *testing.T, name string, cur core.Currency) core.Client {
	t.Helper()
	c := core.Client{Name: name, TaxID: "B12345678", Currency: cur}
	id, err := e.repo.CreateClient(context.Background(), c)
	require.NoError(t, err)
	c.ID = id
	return c
}

func (e *testEnv) service(t *testing.T, price string) core.Service {
	t.Helper()
	s := core.Service{Description: "Consultoría", UnitPrice: decimal.RequireFromString(price), UnitType: "hora"}
	id, err := e.repo.CreateService(context.Background(), s)
	require.NoError(t, err)
	s.ID = id
	return s
}

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }
}
