package services

import (
	"context"
	"fmt"
	"strings"

	"facturas/internal/core"
)

type ClientStore interface {
	ListClients(ctx context.Context) ([]core.Client, error)
	GetClient(ctx context.Context, id int64) (core.Client, error)
	CreateClient(ctx context.Context, c core.Client) (int64, error)
	UpdateClient(ctx context.Context, c core.Client) error
	DeleteClient(ctx context.Context, id int64) error
}

// ClientService manages the client directory.
type ClientService struct {
	store ClientStore
	stats Invalidator
}

func NewClientService(store ClientStore, stats Invalidator) *ClientService {
	return &ClientService{store: store, stats: orNopInvalidator(stats)}
}

func (s *ClientService) List(ctx context.Context) ([]core.Client, error) {
	return s.store.ListClients(ctx)
}

func (s *ClientService) Get(ctx context.Context, id int64) (core.Client, error) {
	return s.store.GetClient(ctx, id)
}

// Save creates the client when ID is zero and updates it otherwise. A currency
// code without symbol is completed from the known currencies.
func (s *ClientService) Save(ctx context.Context, c core.Client) (core.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.TaxID = strings.TrimSpace(c.TaxID)
	if c.Currency.Code != "" && c.Currency.Symbol == "" {
		if known, ok := core.CurrencyFor(c.Currency.Code); ok {
			c.Currency = known
		}
	}
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}

	if c.ID == 0 {
		id, err := s.store.CreateClient(ctx, c)
		if err != nil {
			return core.Client{}, fmt.Errorf("create client: %w", err)
		}
		c.ID = id
		return c, nil
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return core.Client{}, fmt.Errorf("update client %d: %w", c.ID, err)
	}
	// Renames change the labels of the client charts.
	s.stats.Invalidate()
	return c, nil
}

// Delete removes a client. It fails with core.ErrReferentialConflict while
// invoices or estimates still reference it.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteClient(ctx, id)
}
