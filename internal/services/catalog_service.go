package services

import (
	"context"
	"fmt"
	"strings"

	"facturas/internal/core"
)

type CatalogStore interface {
	ListServices(ctx context.Context) ([]core.Service, error)
	GetService(ctx context.Context, id int64) (core.Service, error)
	CreateService(ctx context.Context, s core.Service) (int64, error)
	UpdateService(ctx context.Context, s core.Service) error
	DeleteService(ctx context.Context, id int64) error
}

// CatalogService manages the billable services offered to clients.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) List(ctx context.Context) ([]core.Service, error) {
	return s.store.ListServices(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (core.Service, error) {
	return s.store.GetService(ctx, id)
}

func (s *CatalogService) Save(ctx context.Context, svc core.Service) (core.Service, error) {
	svc.Description = strings.TrimSpace(svc.Description)
	svc.UnitType = strings.TrimSpace(svc.UnitType)
	svc.UnitPrice = svc.UnitPrice.Round(2)
	if err := svc.Validate(); err != nil {
		return core.Service{}, err
	}

	if svc.ID == 0 {
		id, err := s.store.CreateService(ctx, svc)
		if err != nil {
			return core.Service{}, fmt.Errorf("create service: %w", err)
		}
		svc.ID = id
		return svc, nil
	}
	if err := s.store.UpdateService(ctx, svc); err != nil {
		return core.Service{}, fmt.Errorf("update service %d: %w", svc.ID, err)
	}
	return svc, nil
}

// Delete removes a service unless an invoice or estimate references it.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteService(ctx, id)
}
