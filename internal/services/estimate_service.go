package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"facturas/internal/amqp"
	"facturas/internal/core"
	applog "facturas/internal/log"
	"facturas/internal/metrics"
	"facturas/internal/numbering"
	"facturas/internal/storage"
)

// DefaultEstimateValidity is used when an estimate has no valid-until date.
const DefaultEstimateValidity = 30 * 24 * time.Hour

type EstimateStore interface {
	GetClient(ctx context.Context, id int64) (core.Client, error)
	GetService(ctx context.Context, id int64) (core.Service, error)
	InsertEstimate(ctx context.Context, est core.Estimate, number storage.NumberFunc) (core.Estimate, error)
	GetEstimate(ctx context.Context, number string) (core.Estimate, error)
	ListEstimates(ctx context.Context) ([]core.Estimate, error)
	UpdateEstimateStatus(ctx context.Context, number string, status core.EstimateStatus) error
	DeleteEstimate(ctx context.Context, number string) error
}

// EstimateRequest is the input of the estimate form. VAT always applies at
// the configured rate; withholding uses the explicit rate.
type EstimateRequest struct {
	ClientID        int64
	ServiceID       int64
	Quantity        int64
	IssueDate       core.Date
	ValidUntil      core.Date
	WithholdingRate decimal.Decimal
	Notes           string
	Terms           string
}

type EstimateView struct {
	Estimate core.Estimate
	Client   core.Client
	Service  core.Service
}

type EstimateService struct {
	store     EstimateStore
	settings  SettingsStore
	publisher amqp.Publisher
	numbers   numbering.Generator
	logger    *applog.StructuredLogger
}

func NewEstimateService(store EstimateStore, settings SettingsStore, publisher amqp.Publisher) *EstimateService {
	return &EstimateService{
		store:     store,
		settings:  settings,
		publisher: orNopPublisher(publisher),
		logger:    componentLogger(applog.ComponentEstimate),
	}
}

// Create prices, numbers and stores a Draft estimate.
func (s *EstimateService) Create(ctx context.Context, req EstimateRequest) (core.Estimate, error) {
	if err := req.IssueDate.Validate(); err != nil {
		return core.Estimate{}, core.InvalidInput("issue date is required")
	}
	validUntil := req.ValidUntil
	if validUntil.IsZero() {
		validUntil = core.Date{Time: req.IssueDate.Add(DefaultEstimateValidity)}
	}
	if validUntil.Before(req.IssueDate.Time) {
		return core.Estimate{}, core.InvalidInput("valid-until date %s is before issue date %s", validUntil, req.IssueDate)
	}
	if req.Quantity <= 0 {
		return core.Estimate{}, core.InvalidInput("quantity must be positive")
	}

	client, err := s.store.GetClient(ctx, req.ClientID)
	if err != nil {
		return core.Estimate{}, err
	}
	service, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return core.Estimate{}, err
	}

	settings := s.settings.Get()
	subtotal := service.UnitPrice.Mul(decimal.NewFromInt(req.Quantity))
	totals, err := core.Calculate(subtotal, settings.TaxRates().VAT, req.WithholdingRate)
	if err != nil {
		return core.Estimate{}, err
	}

	est := core.Estimate{
		ClientID:           client.ID,
		ServiceID:          service.ID,
		Quantity:           req.Quantity,
		IssueDate:          req.IssueDate,
		ValidUntil:         validUntil,
		WithholdingRate:    req.WithholdingRate,
		Totals:             totals,
		Currency:           core.ResolveCurrency(client, settings.DefaultCurrency()),
		Status:             core.EstimateDraft,
		Notes:              strings.TrimSpace(req.Notes),
		Terms:              strings.TrimSpace(req.Terms),
		ClientName:         client.Name,
		ServiceDescription: service.Description,
	}

	number := func(ctx context.Context, c storage.DocumentCounter) (string, error) {
		return s.numbers.NextEstimateNumber(ctx, c, req.IssueDate)
	}

	var saved core.Estimate
	attempt := 1
	for ; ; attempt++ {
		saved, err = s.store.InsertEstimate(ctx, est, number)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrDuplicateNumber) || attempt == MaxNumberAttempts {
			return core.Estimate{}, fmt.Errorf("save estimate: %w", err)
		}
		metrics.NumberConflicts.WithLabelValues("estimate").Inc()
		slog.WarnContext(ctx, "Estimate number taken, retrying", "attempt", attempt)
	}

	metrics.DocumentsIssued.WithLabelValues("estimate").Inc()
	total := saved.Totals.Total.StringFixed(2)
	s.logger.LogDocumentIssued(ctx, "estimate", saved.Number, client.ID, total, saved.Currency.Code, attempt)
	publish(ctx, s.publisher, amqp.EventEstimateIssued, saved.Number, amqp.DocumentPayload{
		Number:     saved.Number,
		ClientID:   client.ID,
		ClientName: client.Name,
		Total:      total,
		Currency:   saved.Currency.Code,
		Status:     string(saved.Status),
	})
	return saved, nil
}

func (s *EstimateService) View(ctx context.Context, number string) (EstimateView, error) {
	est, err := s.store.GetEstimate(ctx, number)
	if err != nil {
		return EstimateView{}, err
	}
	client, err := s.store.GetClient(ctx, est.ClientID)
	if err != nil {
		return EstimateView{}, fmt.Errorf("estimate %s client: %w", number, err)
	}
	service, err := s.store.GetService(ctx, est.ServiceID)
	if err != nil {
		return EstimateView{}, fmt.Errorf("estimate %s service: %w", number, err)
	}
	return EstimateView{Estimate: est, Client: client, Service: service}, nil
}

func (s *EstimateService) List(ctx context.Context) ([]core.Estimate, error) {
	return s.store.ListEstimates(ctx)
}

// UpdateStatus changes only the status; monetary fields stay frozen.
func (s *EstimateService) UpdateStatus(ctx context.Context, number string, status core.EstimateStatus) error {
	if !status.Valid() {
		return core.InvalidInput("unknown estimate status %q", status)
	}
	if err := s.store.UpdateEstimateStatus(ctx, number, status); err != nil {
		return err
	}
	publish(ctx, s.publisher, amqp.EventEstimateStatusChanged, number, amqp.DocumentPayload{
		Number: number,
		Status: string(status),
	})
	return nil
}

func (s *EstimateService) Delete(ctx context.Context, number string) error {
	return s.store.DeleteEstimate(ctx, number)
}
