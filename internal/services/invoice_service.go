package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"facturas/internal/amqp"
	"facturas/internal/core"
	applog "facturas/internal/log"
	"facturas/internal/metrics"
	"facturas/internal/numbering"
	"facturas/internal/storage"
)

// MaxNumberAttempts bounds how often a document is renumbered after losing
// a race on the unique number index.
const MaxNumberAttempts = 3

type InvoiceStore interface {
	GetClient(ctx context.Context, id int64) (core.Client, error)
	GetService(ctx context.Context, id int64) (core.Service, error)
	InsertInvoice(ctx context.Context, inv core.Invoice, number storage.NumberFunc) (core.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (core.Invoice, error)
	ListInvoicesByYear(ctx context.Context, year int) ([]core.Invoice, error)
	ListRecentInvoices(ctx context.Context, limit int) ([]core.Invoice, error)
	InvoiceYears(ctx context.Context) ([]int, error)
	DeleteInvoice(ctx context.Context, id int64) error
}

// InvoiceRequest is the input of the invoice form. A zero Date means today.
type InvoiceRequest struct {
	ClientID         int64
	ServiceID        int64
	Quantity         int64
	Date             core.Date
	ApplyVAT         bool
	ApplyWithholding bool
}

// InvoiceView bundles an invoice with the parties printed on it.
type InvoiceView struct {
	Invoice core.Invoice
	Client  core.Client
	Service core.Service
}

type InvoiceService struct {
	store     InvoiceStore
	settings  SettingsStore
	publisher amqp.Publisher
	stats     Invalidator
	numbers   numbering.Generator
	logger    *applog.StructuredLogger
}

func NewInvoiceService(store InvoiceStore, settings SettingsStore, publisher amqp.Publisher, stats Invalidator) *InvoiceService {
	return &InvoiceService{
		store:     store,
		settings:  settings,
		publisher: orNopPublisher(publisher),
		stats:     orNopInvalidator(stats),
		logger:    componentLogger(applog.ComponentInvoice),
	}
}

// Create prices, numbers and stores a new invoice.
//
// Client and service are resolved before any number is computed, so an
// unknown id fails with core.ErrNotFound and consumes no sequence value.
func (s *InvoiceService) Create(ctx context.Context, req InvoiceRequest) (core.Invoice, error) {
	client, err := s.store.GetClient(ctx, req.ClientID)
	if err != nil {
		return core.Invoice{}, err
	}
	service, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return core.Invoice{}, err
	}

	settings := s.settings.Get()
	totals, err := core.CalculateLine(service.UnitPrice, req.Quantity, req.ApplyVAT, req.ApplyWithholding, settings.TaxRates())
	if err != nil {
		return core.Invoice{}, err
	}

	date := req.Date
	if date.IsZero() {
		now := s.numbers.Now
		if now == nil {
			now = time.Now
		}
		t := now()
		date = core.NewDate(t.Year(), int(t.Month()), t.Day())
	}

	inv := core.Invoice{
		ClientID:           client.ID,
		ServiceID:          service.ID,
		Quantity:           req.Quantity,
		Date:               date,
		ApplyVAT:           req.ApplyVAT,
		ApplyWithholding:   req.ApplyWithholding,
		Totals:             totals,
		Currency:           core.ResolveCurrency(client, settings.DefaultCurrency()),
		ClientName:         client.Name,
		ServiceDescription: service.Description,
	}

	number := func(ctx context.Context, c storage.DocumentCounter) (string, error) {
		return s.numbers.NextInvoiceNumber(ctx, c, client)
	}

	var saved core.Invoice
	attempt := 1
	for ; ; attempt++ {
		saved, err = s.store.InsertInvoice(ctx, inv, number)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrDuplicateNumber) || attempt == MaxNumberAttempts {
			return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
		}
		metrics.NumberConflicts.WithLabelValues("invoice").Inc()
		slog.WarnContext(ctx, "Invoice number taken, retrying", "client_id", client.ID, "attempt", attempt)
	}

	if err := s.settings.RememberSelection(client.ID, service.ID); err != nil {
		slog.WarnContext(ctx, "Failed to save invoice form preferences", "error", err)
	}
	s.stats.Invalidate()

	metrics.DocumentsIssued.WithLabelValues("invoice").Inc()
	total := saved.Totals.Total.StringFixed(2)
	s.logger.LogDocumentIssued(ctx, "invoice", saved.Number, client.ID, total, saved.Currency.Code, attempt)
	publish(ctx, s.publisher, amqp.EventInvoiceIssued, saved.Number, amqp.DocumentPayload{
		Number:     saved.Number,
		ClientID:   client.ID,
		ClientName: client.Name,
		Total:      total,
		Currency:   saved.Currency.Code,
	})
	return saved, nil
}

// View loads an invoice with its client and service.
func (s *InvoiceService) View(ctx context.Context, id int64) (InvoiceView, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return InvoiceView{}, err
	}
	client, err := s.store.GetClient(ctx, inv.ClientID)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("invoice %s client: %w", inv.Number, err)
	}
	service, err := s.store.GetService(ctx, inv.ServiceID)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("invoice %s service: %w", inv.Number, err)
	}
	return InvoiceView{Invoice: inv, Client: client, Service: service}, nil
}

func (s *InvoiceService) Recent(ctx context.Context, limit int) ([]core.Invoice, error) {
	return s.store.ListRecentInvoices(ctx, limit)
}

// Years lists the years having invoices, newest first. With no invoices it
// returns the current year alone.
func (s *InvoiceService) Years(ctx context.Context) ([]int, error) {
	years, err := s.store.InvoiceYears(ctx)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = []int{time.Now().Year()}
	}
	return years, nil
}

func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.stats.Invalidate()
	publish(ctx, s.publisher, amqp.EventInvoiceDeleted, inv.Number, amqp.DocumentPayload{
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		ClientName: inv.ClientName,
		Total:      inv.Totals.Total.StringFixed(2),
		Currency:   inv.Currency.Code,
	})
	return nil
}

// InvoiceListing is one year of invoices with the figures shown above the
// table.
type InvoiceListing struct {
	Year      int
	Invoices  []core.Invoice
	Clients   []string
	Subtotals []CurrencyTotal
}

// CurrencyTotal is a sum of amounts sharing one currency.
type CurrencyTotal struct {
	Currency core.Currency
	Amount   decimal.Decimal
}

// Listing returns the invoices of year with their distinct client names and
// subtotals summed per currency, in order of first appearance.
func (s *InvoiceService) Listing(ctx context.Context, year int) (InvoiceListing, error) {
	invoices, err := s.store.ListInvoicesByYear(ctx, year)
	if err != nil {
		return InvoiceListing{}, err
	}
	out := InvoiceListing{Year: year, Invoices: invoices}
	seen := map[string]bool{}
	idx := map[string]int{}
	for _, inv := range invoices {
		if !seen[inv.ClientName] {
			seen[inv.ClientName] = true
			out.Clients = append(out.Clients, inv.ClientName)
		}
		i, ok := idx[inv.Currency.Code]
		if !ok {
			i = len(out.Subtotals)
			idx[inv.Currency.Code] = i
			out.Subtotals = append(out.Subtotals, CurrencyTotal{Currency: inv.Currency, Amount: decimal.Zero})
		}
		out.Subtotals[i].Amount = out.Subtotals[i].Amount.Add(inv.Totals.Subtotal)
	}
	sort.Strings(out.Clients)
	return out, nil
}
