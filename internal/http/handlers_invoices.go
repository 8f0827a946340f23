package http

import (
	"fmt"
	"net/http"
	"strconv"

	"facturas/internal/config"
	"facturas/internal/core"
	"facturas/internal/services"
)

const recentInvoices = 10

type indexData struct {
	Clients     []core.Client
	Services    []core.Service
	Recent      []core.Invoice
	Today       string
	Preferences config.Preferences
	Rates       core.TaxRates
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clients, err := s.svc.Clients.List(ctx)
	if err != nil {
		s.fail(w, r, "list clients", err)
		return
	}
	catalog, err := s.svc.Catalog.List(ctx)
	if err != nil {
		s.fail(w, r, "list services", err)
		return
	}
	recent, err := s.svc.Invoices.Recent(ctx, recentInvoices)
	if err != nil {
		s.fail(w, r, "recent invoices", err)
		return
	}
	settings := s.svc.Settings.Get()
	s.render(w, r, "index.html", "New invoice", indexData{
		Clients:     clients,
		Services:    catalog,
		Recent:      recent,
		Today:       s.now().Format(core.DateLayout),
		Preferences: settings.Preferences,
		Rates:       settings.TaxRates(),
	})
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	req, err := invoiceRequest(p)
	if err != nil {
		s.fail(w, r, "create invoice", err)
		return
	}
	inv, err := s.svc.Invoices.Create(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create invoice", err)
		return
	}

	b := NewHTMXResponse().
		TriggerRecordCreated("invoice", inv.ID).
		TriggerStatsRefresh(inv.Date.Year())
	s.done(w, r, fmt.Sprintf("/invoices/%d", inv.ID), "Invoice "+inv.Number+" issued", b)
}

func invoiceRequest(p *RequestBodyParser) (services.InvoiceRequest, error) {
	var req services.InvoiceRequest
	var err error
	if req.ClientID, err = p.ID("client_id"); err != nil {
		return req, err
	}
	if req.ServiceID, err = p.ID("service_id"); err != nil {
		return req, err
	}
	if req.Quantity, err = p.Int("quantity", 1); err != nil {
		return req, err
	}
	if req.Date, err = p.Date("invoice_date"); err != nil {
		return req, err
	}
	req.ApplyVAT = p.Bool("apply_vat")
	req.ApplyWithholding = p.Bool("apply_withholding")
	return req, nil
}

type invoiceListData struct {
	services.InvoiceListing
	Years []int
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	years, err := s.svc.Invoices.Years(ctx)
	if err != nil {
		s.fail(w, r, "invoice years", err)
		return
	}
	// Without an explicit year the newest year with invoices is shown.
	year := years[0]
	if r.URL.Query().Has("year") {
		year = ParseYear(r.URL.Query(), s.now())
	}
	listing, err := s.svc.Invoices.Listing(ctx, year)
	if err != nil {
		s.fail(w, r, "list invoices", err)
		return
	}
	s.render(w, r, "invoices.html", "Invoices "+strconv.Itoa(year), invoiceListData{InvoiceListing: listing, Years: years})
}

func (s *Server) handleViewInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "view invoice", err)
		return
	}
	view, err := s.svc.Invoices.View(r.Context(), id)
	if err != nil {
		s.fail(w, r, "view invoice", err)
		return
	}
	s.render(w, r, "invoice.html", "Invoice "+view.Invoice.Number, view)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "delete invoice", err)
		return
	}
	if err := s.svc.Invoices.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete invoice", err)
		return
	}
	s.done(w, r, "/invoices", "Invoice deleted", NewHTMXResponse().TriggerRecordDeleted("invoice", id))
}
