package http

import (
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"facturas/internal/core"
	"facturas/internal/services"
)

type estimateListData struct {
	Estimates []core.Estimate
	Clients   []core.Client
	Services  []core.Service
	Statuses  []core.EstimateStatus
	Today     string
	Rates     core.TaxRates
}

var estimateStatuses = []core.EstimateStatus{
	core.EstimateDraft, core.EstimateSent, core.EstimateAccepted, core.EstimateRejected, core.EstimateExpired,
}

func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	estimates, err := s.svc.Estimates.List(ctx)
	if err != nil {
		s.fail(w, r, "list estimates", err)
		return
	}
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
	s.render(w, r, "estimates.html", "Estimates", estimateListData{
		Estimates: estimates,
		Clients:   clients,
		Services:  catalog,
		Statuses:  estimateStatuses,
		Today:     s.now().Format(core.DateLayout),
		Rates:     s.svc.Settings.Get().TaxRates(),
	})
}

func (s *Server) handleCreateEstimate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	req, err := estimateRequest(p, s.svc.Settings.Get().TaxRates().Withholding)
	if err != nil {
		s.fail(w, r, "create estimate", err)
		return
	}
	est, err := s.svc.Estimates.Create(r.Context(), req)
	if err != nil {
		s.fail(w, r, "create estimate", err)
		return
	}
	s.done(w, r, "/estimates/"+url.PathEscape(est.Number), "Estimate "+est.Number+" created",
		NewHTMXResponse().TriggerRecordCreated("estimate", est.Number))
}

func estimateRequest(p *RequestBodyParser, defaultWithholding decimal.Decimal) (services.EstimateRequest, error) {
	var req services.EstimateRequest
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
	if req.IssueDate, err = p.Date("issue_date"); err != nil {
		return req, err
	}
	if req.ValidUntil, err = p.Date("valid_until"); err != nil {
		return req, err
	}
	if req.WithholdingRate, err = p.Percent("withholding_rate", defaultWithholding); err != nil {
		return req, err
	}
	req.Notes = p.Get("notes")
	req.Terms = p.Get("terms")
	return req, nil
}

func (s *Server) handleViewEstimate(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Estimates.View(r.Context(), r.PathValue("number"))
	if err != nil {
		s.fail(w, r, "view estimate", err)
		return
	}
	s.render(w, r, "estimate.html", "Estimate "+view.Estimate.Number, struct {
		services.EstimateView
		Statuses []core.EstimateStatus
	}{view, estimateStatuses})
}

func (s *Server) handleEstimateStatus(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	number := r.PathValue("number")
	status := core.EstimateStatus(p.Get("status"))
	if err := s.svc.Estimates.UpdateStatus(r.Context(), number, status); err != nil {
		s.fail(w, r, "estimate status", err)
		return
	}
	s.done(w, r, "/estimates/"+url.PathEscape(number), "Estimate "+number+" marked "+string(status), nil)
}

func (s *Server) handleDeleteEstimate(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if err := s.svc.Estimates.Delete(r.Context(), number); err != nil {
		s.fail(w, r, "delete estimate", err)
		return
	}
	s.done(w, r, "/estimates", "Estimate "+number+" deleted", NewHTMXResponse().TriggerRecordDeleted("estimate", number))
}
