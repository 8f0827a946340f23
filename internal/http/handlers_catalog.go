package http

import (
	"fmt"
	"net/http"

	"facturas/internal/core"
)

type clientListData struct {
	Clients    []core.Client
	Currencies []string
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Clients.List(r.Context())
	if err != nil {
		s.fail(w, r, "list clients", err)
		return
	}
	s.render(w, r, "clients.html", "Clients", clientListData{
		Clients:    clients,
		Currencies: []string{"EUR", "USD", "GBP"},
	})
}

// handleSaveClient creates a client when client_id is empty and updates it
// otherwise.
func (s *Server) handleSaveClient(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	id, err := p.ID("client_id")
	if err != nil {
		s.fail(w, r, "save client", err)
		return
	}
	c := core.Client{
		ID:       id,
		Name:     p.Get("name"),
		TaxID:    p.Get("tax_id"),
		Address:  p.Get("address"),
		Country:  p.Get("country"),
		Email:    p.Get("email"),
		// The symbol is completed from the code when saving.
		Currency: core.Currency{Code: p.Get("currency")},
	}

	saved, err := s.svc.Clients.Save(r.Context(), c)
	if err != nil {
		s.fail(w, r, "save client", err)
		return
	}
	s.done(w, r, "/clients", "Client "+saved.Name+" saved", NewHTMXResponse().TriggerRecordCreated("client", saved.ID).TriggerFormReset())
}

// handleGetClient returns one client as JSON for the edit form.
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.failJSON(w, r, "get client", err)
		return
	}
	c, err := s.svc.Clients.Get(r.Context(), id)
	if err != nil {
		s.failJSON(w, r, "get client", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"tax_id":   c.TaxID,
		"address":  c.Address,
		"country":  c.Country,
		"email":    c.Email,
		"currency": c.Currency.Code,
	})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "delete client", err)
		return
	}
	if err := s.svc.Clients.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete client", err)
		return
	}
	s.done(w, r, "/clients", "Client deleted", NewHTMXResponse().TriggerRecordDeleted("client", id))
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Catalog.List(r.Context())
	if err != nil {
		s.fail(w, r, "list services", err)
		return
	}
	s.render(w, r, "services.html", "Services", list)
}

func (s *Server) handleSaveService(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	id, err := p.ID("service_id")
	if err != nil {
		s.fail(w, r, "save service", err)
		return
	}
	price, err := p.Amount("unit_price")
	if err != nil {
		s.fail(w, r, "save service", err)
		return
	}
	saved, err := s.svc.Catalog.Save(r.Context(), core.Service{
		ID:          id,
		Description: p.Get("description"),
		UnitPrice:   price,
		UnitType:    p.Get("unit_type"),
	})
	if err != nil {
		s.fail(w, r, "save service", err)
		return
	}
	s.done(w, r, "/services", fmt.Sprintf("Service %q saved", saved.Description),
		NewHTMXResponse().TriggerRecordCreated("service", saved.ID).TriggerFormReset())
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.failJSON(w, r, "get service", err)
		return
	}
	svc, err := s.svc.Catalog.Get(r.Context(), id)
	if err != nil {
		s.failJSON(w, r, "get service", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          svc.ID,
		"description": svc.Description,
		"unit_price":  svc.UnitPrice.StringFixed(2),
		"unit_type":   svc.UnitType,
	})
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "delete service", err)
		return
	}
	if err := s.svc.Catalog.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete service", err)
		return
	}
	s.done(w, r, "/services", "Service deleted", NewHTMXResponse().TriggerRecordDeleted("service", id))
}
