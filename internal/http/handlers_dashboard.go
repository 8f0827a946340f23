package http

import (
	"net/http"
	"strconv"
)

type dashboardData struct {
	Year  int
	Years []int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	years, err := s.svc.Invoices.Years(r.Context())
	if err != nil {
		s.fail(w, r, "invoice years", err)
		return
	}
	year := ParseYear(r.URL.Query(), s.now())
	s.render(w, r, "dashboard.html", "Dashboard "+strconv.Itoa(year), dashboardData{Year: year, Years: years})
}

func (s *Server) handleInvoiceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats.InvoiceCounts(r.Context(), ParseYear(r.URL.Query(), s.now()))
	if err != nil {
		s.failJSON(w, r, "invoice stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRevenueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats.Revenue(r.Context(), ParseYear(r.URL.Query(), s.now()))
	if err != nil {
		s.failJSON(w, r, "revenue stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats.ClientShares(r.Context(), ParseYear(r.URL.Query(), s.now()))
	if err != nil {
		s.failJSON(w, r, "client stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClientMonthlyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats.ClientMonthly(r.Context(), ParseYear(r.URL.Query(), s.now()))
	if err != nil {
		s.failJSON(w, r, "client monthly stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
