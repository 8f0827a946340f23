package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"facturas/internal/config"
	"facturas/internal/core"
	applog "facturas/internal/log"
	"facturas/internal/metrics"
	"facturas/internal/middleware/ratelimit"
	"facturas/internal/middleware/security"
	"facturas/internal/middleware/trace"
	"facturas/internal/services"
	"facturas/internal/statement"
	appweb "facturas/web"
)

// Services bundles the use cases the handlers call.
type Services struct {
	Clients   *services.ClientService
	Catalog   *services.CatalogService
	Invoices  *services.InvoiceService
	Estimates *services.EstimateService
	Finance   *services.FinanceService
	Imports   *services.ImportService
	Stats     *services.StatsService
	Settings  *config.SettingsStore
}

// SheetsOpener opens the configured Google Sheets statement, or returns
// nil when Sheets import is not configured.
type SheetsOpener func(ctx context.Context) (statement.Reader, error)

// Options configure the HTTP server.
type Options struct {
	Addr           string
	SessionSecret  string
	AllowedOrigins []string
	RateLimit      ratelimit.Config
	Logger         *applog.Logger
	Sheets         SheetsOpener
	Ping           func(context.Context) error
	Now            func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	svc       Services
	sessions  *sessions.CookieStore
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	sheets    SheetsOpener
	ping      func(context.Context) error
	now       func() time.Time
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route behind the
// trace, security and rate limit middleware.
func NewServer(opts Options, svc Services) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentHTTP})
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		svc:       svc,
		sessions:  newSessionStore(opts.SessionSecret),
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  security.NewDetector(),
		sheets:    opts.Sheets,
		ping:      opts.Ping,
		now:       opts.Now,
		started:   opts.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux, opts.AllowedOrigins)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP).Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, origins []string) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	s.handle(mux, "GET /{$}", s.handleIndex)

	s.handle(mux, "POST /invoices", s.handleCreateInvoice)
	s.handle(mux, "GET /invoices", s.handleListInvoices)
	s.handle(mux, "GET /invoices/{id}", s.handleViewInvoice)
	s.handle(mux, "POST /invoices/{id}/delete", s.handleDeleteInvoice)
	s.handle(mux, "DELETE /invoices/{id}", s.handleDeleteInvoice)

	s.handle(mux, "GET /estimates", s.handleListEstimates)
	s.handle(mux, "POST /estimates", s.handleCreateEstimate)
	s.handle(mux, "GET /estimates/{number}", s.handleViewEstimate)
	s.handle(mux, "POST /estimates/{number}/status", s.handleEstimateStatus)
	s.handle(mux, "POST /estimates/{number}/delete", s.handleDeleteEstimate)

	s.handle(mux, "GET /clients", s.handleListClients)
	s.handle(mux, "POST /clients", s.handleSaveClient)
	s.handle(mux, "GET /clients/{id}", s.handleGetClient)
	s.handle(mux, "POST /clients/{id}/delete", s.handleDeleteClient)

	s.handle(mux, "GET /services", s.handleListServices)
	s.handle(mux, "POST /services", s.handleSaveService)
	s.handle(mux, "GET /services/{id}", s.handleGetService)
	s.handle(mux, "POST /services/{id}/delete", s.handleDeleteService)

	s.handle(mux, "GET /expenses", s.handleListExpenses)
	s.handle(mux, "POST /expenses", s.handleAddExpense)
	s.handle(mux, "POST /expenses/{id}/delete", s.handleDeleteExpense)
	s.handle(mux, "GET /incomes", s.handleListIncomes)
	s.handle(mux, "POST /incomes", s.handleAddIncome)
	s.handle(mux, "POST /incomes/{id}/delete", s.handleDeleteIncome)
	s.handle(mux, "GET /summary", s.handleSummary)

	s.handle(mux, "GET /import", s.handleImportForm)
	s.handle(mux, "POST /import", s.handleImport)

	s.handle(mux, "GET /settings", s.handleSettings)
	s.handle(mux, "POST /settings", s.handleSaveSettings)

	s.handle(mux, "GET /dashboard", s.handleDashboard)

	api := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         7200,
	})
	for pattern, h := range map[string]http.HandlerFunc{
		"/api/invoice_stats":        s.handleInvoiceStats,
		"/api/revenue_stats":        s.handleRevenueStats,
		"/api/client_stats":         s.handleClientStats,
		"/api/client_monthly_stats": s.handleClientMonthlyStats,
	} {
		mux.Handle(pattern, metrics.Instrument(pattern, api.Handler(onlyGET(h))))
	}
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, metrics.Instrument(pattern, h))
}

// onlyGET lets CORS preflights through the cors handler and rejects
// everything but GET.
func onlyGET(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			MethodNotAllowedError(http.MethodGet).Write(w)
			return
		}
		h(w, r)
	})
}

// Shutdown stops the rate limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// page is the data every full-page template receives.
type page struct {
	Title   string
	Active  string
	Flashes []Flash
	Issuer  config.Issuer
	Data    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	p := page{
		Title:   title,
		Active:  strings.TrimSuffix(name, ".html"),
		Flashes: s.popFlashes(w, r),
		Issuer:  s.svc.Settings.Get().Issuer,
		Data:    data,
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, p); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldComponent, applog.ComponentTemplate,
			"template", name,
			applog.FieldError, err)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// done finishes a successful form post: htmx gets a notification and a
// redirect header, plain forms get a flash message and a 303.
func (s *Server) done(w http.ResponseWriter, r *http.Request, redirect, message string, b *HTMXResponseBuilder) {
	if isHTMX(r) {
		if b == nil {
			b = NewHTMXResponse()
		}
		b.TriggerSuccessNotification(message).Redirect(redirect).Write(w)
		return
	}
	s.addFlash(w, r, NotificationSuccess, message)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrReferentialConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail maps err to a status and writes an error fragment. Internal errors
// are logged and hidden from the user.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	logger := applog.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		msg = "Something went wrong, please try again"
	} else {
		logger.WarnContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}
	ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) failJSON(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "API request failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

var templateFuncs = template.FuncMap{
	"money": core.FormatMoney,
	"date": func(d core.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("02/01/2006")
	},
	"isodate": func(d core.Date) string { return d.String() },
	"percent": func(d decimal.Decimal) string {
		return d.Mul(decimal.NewFromInt(100)).StringFixed(2)
	},
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
}
