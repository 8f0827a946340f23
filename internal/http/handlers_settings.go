package http

import (
	"net/http"
	"strings"

	"facturas/internal/config"
	"facturas/internal/core"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "settings.html", "Settings", s.svc.Settings.Get())
}

// handleSaveSettings replaces the currency, tax rates and issuer details.
// Rates are entered as percentages.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	current := s.svc.Settings.Get()
	vat, err := p.Percent("vat_rate", current.Tax.VATRate)
	if err != nil {
		s.fail(w, r, "save settings", err)
		return
	}
	withholding, err := p.Percent("withholding_rate", current.Tax.WithholdingRate)
	if err != nil {
		s.fail(w, r, "save settings", err)
		return
	}
	currency := current.Currency
	if code := strings.ToUpper(p.Get("currency")); code != "" {
		known, _ := core.CurrencyFor(code)
		currency = config.CurrencySettings{Code: known.Code, Symbol: known.Symbol}
	}

	err = s.svc.Settings.Update(func(st *config.Settings) {
		st.Currency = currency
		st.Tax = config.TaxSettings{VATRate: vat, WithholdingRate: withholding}
		st.Issuer = config.Issuer{
			Name:     p.Get("issuer_name"),
			TaxID:    p.Get("issuer_tax_id"),
			Address:  p.Get("issuer_address"),
			City:     p.Get("issuer_city"),
			Country:  p.Get("issuer_country"),
			Phone:    p.Get("issuer_phone"),
			Email:    p.Get("issuer_email"),
			BankIBAN: p.Get("issuer_bank_iban"),
			BankName: p.Get("issuer_bank_name"),
		}
	})
	if err != nil {
		s.fail(w, r, "save settings", err)
		return
	}
	s.done(w, r, "/settings", "Settings saved", nil)
}
