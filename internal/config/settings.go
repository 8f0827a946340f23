package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"facturas/internal/core"
)

// Settings are the user-editable application defaults persisted as JSON.
type Settings struct {
	Currency    CurrencySettings `json:"currency"`
	Tax         TaxSettings      `json:"tax"`
	Issuer      Issuer           `json:"issuer"`
	Preferences Preferences      `json:"preferences"`
}

type CurrencySettings struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

type TaxSettings struct {
	VATRate         decimal.Decimal `json:"vat_rate"`
	WithholdingRate decimal.Decimal `json:"withholding_rate"`
}

// Issuer is printed on every invoice and estimate.
type Issuer struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	BankIBAN string `json:"bank_iban"`
	BankName string `json:"bank_name"`
}

// Preferences remember the last selections of the invoice form.
type Preferences struct {
	LastClientID  int64 `json:"last_client_id,omitempty"`
	LastServiceID int64 `json:"last_service_id,omitempty"`
}

// DefaultSettings returns EUR with 21% VAT and 15% withholding.
func DefaultSettings() Settings {
	rates := core.DefaultTaxRates()
	return Settings{
		Currency: CurrencySettings{Code: core.DefaultCurrency.Code, Symbol: core.DefaultCurrency.Symbol},
		Tax:      TaxSettings{VATRate: rates.VAT, WithholdingRate: rates.Withholding},
		Issuer:   Issuer{Country: "Spain"},
	}
}

// DefaultCurrency returns the configured fallback currency.
func (s Settings) DefaultCurrency() core.Currency {
	return core.Currency{Code: s.Currency.Code, Symbol: s.Currency.Symbol}
}

// TaxRates returns the configured VAT and withholding rates.
func (s Settings) TaxRates() core.TaxRates {
	return core.TaxRates{VAT: s.Tax.VATRate, Withholding: s.Tax.WithholdingRate}
}

func (s Settings) Validate() error {
	if err := s.DefaultCurrency().Validate(); err != nil {
		return fmt.Errorf("settings currency: %w", err)
	}
	if err := s.TaxRates().Validate(); err != nil {
		return fmt.Errorf("settings tax: %w", err)
	}
	return nil
}

// SettingsStore guards a Settings value backed by a JSON file.
type SettingsStore struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// LoadSettings reads path, falling back to DefaultSettings when the file does
// not exist yet. Fields missing from the file keep their defaults.
func LoadSettings(path string) (*SettingsStore, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &SettingsStore{path: path, settings: s}, nil
}

// Get returns a copy of the current settings.
func (st *SettingsStore) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// Update applies fn to a copy of the settings, validates the result and
// persists it. The in-memory value only changes when the write succeeds.
func (st *SettingsStore) Update(fn func(*Settings)) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.settings
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := writeSettings(st.path, next); err != nil {
		return err
	}
	st.settings = next
	return nil
}

// RememberSelection stores the client and service used for the last invoice.
func (st *SettingsStore) RememberSelection(clientID, serviceID int64) error {
	return st.Update(func(s *Settings) {
		s.Preferences.LastClientID = clientID
		s.Preferences.LastServiceID = serviceID
	})
}

func writeSettings(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
