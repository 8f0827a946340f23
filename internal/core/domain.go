package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EstimateDraft    EstimateStatus = "Draft"
	EstimateSent     EstimateStatus = "Sent"
	EstimateAccepted EstimateStatus = "Accepted"
	EstimateRejected EstimateStatus = "Rejected"
	EstimateExpired  EstimateStatus = "Expired"
)

// DateLayout is the storage and form layout for every date field.
const DateLayout = "2006-01-02"

type (
	EstimateStatus string

	Date struct {
		time.Time
	}

	Client struct {
		ID       int64
		Name     string
		TaxID    string
		Address  string
		Country  string
		Email    string
		Currency Currency
	}

	Service struct {
		ID          int64
		Description string
		UnitPrice   decimal.Decimal
		UnitType    string // "hora", "mes", ...
	}

	Invoice struct {
		ID               int64
		Number           string
		ClientID         int64
		ServiceID        int64
		Quantity         int64
		Date             Date
		ApplyVAT         bool
		ApplyWithholding bool
		Totals           Totals
		Currency         Currency

		// Denormalized for listings
		ClientName         string
		ServiceDescription string
	}

	Estimate struct {
		ID              int64
		Number          string
		ClientID        int64
		ServiceID       int64
		Quantity        int64
		IssueDate       Date
		ValidUntil      Date
		WithholdingRate decimal.Decimal
		Totals          Totals
		Currency        Currency
		Status          EstimateStatus
		Notes           string
		Terms           string

		ClientName         string
		ServiceDescription string
	}

	Expense struct {
		ID            int64
		CategoryID    int64
		Description   string
		Amount        decimal.Decimal
		Date          Date
		PaymentMethod string
		Notes         string
		TaxDeductible bool

		CategoryName string
	}

	Income struct {
		ID          int64
		SourceID    int64
		Description string
		Amount      decimal.Decimal
		Date        Date
		Notes       string

		SourceName string
	}

	// Category is a row of expense_categories or income_sources.
	Category struct {
		ID   int64
		Name string
	}

	// StatementRow is one already-decoded bank statement line. A negative
	// amount is an expense, a positive one an income.
	StatementRow struct {
		Line        int
		Date        string
		Description string
		Amount      decimal.Decimal
	}
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrReferentialConflict = errors.New("referenced by existing invoices")
	ErrComputation         = errors.New("computation error")
)

// InvalidInput wraps ErrInvalidInput with a field-level message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, InvalidInput("date %q", s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" when zero.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return InvalidInput("date cannot be zero")
	}
	return nil
}

func (s EstimateStatus) Valid() bool {
	switch s {
	case EstimateDraft, EstimateSent, EstimateAccepted, EstimateRejected, EstimateExpired:
		return true
	}
	return false
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return InvalidInput("client name is required")
	}
	if strings.TrimSpace(c.TaxID) == "" {
		return InvalidInput("client tax id is required")
	}
	if c.Currency.Code != "" || c.Currency.Symbol != "" {
		if err := c.Currency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Service) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return InvalidInput("service description is required")
	}
	if s.UnitPrice.IsNegative() {
		return InvalidInput("unit price cannot be negative")
	}
	if strings.TrimSpace(s.UnitType) == "" {
		return InvalidInput("unit type is required")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return InvalidInput("empty description")
	}
	if !e.Amount.IsPositive() {
		return InvalidInput("amount must be positive")
	}
	if e.CategoryID <= 0 {
		return InvalidInput("category is required")
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(i.Description)) == 0 {
		return InvalidInput("empty description")
	}
	if !i.Amount.IsPositive() {
		return InvalidInput("amount must be positive")
	}
	if i.SourceID <= 0 {
		return InvalidInput("source is required")
	}
	return nil
}
