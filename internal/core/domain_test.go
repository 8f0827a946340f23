package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-07-15" {
		t.Fatalf("round trip: got %s", d.String())
	}
	if _, err := ParseDate("15/07/2024"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      decimal.NewFromInt(1),
		CategoryID:  1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Description: "a", Amount: decimal.NewFromInt(1), CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Description: " ", Amount: decimal.NewFromInt(1), CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.Zero, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(-5), CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), CategoryID: 0},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{Date: NewDate(2025, 3, 2), Description: "Factura", Amount: decimal.NewFromInt(10), SourceID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.SourceID = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestClientAndServiceValidate(t *testing.T) {
	c := Client{Name: "Empresa Ejemplo S.L.", TaxID: "B12345678", Currency: Currency{Code: "USD", Symbol: "€"}}
	if err := c.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected inconsistent currency pair to fail, got %v", err)
	}
	c.Currency = Currency{Code: "USD", Symbol: "$"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	s := Service{Description: "Consultoría técnica", UnitPrice: decimal.NewFromInt(-1), UnitType: "hora"}
	if err := s.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected negative price to fail, got %v", err)
	}
	s.UnitPrice = decimal.Zero
	if err := s.Validate(); err != nil {
		t.Fatalf("zero price is allowed, got %v", err)
	}
}

func TestEstimateStatusValid(t *testing.T) {
	for _, s := range []EstimateStatus{EstimateDraft, EstimateSent, EstimateAccepted, EstimateRejected, EstimateExpired} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if EstimateStatus("Paid").Valid() {
		t.Fatalf("Paid is not an estimate status")
	}
}
