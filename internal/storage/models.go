package storage

type Client struct {
	ID             int64
	Name           string
	TaxID          string
	Address        string
	Country        string
	Email          string
	CurrencyCode   string
	CurrencySymbol string
}

type Service struct {
	ID             int64
	Description    string
	UnitPriceCents int64
	UnitType       string
}

type Invoice struct {
	ID               int64
	Number           string
	ClientID         int64
	ServiceID        int64
	Quantity         int64
	Date             string
	ApplyVat         bool
	ApplyWithholding bool
	SubtotalCents    int64
	VatCents         int64
	WithholdingCents int64
	TotalCents       int64
	CurrencyCode     string
	CurrencySymbol   string
}

// InvoiceRow is an invoice joined with its client and service.
type InvoiceRow struct {
	Invoice
	ClientName         string
	ServiceDescription string
}

type Estimate struct {
	ID               int64
	Number           string
	ClientID         int64
	ServiceID        int64
	Quantity         int64
	IssueDate        string
	ValidUntil       string
	WithholdingRate  string
	SubtotalCents    int64
	VatCents         int64
	WithholdingCents int64
	TotalCents       int64
	CurrencyCode     string
	CurrencySymbol   string
	Status           string
	Notes            string
	Terms            string
}

type EstimateRow struct {
	Estimate
	ClientName         string
	ServiceDescription string
}

type Expense struct {
	ID            int64
	CategoryID    int64
	Description   string
	AmountCents   int64
	Date          string
	PaymentMethod string
	Notes         string
	TaxDeductible bool
	CategoryName  string
}

type Income struct {
	ID          int64
	SourceID    int64
	Description string
	AmountCents int64
	Date        string
	Notes       string
	SourceName  string
}

type Category struct {
	ID   int64
	Name string
}

type AuditEvent struct {
	ID         int64
	EventID    string
	Kind       string
	Subject    string
	Payload    string
	OccurredAt string
}
