package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldReferer      = "referer"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldYear         = "year"
	FieldDocumentKind = "document_kind"
	FieldNumber       = "number"
	FieldClientID     = "client_id"
	FieldTotal        = "total"
	FieldCurrency     = "currency"
	FieldAttempt      = "attempt"
	FieldBatchID      = "batch_id"
	FieldImported     = "imported"
	FieldSkipped      = "skipped"
	FieldFailed       = "failed"
	FieldEventID      = "event_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentInvoice   = "invoice"
	ComponentEstimate  = "estimate"
	ComponentFinance   = "finance"
	ComponentImport    = "import"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTemplate  = "template"
)

const (
	OpIssue  = "issue"
	OpImport = "import"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDocument adds the fields of an issued invoice or estimate
func (f LogFields) WithDocument(kind, number string, clientID int64, total, currency string) LogFields {
	f[FieldDocumentKind] = kind
	f[FieldNumber] = number
	f[FieldClientID] = clientID
	f[FieldTotal] = total
	f[FieldCurrency] = currency
	return f
}

// WithImport adds statement import counters
func (f LogFields) WithImport(batchID string, imported, skipped, failed int) LogFields {
	f[FieldBatchID] = batchID
	f[FieldImported] = imported
	f[FieldSkipped] = skipped
	f[FieldFailed] = failed
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
