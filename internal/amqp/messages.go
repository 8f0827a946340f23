package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names what happened; it doubles as the AMQP message type.
type EventKind string

const (
	EventInvoiceIssued         EventKind = "invoice.issued"
	EventInvoiceDeleted        EventKind = "invoice.deleted"
	EventEstimateIssued        EventKind = "estimate.issued"
	EventEstimateStatusChanged EventKind = "estimate.status_changed"
	EventImportFinished        EventKind = "import.finished"
)

// Event is the envelope published for every business event. Subject is the
// document number or import batch id the event is about.
type Event struct {
	ID         string          `json:"id"`
	Kind       EventKind       `json:"kind"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// DocumentPayload describes an issued or deleted invoice or estimate.
type DocumentPayload struct {
	Number     string `json:"number"`
	ClientID   int64  `json:"client_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Total      string `json:"total,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Status     string `json:"status,omitempty"`
}

// ImportPayload summarizes a finished statement import.
type ImportPayload struct {
	BatchID  string `json:"batch_id"`
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

var ErrInvalidEvent = errors.New("invalid event")

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(kind EventKind, subject string, payload any) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		raw = b
	}
	return &Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and checks the envelope fields.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidEvent, e.ID)
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidEvent)
	}
	if e.OccurredAt.IsZero() {
		return nil, fmt.Errorf("%w: missing occurred_at", ErrInvalidEvent)
	}
	return &e, nil
}
