// Package worker consumes document and import events and keeps an audit
// trail of them in SQLite.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"facturas/internal/amqp"
	applog "facturas/internal/log"
	"facturas/internal/metrics"
	"facturas/internal/storage"
)

// AuditStore persists audit events idempotently.
type AuditStore interface {
	RecordAuditEvent(ctx context.Context, e storage.AuditEvent) (bool, error)
}

// AuditWorker records every consumed event once.
type AuditWorker struct {
	store AuditStore
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent stores e. Redelivered events whose id is already stored are
// acknowledged without a second row.
func (w *AuditWorker) HandleEvent(ctx context.Context, e *amqp.Event) error {
	slog.InfoContext(ctx, "Processing event",
		applog.FieldEventID, e.ID,
		"kind", e.Kind,
		"subject", e.Subject)

	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}

	added, err := w.store.RecordAuditEvent(ctx, storage.AuditEvent{
		EventID:    e.ID,
		Kind:       string(e.Kind),
		Subject:    e.Subject,
		Payload:    payload,
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("error").Inc()
		return fmt.Errorf("record event %s: %w", e.ID, err)
	}

	if !added {
		metrics.EventsConsumed.WithLabelValues("duplicate").Inc()
		slog.InfoContext(ctx, "Event already recorded", applog.FieldEventID, e.ID)
		return nil
	}
	metrics.EventsConsumed.WithLabelValues("recorded").Inc()
	return nil
}

// Run consumes events until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context, c *amqp.Client, prefetch int) error {
	slog.InfoContext(ctx, "Audit worker consuming", "prefetch", prefetch)
	return c.Consume(ctx, prefetch, w.HandleEvent)
}
