// Package services orchestrates the record-keeping use cases on top of the
// SQLite store, the user settings file and the event publisher.
package services

import (
	"context"
	"log/slog"

	"facturas/internal/amqp"
	"facturas/internal/config"
	applog "facturas/internal/log"
)

// SettingsStore exposes the persisted user settings.
type SettingsStore interface {
	Get() config.Settings
	RememberSelection(clientID, serviceID int64) error
}

// Invalidator drops derived data after a write; the stats cache implements it.
type Invalidator interface {
	Invalidate()
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate() {}

func orNopInvalidator(inv Invalidator) Invalidator {
	if inv == nil {
		return nopInvalidator{}
	}
	return inv
}

func orNopPublisher(p amqp.Publisher) amqp.Publisher {
	if p == nil {
		return amqp.NopPublisher{}
	}
	return p
}

// publish sends an event without failing the caller: the record is already
// committed when events go out.
func publish(ctx context.Context, p amqp.Publisher, kind amqp.EventKind, subject string, payload any) {
	e, err := amqp.NewEvent(kind, subject, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build event", "kind", kind, "subject", subject, "error", err)
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to publish event",
			"kind", kind,
			"subject", subject,
			"event_id", e.ID,
			"error", err)
	}
}

func componentLogger(component string) *applog.StructuredLogger {
	return applog.NewStructuredLogger(applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: component,
	}))
}
