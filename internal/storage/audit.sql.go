package storage

import (
	"context"
)

const insertAuditEvent = `
INSERT INTO audit_events (event_id, kind, subject, payload, occurred_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (event_id) DO NOTHING
`

type InsertAuditEventParams struct {
	EventID    string
	Kind       string
	Subject    string
	Payload    string
	OccurredAt string
}

// InsertAuditEvent is idempotent on EventID and reports whether a row was added.
func (q *Queries) InsertAuditEvent(ctx context.Context, arg InsertAuditEventParams) (bool, error) {
	result, err := q.db.ExecContext(ctx, insertAuditEvent, arg.EventID, arg.Kind, arg.Subject, arg.Payload, arg.OccurredAt)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

const listAuditEvents = `
SELECT id, event_id, kind, subject, payload, occurred_at
FROM audit_events
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListAuditEvents(ctx context.Context, limit int64) ([]AuditEvent, error) {
	rows, err := q.db.QueryContext(ctx, listAuditEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditEvent
	for rows.Next() {
		var i AuditEvent
		if err := rows.Scan(&i.ID, &i.EventID, &i.Kind, &i.Subject, &i.Payload, &i.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
