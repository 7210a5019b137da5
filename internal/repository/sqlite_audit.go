package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/docket/internal/domain"
)

func (s *SQLiteStore) Append(ctx context.Context, ev domain.AuditEvent) error {
	details, err := encodeJSON(ev.Details)
	if err != nil {
		return fmt.Errorf("encoding audit details: %w", err)
	}
	query := `INSERT INTO audit_events (id, identity, event_type, actor, task_title, page_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		ev.ID,
		ev.Identity,
		string(ev.Type),
		ev.Actor,
		ev.TaskTitle,
		ev.PageID,
		details,
		formatTime(ev.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM audit_events WHERE identity = ? AND event_type = ?)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, identity, string(eventType)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking audit event: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStore) ListByIdentity(ctx context.Context, identity string) ([]domain.AuditEvent, error) {
	query := `SELECT id, identity, event_type, actor, task_title, page_id, details, created_at
		FROM audit_events WHERE identity = ? ORDER BY created_at, rowid`
	rows, err := s.db.QueryContext(ctx, query, identity)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		var eventType, details, createdAt string
		if err := rows.Scan(&ev.ID, &ev.Identity, &eventType, &ev.Actor, &ev.TaskTitle, &ev.PageID, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		ev.Type = domain.AuditEventType(eventType)
		ev.CreatedAt = parseTime(createdAt)
		if ev.Details, err = decodeJSON[map[string]any](details); err != nil {
			return nil, fmt.Errorf("decoding audit details for %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
