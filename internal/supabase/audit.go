package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
)

// auditRow is a task_events row. The identity column is named fingerprint
// for compatibility with rows written before promotion keys existed.
type auditRow struct {
	ID           string         `json:"id"`
	Identity     string         `json:"fingerprint"`
	EventType    string         `json:"event_type"`
	Actor        string         `json:"actor"`
	TaskTitle    string         `json:"task_title,omitempty"`
	NotionPageID string         `json:"notion_page_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// Append inserts an audit event.
func (c *Client) Append(ctx context.Context, ev domain.AuditEvent) error {
	row := auditRow{
		ID:           ev.ID,
		Identity:     ev.Identity,
		EventType:    string(ev.Type),
		Actor:        ev.Actor,
		TaskTitle:    ev.TaskTitle,
		NotionPageID: ev.PageID,
		Details:      ev.Details,
		CreatedAt:    ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := c.request(ctx, http.MethodPost, tableAuditEvents, nil, "return=minimal", row, nil); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Exists reports whether an event of eventType with identity exists.
func (c *Client) Exists(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("fingerprint", eq(identity))
	q.Set("event_type", eq(string(eventType)))
	q.Set("limit", "1")

	var rows []struct {
		ID string `json:"id"`
	}
	if err := c.request(ctx, http.MethodGet, tableAuditEvents, q, "", nil, &rows); err != nil {
		return false, fmt.Errorf("query audit events: %w", err)
	}
	return len(rows) > 0, nil
}

// ListByIdentity returns every event for identity, oldest first.
func (c *Client) ListByIdentity(ctx context.Context, identity string) ([]domain.AuditEvent, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("fingerprint", eq(identity))
	q.Set("order", "created_at.asc")

	var rows []auditRow
	if err := c.request(ctx, http.MethodGet, tableAuditEvents, q, "", nil, &rows); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	out := make([]domain.AuditEvent, 0, len(rows))
	for _, r := range rows {
		created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			c.logger.WithFields(log.Fields{
				"event_id":   r.ID,
				"created_at": r.CreatedAt,
			}).WithError(err).Warn("audit event has unparseable created_at, listing without timestamp")
		}
		out = append(out, domain.AuditEvent{
			ID:        r.ID,
			Type:      domain.AuditEventType(r.EventType),
			Identity:  r.Identity,
			Actor:     r.Actor,
			TaskTitle: r.TaskTitle,
			PageID:    r.NotionPageID,
			Details:   r.Details,
			CreatedAt: created,
		})
	}
	return out, nil
}
