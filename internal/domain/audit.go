package domain

import "time"

// AuditEvent is an append-only log entry. Identity is the fingerprint or
// promotion key the event was recorded under.
type AuditEvent struct {
	ID        string
	Type      AuditEventType
	Identity  string
	Actor     string
	TaskTitle string
	PageID    string
	Details   map[string]any
	CreatedAt time.Time
}

// Actors recorded on audit events.
const (
	ActorIntake         = "intake"
	ActorPromotion      = "promotion"
	ActorCompletion     = "completion"
	ActorReverseSync    = "reverse_sync"
	ActorMatterResolver = "matter_resolver"
)
