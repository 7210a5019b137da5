package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/docket/internal/domain"
)

// EventOption customizes an audit event fixture.
type EventOption func(*domain.AuditEvent)

func WithActor(actor string) EventOption {
	return func(e *domain.AuditEvent) {
		e.Actor = actor
	}
}

func WithCreatedAt(t time.Time) EventOption {
	return func(e *domain.AuditEvent) {
		e.CreatedAt = t
	}
}

func WithDetails(details map[string]any) EventOption {
	return func(e *domain.AuditEvent) {
		e.Details = details
	}
}

// NewTestAuditEvent builds an event with a fresh ID recorded now.
func NewTestAuditEvent(identity string, eventType domain.AuditEventType, opts ...EventOption) domain.AuditEvent {
	e := domain.AuditEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Identity:  identity,
		Actor:     domain.ActorIntake,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewTestReceipt builds a receipt for fingerprint from a fixed sender.
func NewTestReceipt(fingerprint string) domain.EmailReceipt {
	return domain.EmailReceipt{
		Fingerprint:       fingerprint,
		Sender:            "clerk@court.example",
		ReceivedAt:        "2025-12-01T10:00:00Z",
		NormalizedSubject: "notice of motion",
		MessageID:         "msg-" + fingerprint,
		CreatedAt:         time.Now().UTC(),
	}
}

// NewTestMapping builds a mapping named after its matter.
func NewTestMapping(matterID, projectID string) domain.ProjectMapping {
	return domain.ProjectMapping{
		MatterID:    matterID,
		ProjectID:   projectID,
		ProjectName: "Matter " + matterID,
		CreatedAt:   time.Now().UTC(),
	}
}
