package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/docket/internal/domain"
)

// ErrNotFound is wrapped by lookups that require a row.
var ErrNotFound = errors.New("not found")

// AuditLog is the append-only event log keyed by fingerprint or promotion key.
type AuditLog interface {
	Append(ctx context.Context, ev domain.AuditEvent) error
	Exists(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error)
	ListByIdentity(ctx context.Context, identity string) ([]domain.AuditEvent, error)
}

// ReceiptStore records processed emails. SaveReceipt is idempotent on
// fingerprint.
type ReceiptStore interface {
	SaveReceipt(ctx context.Context, r domain.EmailReceipt) error
}

// MappingStore holds the one-to-one matter to project mapping. SaveMapping
// returns the stored winner when either side is already mapped.
type MappingStore interface {
	ProjectForMatter(ctx context.Context, matterID string) (*domain.ProjectMapping, error)
	MatterForProject(ctx context.Context, projectID string) (*domain.ProjectMapping, error)
	SaveMapping(ctx context.Context, m domain.ProjectMapping) (*domain.ProjectMapping, error)
}

// Store is the full persistence surface the reconciler needs.
type Store interface {
	AuditLog
	ReceiptStore
	MappingStore
}
