// Package gate decides whether a side effect identified by (identity, event
// type) has already happened, using the audit log as the source of truth.
//
// The gate fails open: when the audit log cannot be queried it reports "not
// recorded" so the caller proceeds.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/fingerprint"
)

// AuditLog is the subset of the audit store the gate needs.
type AuditLog interface {
	Exists(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error)
	Append(ctx context.Context, ev domain.AuditEvent) error
}

// Cache is an optional fast path in front of the audit log. A hit is trusted;
// a miss or error falls through to the audit log.
type Cache interface {
	Seen(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error)
	Mark(ctx context.Context, identity string, eventType domain.AuditEventType) error
}

// Gate is the idempotency check applied before every side effect.
type Gate struct {
	audit  AuditLog
	cache  Cache
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithCache puts c in front of the audit log.
func WithCache(c Cache) Option {
	return func(g *Gate) { g.cache = c }
}

// WithClock overrides the timestamp source for recorded events.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New builds a Gate over the given audit log.
func New(audit AuditLog, logger *log.Logger, opts ...Option) *Gate {
	g := &Gate{audit: audit, logger: logger, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AlreadyRecorded reports whether an event of eventType carrying identity
// exists. Query failures are logged and reported as false.
func (g *Gate) AlreadyRecorded(ctx context.Context, identity string, eventType domain.AuditEventType) bool {
	fields := log.Fields{"identity": fingerprint.Short(identity), "event_type": eventType}

	if g.cache != nil {
		seen, err := g.cache.Seen(ctx, identity, eventType)
		if err != nil {
			g.logger.WithFields(fields).WithError(err).Debug("gate cache lookup failed")
		} else if seen {
			return true
		}
	}

	found, err := g.audit.Exists(ctx, identity, eventType)
	if err != nil {
		g.logger.WithFields(fields).WithError(err).Warn("audit lookup failed, proceeding (fail-open)")
		return false
	}
	if found && g.cache != nil {
		g.mark(ctx, identity, eventType)
	}
	return found
}

// Record appends ev to the audit log, closing the loop for future replays.
// A missing ID or timestamp is filled in.
func (g *Gate) Record(ctx context.Context, ev domain.AuditEvent) error {
	if ev.Identity == "" {
		return fmt.Errorf("record %s: empty identity", ev.Type)
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = g.now().UTC()
	}
	if err := g.audit.Append(ctx, ev); err != nil {
		return fmt.Errorf("record %s: %w", ev.Type, err)
	}
	if g.cache != nil {
		g.mark(ctx, ev.Identity, ev.Type)
	}
	return nil
}

func (g *Gate) mark(ctx context.Context, identity string, eventType domain.AuditEventType) {
	if err := g.cache.Mark(ctx, identity, eventType); err != nil {
		g.logger.WithFields(log.Fields{
			"identity":   fingerprint.Short(identity),
			"event_type": eventType,
		}).WithError(err).Debug("gate cache mark failed")
	}
}
