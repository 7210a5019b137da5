// Package reconcile sequences fingerprinting, the idempotency gate, matter
// resolution and the task lifecycle for each inbound event, and decides which
// external writes to make.
//
// External failures never surface as errors. A failed step is logged, its
// side effect is skipped and the event either completes with fewer effects
// or reports StatusSkipped without recording, so a redelivery retries it.
package reconcile

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/fingerprint"
	"github.com/alexanderramin/docket/internal/gate"
	"github.com/alexanderramin/docket/internal/matter"
	"github.com/alexanderramin/docket/internal/repository"
)

const tracerName = "docket/reconcile"

// Reconciler applies one event to the board, the task manager and the
// audit log. It is safe to replay any event.
type Reconciler interface {
	Reconcile(ctx context.Context, ev Event) (*Outcome, error)
}

// Deps are the collaborators a Reconciler drives.
type Deps struct {
	Board     Board
	Tasks     TaskManager
	Directory Directory
	Extractor Extractor
	Receipts  repository.ReceiptStore
	Mappings  repository.MappingStore
}

type reconciler struct {
	board     Board
	tasks     TaskManager
	directory Directory
	extractor Extractor
	receipts  repository.ReceiptStore
	mappings  repository.MappingStore
	gate      *gate.Gate
	resolver  *matter.Resolver
	logger    *log.Logger
	tracer    trace.Tracer
	now       func() time.Time
	sourceURL func(messageID string) string

	matterNotes bool
}

// Option configures a Reconciler.
type Option func(*reconciler)

// WithClock overrides the time source used for status derivation.
func WithClock(now func() time.Time) Option {
	return func(r *reconciler) { r.now = now }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *reconciler) { r.tracer = t }
}

// WithSourceURL sets how a message id becomes the source email link stored
// on the task.
func WithSourceURL(f func(messageID string) string) Option {
	return func(r *reconciler) { r.sourceURL = f }
}

// WithMatterNotes appends an activity note to the matter on promotion and
// completion.
func WithMatterNotes(enabled bool) Option {
	return func(r *reconciler) { r.matterNotes = enabled }
}

// NewReconciler wires a Reconciler. g must be backed by the same audit log
// the stores write to.
func NewReconciler(deps Deps, g *gate.Gate, logger *log.Logger, opts ...Option) Reconciler {
	r := &reconciler{
		board:     deps.Board,
		tasks:     deps.Tasks,
		directory: deps.Directory,
		extractor: deps.Extractor,
		receipts:  deps.Receipts,
		mappings:  deps.Mappings,
		gate:      g,
		resolver:  matter.NewResolver(deps.Directory, logger),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		sourceURL: func(string) string { return "" },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *reconciler) Reconcile(ctx context.Context, ev Event) (*Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "reconcile."+string(ev.Kind),
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	var (
		out *Outcome
		err error
	)
	switch ev.Kind {
	case KindEmail:
		out, err = r.intake(ctx, ev.Email)
	case KindApproval:
		out, err = r.promote(ctx, ev.PageID)
	case KindCompletion:
		out, err = r.complete(ctx, ev.ExternalID, ev.ProjectID)
	case KindTaskAdded:
		out, err = r.reverseSync(ctx, ev.Item)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, ev.Kind)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out.Kind = ev.Kind
	span.SetAttributes(
		attribute.String("docket.identity", out.Identity),
		attribute.String("docket.outcome", string(out.Status)),
	)
	r.logger.WithFields(log.Fields{
		"kind":     ev.Kind,
		"identity": fingerprint.Short(out.Identity),
		"outcome":  out.Status,
		"reason":   out.Reason,
	}).Info("reconciled event")
	return out, nil
}

// record appends an audit event. A failed append is logged: the side effect
// already happened and the gate fails open on the next replay.
func (r *reconciler) record(ctx context.Context, ev domain.AuditEvent) bool {
	if err := r.gate.Record(ctx, ev); err != nil {
		r.logger.WithFields(log.Fields{
			"identity":   fingerprint.Short(ev.Identity),
			"event_type": ev.Type,
		}).WithError(err).Error("audit append failed")
		trace.SpanFromContext(ctx).RecordError(err)
		return false
	}
	return true
}

// failed logs a collaborator error against the current span.
func (r *reconciler) failed(ctx context.Context, fields log.Fields, err error, msg string) {
	r.logger.WithFields(fields).WithError(err).Error(msg)
	trace.SpanFromContext(ctx).RecordError(err)
}

// note appends a matter activity note when enabled. Failures are logged.
func (r *reconciler) note(ctx context.Context, matterID, text string) {
	if !r.matterNotes || matterID == "" {
		return
	}
	if err := r.directory.AddNote(ctx, matterID, text); err != nil {
		r.logger.WithField("matter_id", matterID).WithError(err).Warn("matter note failed")
	}
}

func ptr[T any](v T) *T {
	return &v
}
