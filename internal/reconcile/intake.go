package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/fingerprint"
	"github.com/alexanderramin/docket/internal/lifecycle"
	"github.com/alexanderramin/docket/internal/matter"
)

const (
	untitledTask = "Untitled Task"
	maxRationale = 2000
	timeLayout   = time.RFC3339
)

// intake handles a new email. The email_received event is recorded last and
// only when every candidate reached the board, so a partial run is retried
// on redelivery while the content fingerprint gate suppresses the tasks
// that did get created.
func (r *reconciler) intake(ctx context.Context, email *domain.InboundEmail) (*Outcome, error) {
	if email == nil {
		return nil, fmt.Errorf("%w: email event without a message", ErrMalformedEvent)
	}

	now := r.now()
	receivedAt, parsed := fingerprint.ParseReceivedAt(email.ReceivedAt, now)
	mfp := fingerprint.Message(email.MessageID, email.OriginalSender, receivedAt)
	fields := log.Fields{"fingerprint": fingerprint.Short(mfp), "sender": email.OriginalSender}
	if !parsed {
		r.logger.WithFields(fields).WithField("received_at", email.ReceivedAt).
			Warn("unparseable received time, fingerprinting with current time")
	}
	if email.MessageID == "" && email.OriginalSender == "" {
		r.logger.WithFields(fields).Warn("email has neither message id nor sender, fingerprinting on received time alone")
	}

	out := &Outcome{Identity: mfp, HasAttachment: email.HasAttachments()}
	if r.gate.AlreadyRecorded(ctx, mfp, domain.EventEmailReceived) {
		out.Status = StatusDuplicate
		return out, nil
	}

	subject := fingerprint.NormalizeSubject(email.Subject)
	if err := r.receipts.SaveReceipt(ctx, domain.EmailReceipt{
		Fingerprint:       mfp,
		Sender:            email.OriginalSender,
		ReceivedAt:        receivedAt.UTC().Format(timeLayout),
		NormalizedSubject: subject,
		MessageID:         email.MessageID,
		Headers:           email.Headers,
		CreatedAt:         now.UTC(),
	}); err != nil {
		r.failed(ctx, fields, err, "saving email receipt failed")
	}

	extraction := r.extractor.Extract(ctx, email)
	if extraction.Failed {
		r.record(ctx, domain.AuditEvent{
			Type:     domain.EventExtractionFailed,
			Identity: mfp,
			Actor:    domain.ActorIntake,
			Details:  map[string]any{"reason": extraction.FailureReason},
		})
	}

	res := r.resolver.Resolve(ctx, extraction.IndexNumber.Or(""), extraction.Caption.Or(""))
	if res.CreatedStub {
		r.recordStub(ctx, res, mfp)
	}

	complete := true
	for i, c := range extraction.Candidates() {
		created, ok := r.createFromCandidate(ctx, email, extraction, c, mfp, res.MatterID())
		if !ok {
			complete = false
			continue
		}
		if created != nil {
			created.Calendar = i >= len(extraction.Tasks)
			out.Tasks = append(out.Tasks, *created)
		}
	}

	if !complete {
		r.logger.WithFields(fields).Warn("some tasks were not created, leaving email unrecorded for redelivery")
	} else {
		r.record(ctx, domain.AuditEvent{
			Type:     domain.EventEmailReceived,
			Identity: mfp,
			Actor:    domain.ActorIntake,
			Details: map[string]any{
				"sender":        email.OriginalSender,
				"subject":       subject,
				"message_id":    email.MessageID,
				"tasks_created": len(out.Tasks),
			},
		})
	}
	out.Status = StatusProcessed
	return out, nil
}

// createFromCandidate creates one Task Record. It returns (nil, true) when
// the content fingerprint was already recorded and (nil, false) when the
// board write failed.
func (r *reconciler) createFromCandidate(
	ctx context.Context,
	email *domain.InboundEmail,
	ex *domain.Extraction,
	c domain.TaskCandidate,
	mfp, matterID string,
) (*CreatedTask, bool) {
	title := domain.CoalesceStr(strings.TrimSpace(c.Title.Or("")), untitledTask)
	due := domain.ParseDate(c.DueDate.Or(""))
	dueStr := ""
	if due != nil {
		dueStr = due.Format(domain.DateLayout)
	}
	cfp := fingerprint.Content(title, dueStr, matterID)
	fields := log.Fields{"fingerprint": fingerprint.Short(mfp), "content_fingerprint": fingerprint.Short(cfp), "title": title}

	if r.gate.AlreadyRecorded(ctx, cfp, domain.EventTaskCreated) {
		r.logger.WithFields(fields).Info("task already on the board, skipping")
		return nil, true
	}

	decision := lifecycle.DeriveStatus(lifecycle.StatusInputs{
		Confidence:           c.Title.Confidence,
		DueDate:              due,
		HasMatter:            matterID != "",
		HasAttachments:       email.HasAttachments(),
		AttachmentsProcessed: ex.AttachmentsProcessed,
	}, r.now())

	task := domain.Task{
		Title:              title,
		Status:             decision.Status,
		Priority:           domain.ParsePriority(c.Priority.Or("")),
		DueDate:            due,
		RelativeDeadline:   c.RelativeDeadline.Or(""),
		MessageFingerprint: mfp,
		ContentFingerprint: cfp,
		MatterID:           matterID,
		Source:             domain.SourceAIExtraction,
		Rationale:          rationale(c.Rationale, decision.Reason, email),
		Subtasks:           c.Subtasks,
		SourceEmailURL:     r.sourceURL(email.MessageID),
		OriginalSender:     email.OriginalSender,
		Model:              ex.Model,
	}
	if c.ApplicableRule != nil {
		task.ApplicableRule = *c.ApplicableRule
	}

	pageID, err := r.board.CreateTask(ctx, task)
	if err != nil || pageID == "" {
		r.failed(ctx, fields, err, "creating board task failed")
		return nil, false
	}

	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskCreated,
		Identity:  cfp,
		Actor:     domain.ActorIntake,
		TaskTitle: title,
		PageID:    pageID,
		Details:   map[string]any{"message_fingerprint": mfp, "matter_id": matterID},
	})
	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskProposed,
		Identity:  mfp,
		Actor:     domain.ActorIntake,
		TaskTitle: title,
		PageID:    pageID,
		Details: map[string]any{
			"status":              string(decision.Status),
			"review_reason":       string(decision.Reason),
			"content_fingerprint": cfp,
		},
	})
	return &CreatedTask{Title: title, PageID: pageID, Status: decision.Status}, true
}

func (r *reconciler) recordStub(ctx context.Context, res matter.Resolution, mfp string) {
	r.record(ctx, domain.AuditEvent{
		Type:     domain.EventMatterStubCreated,
		Identity: res.MatterID(),
		Actor:    domain.ActorMatterResolver,
		Details: map[string]any{
			"case_name":           res.Matter.CaseName,
			"index_number":        res.Matter.IndexNumber,
			"message_fingerprint": mfp,
		},
	})
}

// rationale joins the model's rationale with the review reason and, when
// the email carried attachments, a warning naming them.
func rationale(base string, reason lifecycle.ReviewReason, email *domain.InboundEmail) string {
	parts := []string{strings.TrimSpace(base)}
	if msg := reason.Message(); msg != "" {
		parts = append(parts, "Review: "+msg)
	}
	if email.HasAttachments() {
		parts = append(parts, fmt.Sprintf("EMAIL HAS ATTACHMENTS: %s. Review source email.",
			strings.Join(email.AttachmentNames(), ", ")))
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return domain.Truncate(strings.Join(nonEmpty, "\n\n"), maxRationale)
}
