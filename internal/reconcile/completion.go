package reconcile

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/lifecycle"
)

// complete marks the Task Record behind externalID Completed. An unknown id
// is logged as an orphan and touches no record.
func (r *reconciler) complete(ctx context.Context, externalID, projectID string) (*Outcome, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: completion without external task id", ErrMalformedEvent)
	}
	out := &Outcome{Identity: externalID, ExternalID: externalID}
	fields := log.Fields{"external_id": externalID}

	task, err := r.board.FindByExternalID(ctx, externalID)
	if err != nil {
		r.failed(ctx, fields, err, "looking up completed task failed")
		out.Status, out.Reason = StatusSkipped, "board unavailable"
		return out, nil
	}

	if task == nil {
		if r.gate.AlreadyRecorded(ctx, externalID, domain.EventCompletionOrphaned) {
			out.Status = StatusDuplicate
			return out, nil
		}
		orphan, err := lifecycle.Transition("", domain.StatusCompletedOrphan)
		if err != nil {
			return nil, err
		}
		r.record(ctx, domain.AuditEvent{
			Type:     domain.EventCompletionOrphaned,
			Identity: externalID,
			Actor:    domain.ActorCompletion,
			Details: map[string]any{
				"project_id": projectID,
				"status":     string(orphan),
			},
		})
		out.Status = StatusOrphan
		return out, nil
	}

	out.PageID = task.PageID
	fields["page_id"] = task.PageID
	if lifecycle.IsTerminal(task.Status) || r.gate.AlreadyRecorded(ctx, externalID, domain.EventTaskCompleted) {
		out.Status = StatusDuplicate
		return out, nil
	}

	next, err := lifecycle.Transition(task.Status, domain.StatusCompleted)
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("completion for task that was never approved")
		out.Status, out.Reason = StatusIgnored, err.Error()
		return out, nil
	}
	if err := r.board.UpdateTask(ctx, task.PageID, domain.TaskPatch{Status: &next}); err != nil {
		r.failed(ctx, fields, err, "marking task completed failed")
		out.Status, out.Reason = StatusSkipped, "board unavailable"
		return out, nil
	}

	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskCompleted,
		Identity:  externalID,
		Actor:     domain.ActorCompletion,
		TaskTitle: task.Title,
		PageID:    task.PageID,
		Details:   map[string]any{"previous_status": string(task.Status)},
	})
	r.note(ctx, task.MatterID, "Task completed: "+task.Title)
	out.Status = StatusCompleted
	return out, nil
}
