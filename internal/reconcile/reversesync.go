package reconcile

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/fingerprint"
	"github.com/alexanderramin/docket/internal/lifecycle"
)

// reverseSync mirrors a task added directly in the task manager onto the
// board, for projects mapped to a matter. Unmapped projects are personal and
// ignored.
func (r *reconciler) reverseSync(ctx context.Context, item *domain.ExternalTask) (*Outcome, error) {
	if item == nil || item.ID == "" || item.ProjectID == "" {
		return nil, fmt.Errorf("%w: task-added event needs task and project ids", ErrMalformedEvent)
	}
	out := &Outcome{Identity: item.ID, ExternalID: item.ID}
	fields := log.Fields{"external_id": item.ID, "project_id": item.ProjectID}

	mapping, err := r.mappings.MatterForProject(ctx, item.ProjectID)
	if err != nil {
		r.failed(ctx, fields, err, "project mapping lookup failed")
		out.Status, out.Reason = StatusSkipped, "mapping store unavailable"
		return out, nil
	}
	if mapping == nil {
		out.Status, out.Reason = StatusIgnored, "personal project"
		return out, nil
	}
	fields["matter_id"] = mapping.MatterID

	existing, err := r.board.FindByExternalID(ctx, item.ID)
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("board lookup failed, relying on content fingerprint")
	} else if existing != nil {
		out.Status, out.Reason = StatusDuplicate, "already tracked"
		out.PageID = existing.PageID
		return out, nil
	}

	title := domain.CoalesceStr(strings.TrimSpace(item.Title), untitledTask)
	dueStr := ""
	if item.Due != nil {
		dueStr = item.Due.UTC().Format(domain.DateLayout)
	}
	cfp := fingerprint.Content(title, dueStr, mapping.MatterID)
	out.Identity = cfp

	if r.gate.AlreadyRecorded(ctx, cfp, domain.EventTaskCreated) {
		out.Status = StatusDuplicate
		return out, nil
	}

	status, err := lifecycle.Transition("", domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	pageID, err := r.board.CreateTask(ctx, domain.Task{
		Title:              title,
		Status:             status,
		Priority:           domain.ParsePriority(string(item.Priority)),
		DueDate:            domain.ParseDate(dueStr),
		ContentFingerprint: cfp,
		MatterID:           mapping.MatterID,
		ExternalID:         item.ID,
		Source:             domain.SourceReverseSync,
		Rationale:          fmt.Sprintf("Added directly in task manager project %s.", domain.CoalesceStr(mapping.ProjectName, mapping.ProjectID)),
	})
	if err != nil || pageID == "" {
		r.failed(ctx, fields, err, "creating reverse-synced task failed")
		out.Status, out.Reason = StatusSkipped, "board unavailable"
		return out, nil
	}
	out.PageID = pageID

	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskCreated,
		Identity:  cfp,
		Actor:     domain.ActorReverseSync,
		TaskTitle: title,
		PageID:    pageID,
		Details:   map[string]any{"external_id": item.ID, "matter_id": mapping.MatterID},
	})
	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskReverseSynced,
		Identity:  item.ID,
		Actor:     domain.ActorReverseSync,
		TaskTitle: title,
		PageID:    pageID,
		Details:   map[string]any{"project_id": item.ProjectID},
	})

	out.Tasks = []CreatedTask{{Title: title, PageID: pageID, Status: status}}
	out.Status = StatusProcessed
	return out, nil
}
