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

// promote pushes an approved Task Record into the task manager, gated on
// the promotion key.
func (r *reconciler) promote(ctx context.Context, pageID string) (*Outcome, error) {
	if pageID == "" {
		return nil, fmt.Errorf("%w: approval without page id", ErrMalformedEvent)
	}
	out := &Outcome{Identity: pageID, PageID: pageID}
	fields := log.Fields{"page_id": pageID}

	task, err := r.board.GetTask(ctx, pageID)
	if err != nil {
		r.failed(ctx, fields, err, "loading task for promotion failed")
		out.Status, out.Reason = StatusSkipped, "board unavailable"
		return out, nil
	}
	if task == nil {
		out.Status, out.Reason = StatusIgnored, "task not found"
		return out, nil
	}
	if !lifecycle.Promotable(task.Status) {
		out.Status, out.Reason = StatusIgnored, fmt.Sprintf("status is %s", task.Status)
		return out, nil
	}
	if task.IsPromoted() {
		out.Status, out.Reason = StatusDuplicate, "already promoted"
		out.ExternalID = task.ExternalID
		return out, nil
	}

	projectID := r.projectFor(ctx, task.MatterID)
	key := fingerprint.Promotion(pageID, task.Title, task.DueDateString(), projectID)
	out.Identity = key
	fields["promotion_key"] = fingerprint.Short(key)

	if r.gate.AlreadyRecorded(ctx, key, domain.EventTaskPromoted) {
		out.Status = StatusDuplicate
		return out, nil
	}

	externalID, err := r.tasks.CreateTask(ctx, domain.ExternalTask{
		ProjectID: projectID,
		Title:     task.Title,
		Notes:     externalNotes(task),
		Priority:  task.Priority,
		Due:       task.DueDate,
	})
	if err != nil || externalID == "" {
		r.failed(ctx, fields, err, "creating external task failed")
		out.Status, out.Reason = StatusSkipped, "task manager unavailable"
		return out, nil
	}
	out.ExternalID = externalID
	fields["external_id"] = externalID

	subtasks := r.createSubtasks(ctx, task, projectID, externalID)

	next, err := lifecycle.Transition(task.Status, domain.StatusPromoted)
	if err != nil {
		return nil, fmt.Errorf("promoting %s: %w", pageID, err)
	}
	if err := r.board.UpdateTask(ctx, pageID, domain.TaskPatch{Status: &next, ExternalID: ptr(externalID)}); err != nil {
		r.failed(ctx, fields, err, "backfilling external id failed")
	}

	r.record(ctx, domain.AuditEvent{
		Type:      domain.EventTaskPromoted,
		Identity:  key,
		Actor:     domain.ActorPromotion,
		TaskTitle: task.Title,
		PageID:    pageID,
		Details: map[string]any{
			"external_id": externalID,
			"project_id":  projectID,
			"subtasks":    subtasks,
		},
	})

	// A task manager webhook for the task just created must not come back as
	// a new Task Record.
	cfp := domain.CoalesceStr(task.ContentFingerprint,
		fingerprint.Content(task.Title, task.DueDateString(), task.MatterID))
	if !r.gate.AlreadyRecorded(ctx, cfp, domain.EventTaskCreated) {
		r.record(ctx, domain.AuditEvent{
			Type:      domain.EventTaskCreated,
			Identity:  cfp,
			Actor:     domain.ActorPromotion,
			TaskTitle: task.Title,
			PageID:    pageID,
			Details:   map[string]any{"external_id": externalID},
		})
	}

	r.note(ctx, task.MatterID, promotionNote(task))
	out.Status = StatusPromoted
	return out, nil
}

// projectFor returns the task manager project for matterID, creating the
// project and its mapping on first use. Any failure falls back to the
// default project.
func (r *reconciler) projectFor(ctx context.Context, matterID string) string {
	fallback := r.tasks.DefaultProject()
	if matterID == "" {
		return fallback
	}
	fields := log.Fields{"matter_id": matterID}

	mapping, err := r.mappings.ProjectForMatter(ctx, matterID)
	if err != nil {
		r.failed(ctx, fields, err, "project mapping lookup failed, using default project")
		return fallback
	}
	if mapping != nil {
		return mapping.ProjectID
	}

	name := "Matter " + matterID
	m, err := r.directory.GetMatter(ctx, matterID)
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("matter lookup failed, naming project by id")
	} else if m != nil && m.CaseName != "" {
		name = m.CaseName
	}

	projectID, err := r.tasks.CreateProject(ctx, name)
	if err != nil || projectID == "" {
		r.failed(ctx, fields, err, "creating project failed, using default project")
		return fallback
	}

	saved, err := r.mappings.SaveMapping(ctx, domain.ProjectMapping{
		MatterID:    matterID,
		ProjectID:   projectID,
		ProjectName: name,
		CreatedAt:   r.now().UTC(),
	})
	if err != nil {
		r.failed(ctx, fields, err, "saving project mapping failed")
		return projectID
	}
	if saved.ProjectID == projectID {
		r.record(ctx, domain.AuditEvent{
			Type:     domain.EventProjectMapped,
			Identity: matterID,
			Actor:    domain.ActorPromotion,
			Details:  map[string]any{"project_id": projectID, "project_name": name},
		})
	}
	return saved.ProjectID
}

// createSubtasks creates each subtask under parentID, due relative to the
// parent. It returns the number created.
func (r *reconciler) createSubtasks(ctx context.Context, task *domain.Task, projectID, parentID string) int {
	created := 0
	for _, st := range task.Subtasks {
		sub := domain.ExternalTask{
			ProjectID: projectID,
			ParentID:  parentID,
			Title:     st.Title,
			Priority:  task.Priority,
		}
		if task.DueDate != nil {
			sub.Due = ptr(task.DueDate.AddDate(0, 0, st.OffsetDays))
		}
		if _, err := r.tasks.CreateTask(ctx, sub); err != nil {
			r.failed(ctx, log.Fields{"parent_id": parentID, "title": st.Title}, err, "creating subtask failed")
			continue
		}
		created++
	}
	return created
}

func externalNotes(t *domain.Task) string {
	var b strings.Builder
	if t.Rationale != "" {
		b.WriteString(t.Rationale)
	}
	if t.SourceEmailURL != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Source: " + t.SourceEmailURL)
	}
	return b.String()
}

func promotionNote(t *domain.Task) string {
	if d := t.DueDateString(); d != "" {
		return fmt.Sprintf("Task promoted: %s (due %s)", t.Title, d)
	}
	return "Task promoted: " + t.Title
}
