package notion

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
)

// SourceEmailURL is the mail client deep link for a message id.
func SourceEmailURL(messageID string) string {
	if messageID == "" {
		return ""
	}
	return "https://outlook.office.com/mail/deeplink/read/" + url.QueryEscape(messageID)
}

// CreateTask creates a task record and returns its page id.
func (c *Client) CreateTask(ctx context.Context, t domain.Task) (string, error) {
	p, err := c.createPage(ctx, c.cfg.TasksDatabaseID, c.taskProperties(t))
	if err != nil {
		return "", fmt.Errorf("create task %q: %w", t.Title, err)
	}
	c.logger.WithFields(log.Fields{"page_id": p.ID, "status": t.Status}).Info("created board task")
	return p.ID, nil
}

// GetTask fetches a task record. It returns nil, nil when the page is gone.
func (c *Client) GetTask(ctx context.Context, pageID string) (*domain.Task, error) {
	p, err := c.getPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", pageID, err)
	}
	if p == nil || p.Archived {
		return nil, nil
	}
	return c.toTask(p), nil
}

// FindByExternalID returns the task carrying the task-manager id, or nil.
func (c *Client) FindByExternalID(ctx context.Context, externalID string) (*domain.Task, error) {
	p, err := c.queryOne(ctx, c.cfg.TasksDatabaseID,
		richTextFilter(c.cfg.TaskProps.ExternalID, "equals", externalID))
	if err != nil {
		return nil, fmt.Errorf("find task by external id: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return c.toTask(p), nil
}

// FindByContentFingerprint returns the task carrying the fingerprint, or nil.
func (c *Client) FindByContentFingerprint(ctx context.Context, fp string) (*domain.Task, error) {
	p, err := c.queryOne(ctx, c.cfg.TasksDatabaseID,
		richTextFilter(c.cfg.TaskProps.ContentFingerprint, "equals", fp))
	if err != nil {
		return nil, fmt.Errorf("find task by content fingerprint: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return c.toTask(p), nil
}

// UpdateTask applies the non-nil fields of patch.
func (c *Client) UpdateTask(ctx context.Context, pageID string, patch domain.TaskPatch) error {
	props := map[string]any{}
	if patch.Status != nil {
		props[c.cfg.TaskProps.Status] = statusValue(string(*patch.Status))
	}
	if patch.ExternalID != nil {
		props[c.cfg.TaskProps.ExternalID] = richTextValue(*patch.ExternalID)
	}
	if len(props) == 0 {
		return nil
	}
	if err := c.updatePage(ctx, pageID, props); err != nil {
		return fmt.Errorf("update task %s: %w", pageID, err)
	}
	return nil
}

func (c *Client) taskProperties(t domain.Task) map[string]any {
	tp := c.cfg.TaskProps
	props := map[string]any{
		tp.Title:              titleValue(domain.CoalesceStr(t.Title, "Untitled Task")),
		tp.Status:             statusValue(string(t.Status)),
		tp.Priority:           selectValue(string(domain.ParsePriority(string(t.Priority)))),
		tp.Rationale:          richTextValue(t.Rationale),
		tp.MessageFingerprint: richTextValue(t.MessageFingerprint),
		tp.ContentFingerprint: richTextValue(t.ContentFingerprint),
	}
	if t.Source != "" {
		props[tp.Source] = selectValue(string(t.Source))
	}
	if t.Model != "" {
		props[tp.Model] = richTextValue(t.Model)
	}
	if t.SourceEmailURL != "" {
		props[tp.SourceEmailURL] = map[string]any{"url": t.SourceEmailURL}
	}
	if d := t.DueDateString(); d != "" {
		props[tp.DueDate] = dateValueOf(d)
	}
	if t.RelativeDeadline != "" {
		props[tp.RelativeDeadline] = richTextValue(t.RelativeDeadline)
	}
	if t.ApplicableRule != "" {
		props[tp.ApplicableRule] = richTextValue(t.ApplicableRule)
	}
	if len(t.Subtasks) > 0 {
		if data, err := sonic.ConfigStd.MarshalToString(t.Subtasks); err == nil {
			props[tp.SubtasksJSON] = richTextValue(data)
		}
	}
	if t.MatterID != "" {
		props[tp.Matter] = relationValue(t.MatterID)
	}
	if t.OriginalSender != "" {
		props[tp.OriginalSender] = map[string]any{"email": t.OriginalSender}
	}
	if t.ExternalID != "" {
		props[tp.ExternalID] = richTextValue(t.ExternalID)
	}
	return props
}

func (c *Client) toTask(p *page) *domain.Task {
	tp := c.cfg.TaskProps
	t := &domain.Task{
		PageID:             p.ID,
		Title:              p.text(tp.Title),
		Status:             domain.TaskStatus(p.text(tp.Status)),
		Priority:           domain.ParsePriority(p.text(tp.Priority)),
		DueDate:            domain.ParseDate(dateOnly(p.text(tp.DueDate))),
		RelativeDeadline:   p.text(tp.RelativeDeadline),
		MessageFingerprint: p.text(tp.MessageFingerprint),
		ContentFingerprint: p.text(tp.ContentFingerprint),
		MatterID:           p.firstRelation(tp.Matter),
		ExternalID:         p.text(tp.ExternalID),
		Source:             domain.TaskSource(p.text(tp.Source)),
		Rationale:          p.text(tp.Rationale),
		ApplicableRule:     p.text(tp.ApplicableRule),
		SourceEmailURL:     p.text(tp.SourceEmailURL),
		OriginalSender:     p.text(tp.OriginalSender),
		Model:              p.text(tp.Model),
	}
	if raw := p.text(tp.SubtasksJSON); raw != "" {
		var subs []domain.SubtaskCandidate
		if err := sonic.ConfigStd.UnmarshalFromString(raw, &subs); err == nil {
			t.Subtasks = subs
		}
	}
	return t
}

// dateOnly trims a Notion datetime ("2025-12-30T10:00:00.000-05:00") to its
// date part.
func dateOnly(s string) string {
	if len(s) > len(domain.DateLayout) {
		return s[:len(domain.DateLayout)]
	}
	return s
}
