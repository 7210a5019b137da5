package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/mailhook"
	"github.com/alexanderramin/docket/internal/reconcile"
)

const maxBodyBytes = 25 << 20

type handlers struct {
	reconciler reconcile.Reconciler
	parser     *mailhook.Parser
	logger     *log.Logger
	cfg        Config
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type intakeResponse struct {
	Status        reconcile.Status        `json:"status"`
	Fingerprint   string                  `json:"fingerprint"`
	TasksCreated  int                     `json:"tasks_created"`
	Tasks         []reconcile.CreatedTask `json:"tasks"`
	HasAttachment bool                    `json:"has_attachment"`
}

type eventResponse struct {
	Status     reconcile.Status        `json:"status"`
	Identity   string                  `json:"identity,omitempty"`
	PageID     string                  `json:"page_id,omitempty"`
	ExternalID string                  `json:"external_id,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
	Tasks      []reconcile.CreatedTask `json:"tasks,omitempty"`
}

// approvalPayload accepts either a flat page id or a board automation
// envelope carrying the page under data.
type approvalPayload struct {
	PageID string `json:"page_id"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

type completionPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}

type taskAddedPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Due       string `json:"due"`
	Priority  string `json:"priority"`
}

func (h *handlers) email(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return badRequest(c, "unreadable body")
	}
	email, err := h.parser.Parse(body)
	if err != nil {
		return badRequest(c, err.Error())
	}
	h.logger.WithFields(log.Fields{
		"subject": email.Subject,
		"sender":  email.OriginalSender,
	}).Info("received email webhook")

	out, err := h.reconcile(c, reconcile.Event{Kind: reconcile.KindEmail, Email: email})
	if err != nil || out == nil {
		return err
	}
	tasks := out.Tasks
	if tasks == nil {
		tasks = []reconcile.CreatedTask{}
	}
	return c.JSON(http.StatusOK, intakeResponse{
		Status:        out.Status,
		Fingerprint:   out.Identity,
		TasksCreated:  len(out.Tasks),
		Tasks:         tasks,
		HasAttachment: out.HasAttachment,
	})
}

func (h *handlers) approval(c echo.Context) error {
	var p approvalPayload
	if err := decode(c, &p); err != nil {
		return badRequest(c, "invalid body")
	}
	pageID := p.PageID
	if pageID == "" {
		pageID = p.Data.ID
	}
	return h.respond(c, reconcile.Event{Kind: reconcile.KindApproval, PageID: pageID})
}

func (h *handlers) completion(c echo.Context) error {
	var p completionPayload
	if err := decode(c, &p); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.respond(c, reconcile.Event{
		Kind:       reconcile.KindCompletion,
		ExternalID: p.TaskID,
		ProjectID:  p.ProjectID,
	})
}

func (h *handlers) taskAdded(c echo.Context) error {
	var p taskAddedPayload
	if err := decode(c, &p); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.respond(c, reconcile.Event{
		Kind: reconcile.KindTaskAdded,
		Item: &domain.ExternalTask{
			ID:        p.TaskID,
			ProjectID: p.ProjectID,
			Title:     p.Title,
			Priority:  domain.ParsePriority(p.Priority),
			Due:       parseDue(p.Due),
		},
	})
}

func (h *handlers) respond(c echo.Context, ev reconcile.Event) error {
	out, err := h.reconcile(c, ev)
	if err != nil || out == nil {
		return err
	}
	return c.JSON(http.StatusOK, eventResponse{
		Status:     out.Status,
		Identity:   out.Identity,
		PageID:     out.PageID,
		ExternalID: out.ExternalID,
		Reason:     out.Reason,
		Tasks:      out.Tasks,
	})
}

// reconcile runs ev and writes the error response itself when it fails. A
// nil outcome with a nil error means the response is already written.
func (h *handlers) reconcile(c echo.Context, ev reconcile.Event) (*reconcile.Outcome, error) {
	out, err := h.reconciler.Reconcile(c.Request().Context(), ev)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, reconcile.ErrMalformedEvent) {
		return nil, badRequest(c, err.Error())
	}
	h.logger.WithField("kind", ev.Kind).WithError(err).Error("reconcile failed")
	return nil, c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "service": h.cfg.Service})
}

func (h *handlers) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": h.cfg.Service,
		"version": h.cfg.Version,
		"endpoints": map[string]string{
			"/webhook":             "POST - Email intake webhook",
			"/webhooks/email":      "POST - Email intake webhook",
			"/webhooks/approval":   "POST - Task approved on the board",
			"/webhooks/completion": "POST - Task completed in the task manager",
			"/webhooks/task-added": "POST - Task added in the task manager",
			"/health":              "GET - Health check",
		},
	})
}

func decode(c echo.Context, v any) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxBodyBytes))
	return dec.Decode(v)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: msg})
}

// parseDue accepts a calendar date or an RFC3339 timestamp.
func parseDue(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if d := domain.ParseDate(s); d != nil {
		return d
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
