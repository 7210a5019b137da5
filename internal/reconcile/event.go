package reconcile

import (
	"errors"

	"github.com/alexanderramin/docket/internal/domain"
)

// ErrMalformedEvent is returned when an event lacks the identity it is
// reconciled under.
var ErrMalformedEvent = errors.New("malformed event")

// Kind selects the entry protocol an event is reconciled with.
type Kind string

const (
	KindEmail      Kind = "email"
	KindApproval   Kind = "approval"
	KindCompletion Kind = "completion"
	KindTaskAdded  Kind = "task_added"
)

// Event is one inbound delivery. Which fields are read depends on Kind:
// Email for KindEmail, PageID for KindApproval, ExternalID (and optionally
// ProjectID) for KindCompletion, Item for KindTaskAdded.
type Event struct {
	Kind       Kind
	Email      *domain.InboundEmail
	PageID     string
	ExternalID string
	ProjectID  string
	Item       *domain.ExternalTask
}

// Status is the result label reported for a reconciled event.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusDuplicate Status = "duplicate"
	StatusPromoted  Status = "promoted"
	StatusCompleted Status = "completed"
	StatusOrphan    Status = "orphan"
	// StatusIgnored means the event does not apply, e.g. an unapproved task
	// or a personal project.
	StatusIgnored Status = "ignored"
	// StatusSkipped means a collaborator failed and nothing was recorded, so
	// a redelivery will try again.
	StatusSkipped Status = "skipped"
)

// CreatedTask describes a Task Record created while reconciling.
type CreatedTask struct {
	Title    string            `json:"title"`
	PageID   string            `json:"notion_id"`
	Status   domain.TaskStatus `json:"status"`
	Calendar bool              `json:"calendar,omitempty"`
}

// Outcome reports what reconciling an event did.
type Outcome struct {
	Kind          Kind
	Status        Status
	Identity      string
	Reason        string
	Tasks         []CreatedTask
	PageID        string
	ExternalID    string
	HasAttachment bool
}
