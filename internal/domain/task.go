package domain

import "time"

// DateLayout is the calendar-date encoding used for due dates everywhere.
const DateLayout = "2006-01-02"

// Task is a Task Record tracked on the task board. PageID is the board's
// identifier; ExternalID is the personal task manager's, set on promotion or
// reverse sync.
type Task struct {
	PageID             string
	Title              string
	Status             TaskStatus
	Priority           Priority
	DueDate            *time.Time
	RelativeDeadline   string
	MessageFingerprint string
	ContentFingerprint string
	MatterID           string
	ExternalID         string
	Source             TaskSource
	Rationale          string
	ApplicableRule     string
	Subtasks           []SubtaskCandidate
	SourceEmailURL     string
	OriginalSender     string
	Model              string
}

// DueDateString formats the due date as YYYY-MM-DD, or "" when unset.
func (t *Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// IsPromoted reports whether the task already exists in the task manager.
func (t *Task) IsPromoted() bool {
	return t.ExternalID != ""
}

// TaskPatch carries a partial update for a Task Record. Nil fields are left
// untouched.
type TaskPatch struct {
	Status     *TaskStatus
	ExternalID *string
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time. Empty or
// malformed input yields nil.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ExternalTask is a task in the personal task manager. ProjectID is the
// task list it belongs to; ParentID is set for subtasks.
type ExternalTask struct {
	ID        string
	ProjectID string
	ParentID  string
	Title     string
	Notes     string
	Priority  Priority
	Due       *time.Time
	Completed bool
}
