package domain

// Scored wraps a value extracted by the model together with the model's
// confidence in it. Value is nil when the model returned null.
type Scored[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NewScored builds a Scored holding v.
func NewScored[T any](v T, confidence float64) Scored[T] {
	return Scored[T]{Value: &v, Confidence: confidence}
}

// Get returns the value and whether one was present.
func (s Scored[T]) Get() (T, bool) {
	if s.Value == nil {
		var zero T
		return zero, false
	}
	return *s.Value, true
}

// Or returns the value, or fallback when absent.
func (s Scored[T]) Or(fallback T) T {
	if s.Value == nil {
		return fallback
	}
	return *s.Value
}

// SubtaskCandidate is a component work item of a task, due OffsetDays
// relative to the parent due date (negative means before).
type SubtaskCandidate struct {
	Title      string `json:"title"`
	OffsetDays int    `json:"offset_days"`
}

// TaskCandidate is a task proposed by the extraction service.
type TaskCandidate struct {
	Title            Scored[string]     `json:"title"`
	DueDate          Scored[string]     `json:"due_date"`
	RelativeDeadline Scored[string]     `json:"relative_deadline"`
	Priority         Scored[string]     `json:"priority"`
	Rationale        string             `json:"extraction_rationale"`
	ApplicableRule   *string            `json:"applicable_rule"`
	Subtasks         []SubtaskCandidate `json:"subtasks"`
}

// CalendarCandidate is an event requiring an appearance.
type CalendarCandidate struct {
	Title     Scored[string] `json:"title"`
	EventDate Scored[string] `json:"event_date"`
	EventTime Scored[string] `json:"event_time"`
	Location  Scored[string] `json:"location"`
	Rationale string         `json:"extraction_rationale"`
}

// Extraction is the structured response of the extraction service.
type Extraction struct {
	DocumentType  Scored[string]      `json:"document_type"`
	IndexNumber   Scored[string]      `json:"index_number"`
	Caption       Scored[string]      `json:"caption"`
	Tasks         []TaskCandidate     `json:"tasks"`
	CalendarItems []CalendarCandidate `json:"calendar_items"`

	// Set by the adapter, not the model.
	Model                string `json:"-"`
	AttachmentsProcessed bool   `json:"-"`
	Failed               bool   `json:"-"`
	FailureReason        string `json:"-"`
}

// Candidates returns every task candidate including calendar items folded
// into task form.
func (e *Extraction) Candidates() []TaskCandidate {
	out := make([]TaskCandidate, 0, len(e.Tasks)+len(e.CalendarItems))
	out = append(out, e.Tasks...)
	for _, c := range e.CalendarItems {
		out = append(out, c.AsTask())
	}
	return out
}

// AsTask converts a calendar item into a P1 task due on the event date.
func (c CalendarCandidate) AsTask() TaskCandidate {
	confidence := c.Title.Confidence
	if c.Title.Value == nil && confidence == 0 {
		confidence = 0.8
	}
	return TaskCandidate{
		Title:            NewScored("[CALENDAR] "+c.Title.Or("Event"), confidence),
		DueDate:          Scored[string]{Value: c.EventDate.Value, Confidence: 0.9},
		RelativeDeadline: Scored[string]{Confidence: 1.0},
		Priority:         NewScored(string(PriorityP1), 0.9),
		Rationale:        c.Rationale,
	}
}
