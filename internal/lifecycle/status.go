package lifecycle

import (
	"math"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

const (
	// ForceReviewDays is the due-date proximity (inclusive) at which a task is
	// always routed to review, whatever its confidence.
	ForceReviewDays = 3
	// ProposeThreshold is the minimum extraction confidence for Proposed.
	ProposeThreshold = 0.8
)

// ReviewReason explains why a task was routed to NeedsReview.
type ReviewReason string

const (
	ReasonNone                   ReviewReason = ""
	ReasonDeadlineImminent       ReviewReason = "deadline_imminent"
	ReasonUnprocessedAttachments ReviewReason = "unprocessed_attachments"
	ReasonNoMatter               ReviewReason = "no_matter"
	ReasonLowConfidence          ReviewReason = "low_confidence"
)

// Message is the human-readable form appended to the task rationale.
func (r ReviewReason) Message() string {
	switch r {
	case ReasonDeadlineImminent:
		return "Deadline is within 3 days; confirm before it is filed."
	case ReasonUnprocessedAttachments:
		return "Email had attachments that could not be read; the authoritative deadline may be in the attachment."
	case ReasonNoMatter:
		return "No matter could be resolved for this task."
	case ReasonLowConfidence:
		return "Extraction confidence is below the proposal threshold."
	default:
		return ""
	}
}

// StatusInputs are the facts initial-status derivation depends on.
type StatusInputs struct {
	Confidence           float64
	DueDate              *time.Time
	HasMatter            bool
	HasAttachments       bool
	AttachmentsProcessed bool
}

// Decision is the outcome of DeriveStatus.
type Decision struct {
	Status domain.TaskStatus
	Reason ReviewReason
}

// DeriveStatus computes the initial status of an extracted task. The rules
// are evaluated in order and the first match wins:
//
//  1. due within ForceReviewDays of now, including overdue -> NeedsReview
//  2. attachments present but not processed -> NeedsReview
//  3. no matter -> NeedsReview
//  4. confidence >= ProposeThreshold -> Proposed
//  5. otherwise -> NeedsReview
func DeriveStatus(in StatusInputs, now time.Time) Decision {
	if in.DueDate != nil && DaysUntil(*in.DueDate, now) <= ForceReviewDays {
		return Decision{Status: domain.StatusNeedsReview, Reason: ReasonDeadlineImminent}
	}
	if in.HasAttachments && !in.AttachmentsProcessed {
		return Decision{Status: domain.StatusNeedsReview, Reason: ReasonUnprocessedAttachments}
	}
	if !in.HasMatter {
		return Decision{Status: domain.StatusNeedsReview, Reason: ReasonNoMatter}
	}
	if in.Confidence >= ProposeThreshold {
		return Decision{Status: domain.StatusProposed}
	}
	return Decision{Status: domain.StatusNeedsReview, Reason: ReasonLowConfidence}
}

// DaysUntil returns the whole days left from now until the start of the due
// date (UTC), rounded down. A deadline 3 days 14 hours away counts as 3;
// anything past midnight of the due date is negative.
func DaysUntil(due, now time.Time) int {
	return int(math.Floor(truncateDay(due).Sub(now.UTC()).Hours() / 24))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
