package lifecycle

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/docket/internal/domain"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal reports whether no further transition may leave s.
func IsTerminal(s domain.TaskStatus) bool {
	switch s {
	case domain.StatusCompleted, domain.StatusCompletedOrphan:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is an allowed edge. The empty
// status stands for "no record yet".
func CanTransition(from, to domain.TaskStatus) bool {
	switch from {
	case "":
		return to == domain.StatusProposed || to == domain.StatusNeedsReview ||
			to == domain.StatusApproved || to == domain.StatusCompletedOrphan
	case domain.StatusProposed, domain.StatusNeedsReview:
		return to == domain.StatusApproved
	case domain.StatusApproved:
		return to == domain.StatusPromoted || to == domain.StatusCompleted
	case domain.StatusPromoted:
		return to == domain.StatusCompleted
	default:
		return false
	}
}

// Transition validates from -> to and returns the new status.
func Transition(from, to domain.TaskStatus) (domain.TaskStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// Promotable reports whether a task in status s is in the approved,
// pre-promotion state.
func Promotable(s domain.TaskStatus) bool {
	return s == domain.StatusApproved
}
