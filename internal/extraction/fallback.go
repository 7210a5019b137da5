package extraction

import (
	"fmt"

	"github.com/alexanderramin/docket/internal/domain"
)

// FailedTitlePrefix marks the synthetic review task created when extraction
// fails.
const FailedTitlePrefix = "[EXTRACTION FAILED] Review email: "

// Fallback builds the single low-confidence review task used when the model
// call or its output fails. It never loses the email: a human sees it.
func Fallback(email *domain.InboundEmail, reason error) *domain.Extraction {
	msg := "unknown error"
	if reason != nil {
		msg = reason.Error()
	}
	return &domain.Extraction{
		DocumentType: domain.NewScored("email", 0),
		Tasks: []domain.TaskCandidate{{
			Title:            domain.NewScored(FailedTitlePrefix+email.Subject, 0),
			RelativeDeadline: domain.Scored[string]{},
			Priority:         domain.NewScored(string(domain.PriorityP1), 0),
			Rationale:        fmt.Sprintf("Extraction failed: %s", msg),
		}},
		Failed:        true,
		FailureReason: msg,
	}
}
