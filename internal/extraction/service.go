// Package extraction turns an inbound email into task and calendar
// candidates using the language model, degrading to a single review task
// when the model cannot be used.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/llm"
)

// DefaultMaxAttachmentBytes bounds the attachment text sent to the model.
const DefaultMaxAttachmentBytes = 50_000

// Service extracts candidates from an email.
type Service interface {
	// Extract never fails: on any error it returns Fallback with Failed set.
	Extract(ctx context.Context, email *domain.InboundEmail) *domain.Extraction
}

type extractionService struct {
	client             llm.LLMClient
	logger             *log.Logger
	now                func() time.Time
	maxAttachmentBytes int
}

// Option configures the service.
type Option func(*extractionService)

// WithClock overrides "today" in the prompt.
func WithClock(now func() time.Time) Option {
	return func(s *extractionService) { s.now = now }
}

// WithMaxAttachmentBytes caps the text included per attachment.
func WithMaxAttachmentBytes(n int) Option {
	return func(s *extractionService) { s.maxAttachmentBytes = n }
}

// NewService creates an extraction Service backed by an LLM client.
func NewService(client llm.LLMClient, logger *log.Logger, opts ...Option) Service {
	s := &extractionService{
		client:             client,
		logger:             logger,
		now:                time.Now,
		maxAttachmentBytes: DefaultMaxAttachmentBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *extractionService) Extract(ctx context.Context, email *domain.InboundEmail) *domain.Extraction {
	readable, unreadable := splitAttachments(email.Attachments)

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskExtractEmail,
		SystemPrompt: buildSystemPrompt(s.now()),
		UserPrompt:   buildUserPrompt(email, readable, unreadable, s.maxAttachmentBytes),
	})
	if err != nil {
		return s.fail(email, fmt.Errorf("llm extraction failed: %w", err))
	}

	ext, err := llm.ExtractJSON[domain.Extraction](resp.Text, validateExtraction)
	if err != nil {
		return s.fail(email, err)
	}

	ext.Model = resp.Model
	ext.AttachmentsProcessed = len(unreadable) == 0
	s.logger.WithFields(log.Fields{
		"subject":        email.Subject,
		"tasks":          len(ext.Tasks),
		"calendar_items": len(ext.CalendarItems),
		"model":          resp.Model,
	}).Info("extraction complete")
	return &ext
}

func (s *extractionService) fail(email *domain.InboundEmail, err error) *domain.Extraction {
	entry := s.logger.WithField("subject", email.Subject).WithError(err)
	if errors.Is(err, llm.ErrInvalidOutput) {
		entry.Warn("extraction output rejected, falling back to review task")
	} else {
		entry.Error("extraction failed, falling back to review task")
	}
	ext := Fallback(email, err)
	ext.AttachmentsProcessed = !email.HasAttachments()
	return ext
}

// splitAttachments separates attachments whose text can go into the prompt
// from those that cannot.
func splitAttachments(atts []domain.Attachment) (readable []domain.Attachment, unreadable []string) {
	for _, a := range atts {
		if isReadable(a) {
			readable = append(readable, a)
			continue
		}
		unreadable = append(unreadable, a.Name)
	}
	return readable, unreadable
}

func isReadable(a domain.Attachment) bool {
	if len(a.Content) == 0 {
		return false
	}
	ct := strings.ToLower(strings.TrimSpace(a.ContentType))
	return strings.HasPrefix(ct, "text/")
}

// validateExtraction is a schema validator for ExtractJSON. Unknown
// priorities and malformed dates are tolerated and normalized downstream.
func validateExtraction(e domain.Extraction) error {
	check := func(field string, c float64) error {
		if c < 0 || c > 1 {
			return fmt.Errorf("%s confidence must be in [0,1], got %f", field, c)
		}
		return nil
	}
	for i, t := range e.Tasks {
		if err := check(fmt.Sprintf("tasks[%d].title", i), t.Title.Confidence); err != nil {
			return err
		}
	}
	for i, c := range e.CalendarItems {
		if err := check(fmt.Sprintf("calendar_items[%d].title", i), c.Title.Confidence); err != nil {
			return err
		}
	}
	return nil
}
