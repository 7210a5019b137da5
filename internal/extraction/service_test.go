package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/llm"
)

type stubClient struct {
	text string
	err  error
	last llm.GenerateRequest
}

func (c *stubClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResponse{Text: c.text, Model: "claude-test"}, nil
}

const sampleOutput = "```json\n" + `{
  "document_type": {"value": "email", "confidence": 0.95},
  "index_number": {"value": "151234/2024", "confidence": 0.9},
  "caption": {"value": "Walker v. Metro Ten Hotel", "confidence": 0.9},
  "tasks": [
    {
      "title": {"value": "Respond to discovery demands", "confidence": 0.92},
      "due_date": {"value": "2025-12-30", "confidence": 0.95},
      "relative_deadline": {"value": null, "confidence": 1.0},
      "priority": {"value": "P1", "confidence": 0.9},
      "extraction_rationale": "Responses are due by December 30, 2025",
      "applicable_rule": "CPLR 3122(a)",
      "subtasks": [{"title": "Collect documents", "offset_days": -7}]
    }
  ],
  "calendar_items": [
    {
      "title": {"value": "Compliance conference", "confidence": 0.85},
      "event_date": {"value": "2026-01-15", "confidence": 0.9},
      "event_time": {"value": "10:00", "confidence": 0.9},
      "location": {"value": "Part 12", "confidence": 0.8},
      "extraction_rationale": "conference on January 15"
    }
  ]
}` + "\n```"

func newService(c llm.LLMClient) Service {
	logger, _ := test.NewNullLogger()
	return NewService(c, logger, WithClock(func() time.Time {
		return time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	}))
}

func sampleEmail() *domain.InboundEmail {
	return &domain.InboundEmail{
		MessageID:      "m1",
		OriginalSender: "counsel@firm.com",
		Subject:        "Walker v. Metro Ten - discovery",
		Body:           "Please respond by Dec 30.",
	}
}

func TestExtract_ParsesModelOutput(t *testing.T) {
	client := &stubClient{text: sampleOutput}
	ext := newService(client).Extract(context.Background(), sampleEmail())

	require.False(t, ext.Failed)
	assert.Equal(t, "claude-test", ext.Model)
	assert.True(t, ext.AttachmentsProcessed)
	assert.Equal(t, "151234/2024", ext.IndexNumber.Or(""))
	assert.Equal(t, "Walker v. Metro Ten Hotel", ext.Caption.Or(""))
	require.Len(t, ext.Tasks, 1)
	assert.Equal(t, "Respond to discovery demands", ext.Tasks[0].Title.Or(""))
	assert.Nil(t, ext.Tasks[0].RelativeDeadline.Value)
	require.Len(t, ext.Tasks[0].Subtasks, 1)
	assert.Equal(t, -7, ext.Tasks[0].Subtasks[0].OffsetDays)

	candidates := ext.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "[CALENDAR] Compliance conference", candidates[1].Title.Or(""))

	assert.Equal(t, llm.TaskExtractEmail, client.last.Task)
	assert.Contains(t, client.last.SystemPrompt, "Today's date: 2025-12-01")
	assert.Contains(t, client.last.UserPrompt, "From: counsel@firm.com")
}

func TestExtract_LLMErrorFallsBack(t *testing.T) {
	client := &stubClient{err: llm.ErrTimeout}
	ext := newService(client).Extract(context.Background(), sampleEmail())

	require.True(t, ext.Failed)
	require.Len(t, ext.Tasks, 1)
	task := ext.Tasks[0]
	assert.Equal(t, FailedTitlePrefix+"Walker v. Metro Ten - discovery", task.Title.Or(""))
	assert.Equal(t, 0.0, task.Title.Confidence)
	assert.Equal(t, "P1", task.Priority.Or(""))
	assert.Contains(t, task.Rationale, "timed out")
	assert.Contains(t, ext.FailureReason, "timed out")
}

func TestExtract_InvalidOutputFallsBack(t *testing.T) {
	client := &stubClient{text: "Sorry, I can't help with that."}
	ext := newService(client).Extract(context.Background(), sampleEmail())

	assert.True(t, ext.Failed)
	assert.True(t, strings.HasPrefix(ext.Tasks[0].Title.Or(""), FailedTitlePrefix))
}

func TestExtract_OutOfRangeConfidenceRejected(t *testing.T) {
	client := &stubClient{text: `{"tasks":[{"title":{"value":"x","confidence":3}}]}`}
	ext := newService(client).Extract(context.Background(), sampleEmail())
	assert.True(t, ext.Failed)
	assert.Contains(t, ext.FailureReason, "validation failed")
}

func TestExtract_TextAttachmentIsIncluded(t *testing.T) {
	client := &stubClient{text: `{"tasks":[]}`}
	email := sampleEmail()
	email.Attachments = []domain.Attachment{
		{Name: "notice.txt", ContentType: "text/plain", Content: []byte("Answer due in 20 days.")},
	}
	ext := newService(client).Extract(context.Background(), email)

	assert.True(t, ext.AttachmentsProcessed)
	assert.Contains(t, client.last.UserPrompt, "--- Attachment: notice.txt ---")
	assert.Contains(t, client.last.UserPrompt, "Answer due in 20 days.")
}

func TestExtract_BinaryAttachmentIsUnprocessed(t *testing.T) {
	client := &stubClient{text: `{"tasks":[]}`}
	email := sampleEmail()
	email.Attachments = []domain.Attachment{
		{Name: "order.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.7")},
		{Name: "scan.png"},
	}
	ext := newService(client).Extract(context.Background(), email)

	assert.False(t, ext.AttachmentsProcessed)
	assert.Contains(t, client.last.UserPrompt, "order.pdf, scan.png")
	assert.NotContains(t, client.last.UserPrompt, "%PDF")
}

func TestExtract_FallbackKeepsAttachmentState(t *testing.T) {
	client := &stubClient{err: errors.New("boom")}
	email := sampleEmail()
	email.Attachments = []domain.Attachment{{Name: "a.txt", ContentType: "text/plain", Content: []byte("x")}}
	ext := newService(client).Extract(context.Background(), email)

	assert.True(t, ext.Failed)
	assert.False(t, ext.AttachmentsProcessed)
}

func TestBuildUserPrompt_TruncatesLongAttachments(t *testing.T) {
	email := sampleEmail()
	att := domain.Attachment{Name: "big.txt", ContentType: "text/plain", Content: []byte(strings.Repeat("a", 100))}
	prompt := buildUserPrompt(email, []domain.Attachment{att}, nil, 10)
	assert.Contains(t, prompt, strings.Repeat("a", 10)+"\n[truncated]")
	assert.NotContains(t, prompt, strings.Repeat("a", 11))
}
