package mailhook

import (
	"encoding/base64"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forwarded = `Please calendar the answer deadline.

Steven Mach
Partner

---------- Forwarded message ---------
From: Jane Opposing <jane@opposing.com>
Date: Mon, Dec 1, 2025
Subject: Walker v. Metro Ten
`

func TestParse_ForwardedEmail(t *testing.T) {
	body := []byte(`{
		"text": ` + quote(forwarded) + `,
		"subject": "Fwd: Walker v. Metro Ten",
		"date": "2025-12-01T15:04:05.000Z",
		"from": {"address": "steven@firm.com", "name": "Steven"},
		"headers": {"In-Reply-To": "<abc123@mail.opposing.com>", "message-id": "<fwd@firm.com>"},
		"attachments": [{"fileName": "notice.pdf", "contentType": "application/pdf"}]
	}`)

	email, err := NewParser("Steven Mach").Parse(body)
	require.NoError(t, err)

	assert.Equal(t, "abc123@mail.opposing.com", email.MessageID)
	assert.Equal(t, "jane@opposing.com", email.OriginalSender)
	assert.Equal(t, "2025-12-01T15:04:05.000Z", email.ReceivedAt)
	assert.Equal(t, "Fwd: Walker v. Metro Ten", email.Subject)
	assert.Equal(t, "Please calendar the answer deadline.", email.UserNotes)
	assert.Equal(t, forwarded, email.Body)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "notice.pdf", email.Attachments[0].Name)
	assert.Equal(t, "application/pdf", email.Attachments[0].ContentType)
	assert.True(t, email.HasAttachments())
}

func TestParse_ArrayWrappedAndStringSender(t *testing.T) {
	body := []byte(`[{"text": "no forwarded header here", "from": "client@example.com", "subject": "hello", "headers": {"message-id": "<m1>"}}]`)
	email, err := NewParser().Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", email.OriginalSender)
	assert.Equal(t, "m1", email.MessageID)
	assert.Equal(t, "", email.UserNotes)
	assert.False(t, email.HasAttachments())
}

func TestParse_RuleEndsUserNotes(t *testing.T) {
	text := "Note one.\nNote two.\n\n______________________\nsignature"
	email, err := NewParser().Parse([]byte(`{"text": ` + quote(text) + `, "subject": "s"}`))
	require.NoError(t, err)
	assert.Equal(t, "Note one.\nNote two.", email.UserNotes)
}

func TestParse_EarliestMarkerWins(t *testing.T) {
	text := "Short note.\n\nA. Lawyer\n\n--------------------\nolder"
	email, err := NewParser("A. Lawyer").Parse([]byte(`{"text": ` + quote(text) + `, "subject": "s"}`))
	require.NoError(t, err)
	assert.Equal(t, "Short note.", email.UserNotes)
}

func TestParse_AttachmentVariants(t *testing.T) {
	content := base64.StdEncoding.EncodeToString([]byte("Answer due in 20 days."))
	body := []byte(`{"subject": "s", "attachments": [
		"loose.docx",
		{"filename": "notice.txt", "content_type": "text/plain", "content": "` + content + `"},
		{"mimeType": "image/png"},
		{"fileName": "bad.txt", "contentType": "text/plain", "content": "%%%not-base64"}
	]}`)
	email, err := NewParser().Parse(body)
	require.NoError(t, err)
	require.Len(t, email.Attachments, 4)

	assert.Equal(t, []string{"loose.docx", "notice.txt", "unknown", "bad.txt"}, email.AttachmentNames())
	assert.Equal(t, "Answer due in 20 days.", string(email.Attachments[1].Content))
	assert.Equal(t, "text/plain", email.Attachments[1].ContentType)
	assert.Equal(t, "image/png", email.Attachments[2].ContentType)
	assert.Empty(t, email.Attachments[3].Content)
}

func TestParse_HeaderDateFallbackAndArrayHeaders(t *testing.T) {
	body := []byte(`{"subject": "s", "headers": {"Date": ["Mon, 01 Dec 2025 10:00:00 +0000"], "Message-ID": "<z@y>"}}`)
	email, err := NewParser().Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "Mon, 01 Dec 2025 10:00:00 +0000", email.ReceivedAt)
	assert.Equal(t, "z@y", email.MessageID)
}

func TestParse_Rejects(t *testing.T) {
	p := NewParser()

	_, err := p.Parse([]byte(`not json`))
	assert.Error(t, err)

	_, err = p.Parse([]byte(`[]`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = p.Parse([]byte(`{}`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = p.Parse([]byte(`"just a string"`))
	assert.Error(t, err)
}

func quote(s string) string {
	b, _ := sonic.ConfigStd.MarshalToString(s)
	return b
}
