package domain

import "time"

// Attachment is a file carried by an inbound email. Content is empty when the
// mail relay did not forward the bytes.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// InboundEmail is a parsed email-received webhook delivery.
type InboundEmail struct {
	MessageID      string
	OriginalSender string
	ReceivedAt     string
	Subject        string
	UserNotes      string
	Body           string
	Headers        map[string]string
	Attachments    []Attachment
}

func (e *InboundEmail) HasAttachments() bool {
	return len(e.Attachments) > 0
}

// AttachmentNames lists attachment file names in delivery order.
func (e *InboundEmail) AttachmentNames() []string {
	names := make([]string, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		names = append(names, a.Name)
	}
	return names
}

// EmailReceipt is the dedup marker persisted once per message fingerprint.
// It is never mutated.
type EmailReceipt struct {
	Fingerprint       string
	Sender            string
	ReceivedAt        string
	NormalizedSubject string
	MessageID         string
	Headers           map[string]string
	CreatedAt         time.Time
}
