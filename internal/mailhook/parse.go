// Package mailhook parses email-received webhook payloads produced by the
// mail relay into domain.InboundEmail values.
//
// The relay sends a JSON object (occasionally wrapped in a one-element
// array) with text, subject, date, from, headers and attachments fields.
// Field shapes vary between relay versions, so decoding goes through a
// generic map rather than a fixed struct.
package mailhook

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/alexanderramin/docket/internal/domain"
)

// ErrEmptyPayload is returned for an empty body or an empty array.
var ErrEmptyPayload = errors.New("empty mailhook payload")

var (
	forwardedFrom = regexp.MustCompile(`From:\s*(?:[^<\n]*<)?([^>@\s]+@[^>\s]+)`)
	ruleMarker    = regexp.MustCompile(`\n\n(?:_{10,}|-{10,})`)
)

// Parser turns raw webhook bodies into InboundEmail values.
type Parser struct {
	signatureMarkers []string
}

// NewParser creates a Parser. Each signature marker is a line (for example
// the forwarding attorney's name) that starts the signature block; text
// before the first marker or horizontal rule becomes the user notes.
func NewParser(signatureMarkers ...string) *Parser {
	var markers []string
	for _, m := range signatureMarkers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	return &Parser{signatureMarkers: markers}
}

// Parse decodes body.
func (p *Parser) Parse(body []byte) (*domain.InboundEmail, error) {
	var raw any
	if err := sonic.ConfigStd.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode mailhook payload: %w", err)
	}
	if arr, ok := raw.([]any); ok {
		if len(arr) == 0 {
			return nil, ErrEmptyPayload
		}
		raw = arr[0]
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode mailhook payload: expected object, got %T", raw)
	}
	if len(obj) == 0 {
		return nil, ErrEmptyPayload
	}
	return p.fromMap(obj), nil
}

func (p *Parser) fromMap(obj map[string]any) *domain.InboundEmail {
	text := str(obj["text"])
	headers := stringMap(obj["headers"])

	var directSender string
	switch from := obj["from"].(type) {
	case map[string]any:
		directSender = str(from["address"])
	case string:
		directSender = from
	}
	sender := directSender
	if m := forwardedFrom.FindStringSubmatch(text); m != nil {
		sender = m[1]
	}

	messageID := domain.CoalesceStr(headers["in-reply-to"], headers["message-id"])
	messageID = strings.TrimSpace(strings.Trim(messageID, "<>"))

	return &domain.InboundEmail{
		MessageID:      messageID,
		OriginalSender: strings.TrimSpace(sender),
		ReceivedAt:     domain.CoalesceStr(str(obj["date"]), headers["date"]),
		Subject:        str(obj["subject"]),
		UserNotes:      p.userNotes(text),
		Body:           text,
		Headers:        headers,
		Attachments:    attachments(obj["attachments"]),
	}
}

// userNotes returns the text before the earliest signature marker or
// horizontal rule, or "" when neither is present.
func (p *Parser) userNotes(text string) string {
	cut := -1
	if loc := ruleMarker.FindStringIndex(text); loc != nil {
		cut = loc[0]
	}
	for _, m := range p.signatureMarkers {
		if i := strings.Index(text, "\n\n"+m); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return ""
	}
	return strings.TrimSpace(text[:cut])
}

func attachments(v any) []domain.Attachment {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Attachment, 0, len(list))
	for _, item := range list {
		switch a := item.(type) {
		case string:
			out = append(out, domain.Attachment{Name: a})
		case map[string]any:
			att := domain.Attachment{
				Name:        domain.CoalesceStr(str(a["fileName"]), str(a["filename"]), "unknown"),
				ContentType: domain.CoalesceStr(str(a["contentType"]), str(a["content_type"]), str(a["mimeType"])),
			}
			if enc := str(a["content"]); enc != "" {
				if data, err := base64.StdEncoding.DecodeString(enc); err == nil {
					att.Content = data
				}
			}
			out = append(out, att)
		}
	}
	return out
}

// stringMap lowercases header names. Multi-valued headers keep the first
// value.
func stringMap(v any) map[string]string {
	out := map[string]string{}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range m {
		key := strings.ToLower(k)
		switch tv := val.(type) {
		case string:
			out[key] = tv
		case []any:
			if len(tv) > 0 {
				out[key] = str(tv[0])
			}
		}
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
