package notion

import (
	"net/url"
	"strings"

	"github.com/alexanderramin/docket/internal/domain"
)

// TaskProperties maps task record fields to Notion property names or ids.
// Property ids are URL-encoded as Notion returns them.
type TaskProperties struct {
	Title              string
	Status             string
	Priority           string
	Rationale          string
	SourceEmailURL     string
	MessageFingerprint string
	ContentFingerprint string
	Model              string
	DueDate            string
	RelativeDeadline   string
	ApplicableRule     string
	SubtasksJSON       string
	Matter             string
	OriginalSender     string
	Source             string
	ExternalID         string
}

// DefaultTaskProperties is the layout of the production tasks database.
func DefaultTaskProperties() TaskProperties {
	return TaskProperties{
		Title:              "title",
		Status:             "Ehyz",
		Priority:           "jczD",
		Rationale:          "PjOx",
		SourceEmailURL:     "dLrJ",
		MessageFingerprint: "%7BkjL",
		ContentFingerprint: "Content Fingerprint",
		Model:              "%40v%40s",
		DueDate:            "OPN%5C",
		RelativeDeadline:   "%5EGGe",
		ApplicableRule:     "MP%3F%60",
		SubtasksJSON:       "FMmh",
		Matter:             "rwWE",
		OriginalSender:     "Gh%40%5D",
		Source:             "Source",
		ExternalID:         "External Task ID",
	}
}

// MatterProperties maps matter fields to Notion property names.
type MatterProperties struct {
	Name        string
	IndexNumber string
	Caption     string
	Status      string
}

// DefaultMatterProperties is the layout of the production cases database.
func DefaultMatterProperties() MatterProperties {
	return MatterProperties{
		Name:        "Name",
		IndexNumber: "Index_number",
		Caption:     "Caption",
		Status:      "Status",
	}
}

type page struct {
	ID         string              `json:"id"`
	URL        string              `json:"url"`
	Archived   bool                `json:"archived"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Title    []richText   `json:"title"`
	RichText []richText   `json:"rich_text"`
	Select   *namedOption `json:"select"`
	Status   *namedOption `json:"status"`
	Date     *dateValue   `json:"date"`
	Relation []relation   `json:"relation"`
	URL      *string      `json:"url"`
	Email    *string      `json:"email"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type namedOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type relation struct {
	ID string `json:"id"`
}

// prop finds a property by name, falling back to matching its id.
func (p *page) prop(key string) (property, bool) {
	if v, ok := p.Properties[key]; ok {
		return v, true
	}
	decoded, _ := url.PathUnescape(key)
	for _, v := range p.Properties {
		if v.ID == key || v.ID == decoded {
			return v, true
		}
		if d, err := url.PathUnescape(v.ID); err == nil && d == decoded {
			return v, true
		}
	}
	return property{}, false
}

// text returns the plain text of a title, rich_text, select, status, url,
// email or date property.
func (p *page) text(key string) string {
	v, ok := p.prop(key)
	if !ok {
		return ""
	}
	switch {
	case len(v.Title) > 0:
		return joinText(v.Title)
	case len(v.RichText) > 0:
		return joinText(v.RichText)
	case v.Status != nil:
		return v.Status.Name
	case v.Select != nil:
		return v.Select.Name
	case v.URL != nil:
		return *v.URL
	case v.Email != nil:
		return *v.Email
	case v.Date != nil:
		return v.Date.Start
	}
	return ""
}

func (p *page) firstRelation(key string) string {
	v, ok := p.prop(key)
	if !ok || len(v.Relation) == 0 {
		return ""
	}
	return v.Relation[0].ID
}

func joinText(parts []richText) string {
	var b strings.Builder
	for _, t := range parts {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

func titleValue(s string) map[string]any {
	return map[string]any{"title": []any{textObject(s)}}
}

func richTextValue(s string) map[string]any {
	return map[string]any{"rich_text": []any{textObject(s)}}
}

func textObject(s string) map[string]any {
	return map[string]any{"text": map[string]any{"content": domain.Truncate(s, maxRichText)}}
}

func selectValue(s string) map[string]any {
	return map[string]any{"select": map[string]any{"name": s}}
}

func statusValue(s string) map[string]any {
	return map[string]any{"status": map[string]any{"name": s}}
}

func dateValueOf(s string) map[string]any {
	return map[string]any{"date": map[string]any{"start": s}}
}

func relationValue(id string) map[string]any {
	return map[string]any{"relation": []any{map[string]any{"id": id}}}
}

func richTextFilter(prop, op, value string) map[string]any {
	return map[string]any{"property": prop, "rich_text": map[string]any{op: value}}
}

func titleFilter(prop, op, value string) map[string]any {
	return map[string]any{"property": prop, "title": map[string]any{op: value}}
}
