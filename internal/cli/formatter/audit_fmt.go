package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

// FormatAuditTrail renders the events recorded under one identity, oldest
// first, followed by any event details.
func FormatAuditTrail(identity string, events []domain.AuditEvent, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Audit trail"))
	b.WriteString("\n")
	b.WriteString(Dim("identity ") + ShortFingerprint(identity) + "\n\n")

	if len(events) == 0 {
		b.WriteString(Dim("No events recorded."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			RelativeTime(ev.CreatedAt, now),
			EventBadge(ev.Type),
			ev.Actor,
			displayTitle(ev.TaskTitle),
			ShortID(ev.PageID),
		})
	}
	b.WriteString(RenderTable([]string{"WHEN", "EVENT", "ACTOR", "TASK", "PAGE"}, rows))

	for _, ev := range events {
		if len(ev.Details) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(Bold(string(ev.Type)))
		b.WriteString(Dim(" " + ev.CreatedAt.UTC().Format(time.RFC3339)))
		b.WriteString("\n")
		b.WriteString(formatDetails(ev.Details))
	}
	return b.String()
}

func displayTitle(title string) string {
	if title == "" {
		return Dim("--")
	}
	return domain.Truncate(title, 48)
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s %v\n", Dim(k+":"), details[k])
	}
	return b.String()
}
