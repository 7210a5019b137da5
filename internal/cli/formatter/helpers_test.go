package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"just now", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-50 * time.Hour), "2d ago"},
		{"two weeks", now.Add(-20 * 24 * time.Hour), "Nov 11, 2025"},
		{"future", now.Add(2 * time.Hour), "Dec 1, 2025 14:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(tt.input, now))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Contains(t, ShortID("0123456789abcdef"), "01234567")
	assert.NotContains(t, ShortID("0123456789abcdef"), "89")
	assert.Contains(t, ShortID("abc"), "abc")
}

func TestRenderBox(t *testing.T) {
	result := RenderBox("title", "content here")
	assert.Contains(t, result, "TITLE")
	assert.Contains(t, result, "content here")
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")

	assert.Contains(t, RenderBox("", "just content"), "just content")
}

func TestRenderTable_Aligns(t *testing.T) {
	out := RenderTable([]string{"A", "LONG HEADER"}, [][]string{{"wide cell", "x"}, {"y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "LONG HEADER")
	assert.Equal(t, len("wide cell")+colGap, strings.Index(lines[2], "x"))
	assert.Equal(t, "y", strings.TrimSpace(lines[3]))
	assert.Empty(t, RenderTable(nil, nil))
}
