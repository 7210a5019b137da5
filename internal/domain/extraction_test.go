package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScored_UnmarshalNullValue(t *testing.T) {
	var s Scored[string]
	require.NoError(t, json.Unmarshal([]byte(`{"value": null, "confidence": 1.0}`), &s))

	_, ok := s.Get()
	assert.False(t, ok)
	assert.Equal(t, "fallback", s.Or("fallback"))
	assert.Equal(t, 1.0, s.Confidence)
}

func TestScored_UnmarshalValue(t *testing.T) {
	var s Scored[string]
	require.NoError(t, json.Unmarshal([]byte(`{"value": "2024-974", "confidence": 0.9}`), &s))

	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "2024-974", v)
}

func TestExtraction_CandidatesFoldsCalendarItems(t *testing.T) {
	ex := Extraction{
		Tasks: []TaskCandidate{{Title: NewScored("Respond to discovery", 0.95)}},
		CalendarItems: []CalendarCandidate{{
			Title:     NewScored("Compliance conference", 0.85),
			EventDate: NewScored("2025-12-01", 0.9),
			Rationale: "Conference scheduled for Dec 1",
		}},
	}

	got := ex.Candidates()
	require.Len(t, got, 2)
	assert.Equal(t, "Respond to discovery", got[0].Title.Or(""))

	cal := got[1]
	assert.Equal(t, "[CALENDAR] Compliance conference", cal.Title.Or(""))
	assert.Equal(t, 0.85, cal.Title.Confidence)
	assert.Equal(t, "2025-12-01", cal.DueDate.Or(""))
	assert.Equal(t, "P1", cal.Priority.Or(""))
	assert.Equal(t, "Conference scheduled for Dec 1", cal.Rationale)
}

func TestCalendarCandidate_AsTaskDefaultsMissingTitle(t *testing.T) {
	task := CalendarCandidate{}.AsTask()
	assert.Equal(t, "[CALENDAR] Event", task.Title.Or(""))
	assert.Equal(t, 0.8, task.Title.Confidence)
	_, hasDue := task.DueDate.Get()
	assert.False(t, hasDue)
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityP0, ParsePriority("P0"))
	assert.Equal(t, PriorityP3, ParsePriority("P3"))
	assert.Equal(t, PriorityP2, ParsePriority("urgent"))
	assert.Equal(t, PriorityP2, ParsePriority(""))
	assert.Equal(t, 1, PriorityP1.Rank())
}

func TestParseDate(t *testing.T) {
	d := ParseDate("2025-12-30")
	require.NotNil(t, d)
	assert.Equal(t, "2025-12-30", d.Format(DateLayout))
	assert.Nil(t, ParseDate("December 30"))
	assert.Nil(t, ParseDate(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
