package repository

import (
	"time"

	"github.com/bytedance/sonic"
)

// timeLayout is the encoding for every timestamp column.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// parseTime returns the zero time for malformed values.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	return sonic.ConfigStd.MarshalToString(v)
}

func decodeJSON[T any](s string) (T, error) {
	var out T
	if s == "" {
		return out, nil
	}
	err := sonic.ConfigStd.UnmarshalFromString(s, &out)
	return out, err
}
