package formatter

import (
	"fmt"
	"strings"
)

// Field is one labelled input to a fingerprint.
type Field struct {
	Label string
	Value string
}

// FormatFingerprint shows the inputs of a fingerprint and the full digest.
func FormatFingerprint(kind string, inputs []Field, digest string) string {
	var b strings.Builder
	width := 0
	for _, f := range inputs {
		width = max(width, len(f.Label))
	}
	for _, f := range inputs {
		value := f.Value
		if value == "" {
			value = Dim("(empty)")
		}
		fmt.Fprintf(&b, "%s  %s\n", Dim(fmt.Sprintf("%-*s", width, f.Label)), value)
	}
	b.WriteString("\n")
	b.WriteString(Bold(digest))
	return RenderBox(kind+" fingerprint", b.String())
}
