package fingerprint

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle applies NFKC, lowercases, drops every rune that is not a
// letter, digit or space, and collapses runs of whitespace. Composed and
// decomposed spellings of the same title normalize identically.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(norm.NFKC.String(title)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var (
	replyPrefixPattern  = regexp.MustCompile(`(?i)^((re:|fw:|fwd:)\s*)+`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
	subjectStripPattern = regexp.MustCompile(`[^a-z0-9\s\-_]`)
)

// NormalizeSubject canonicalizes an email subject for the receipt record:
// lowercase, no reply/forward prefixes, collapsed whitespace, and only
// [a-z0-9 _-] kept.
func NormalizeSubject(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	s = replyPrefixPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return subjectStripPattern.ReplaceAllString(s, "")
}

// receivedLayouts is tried in order against the stated receipt time.
var receivedLayouts = []string{
	"Monday, January 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseReceivedAt parses the message's stated receipt time. When no layout
// matches it returns now and false: such messages cannot be deduplicated
// across retries and are treated as a first occurrence.
func ParseReceivedAt(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, false
	}
	for _, layout := range receivedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return now, false
}
