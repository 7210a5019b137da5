package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Sentinels keep the content fingerprint total when a component is missing.
const (
	NoDate   = "no-date"
	NoMatter = "no-matter"
)

// fieldSeparator joins content and promotion components so that adjacent
// fields cannot bleed into each other.
const fieldSeparator = "|"

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Message computes the message fingerprint:
// sha256(replyReferenceID + sender + unixSeconds).
//
// The components are concatenated without a separator so digests match the
// receipts already stored by earlier intake deployments.
func Message(replyReferenceID, sender string, receivedAt time.Time) string {
	return digest(replyReferenceID + sender + strconv.FormatInt(receivedAt.Unix(), 10))
}

// Content computes the content fingerprint of a task:
// sha256(normalizedTitle | dueDate-or-"no-date" | matterID-or-"no-matter").
func Content(title, dueDate, matterID string) string {
	if dueDate == "" {
		dueDate = NoDate
	}
	if matterID == "" {
		matterID = NoMatter
	}
	return digest(strings.Join([]string{NormalizeTitle(title), dueDate, matterID}, fieldSeparator))
}

// Promotion computes the promotion key:
// sha256(pageID | normalizedTitle | dueDate | projectID), with empty strings
// for a missing due date or project.
func Promotion(pageID, title, dueDate, projectID string) string {
	return digest(strings.Join([]string{pageID, NormalizeTitle(title), dueDate, projectID}, fieldSeparator))
}

// Short truncates a digest for log output.
func Short(fp string) string {
	if len(fp) <= 16 {
		return fp
	}
	return fp[:16]
}
