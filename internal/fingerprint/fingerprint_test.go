package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = `^[0-9a-f]{64}$`

func TestMessage_StableDigestForScenario(t *testing.T) {
	received, ok := ParseReceivedAt("2025-01-01T10:00:00Z", time.Now())
	require.True(t, ok)

	fp := Message("m1", "a@x.com", received)
	assert.Regexp(t, hexDigest, fp)
	assert.Equal(t, fp, Message("m1", "a@x.com", received))
	// sha256("m1a@x.com1735725600")
	assert.Equal(t, digest("m1a@x.com1735725600"), fp)
}

func TestMessage_EachInputChangesDigest(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	base := Message("m1", "a@x.com", ts)

	assert.NotEqual(t, base, Message("m2", "a@x.com", ts))
	assert.NotEqual(t, base, Message("m1", "b@x.com", ts))
	assert.NotEqual(t, base, Message("m1", "a@x.com", ts.Add(time.Second)))
}

func TestMessage_SubSecondDifferenceIgnored(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, Message("m1", "a@x.com", ts), Message("m1", "a@x.com", ts.Add(300*time.Millisecond)))
}

func TestContent_UsesSentinels(t *testing.T) {
	assert.Equal(t,
		digest("file answer|no-date|no-matter"),
		Content("File Answer!", "", ""))
	assert.Equal(t,
		digest("file answer|2025-12-30|matter-1"),
		Content("file   answer", "2025-12-30", "matter-1"))
}

func TestContent_TitleNormalizationCollapsesVariants(t *testing.T) {
	a := Content("Respond to Discovery Demands.", "2025-12-30", "m")
	b := Content("  respond to discovery  demands ", "2025-12-30", "m")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, Content("Respond to Discovery Demands", "2025-12-31", "m"))
	assert.NotEqual(t, a, Content("Respond to Discovery Demands", "2025-12-30", "other"))
}

func TestContent_ComposedAndDecomposedTitlesMatch(t *testing.T) {
	composed := "Serve Caf\u00e9 filing"
	decomposed := "Serve Cafe\u0301 filing"
	require.NotEqual(t, composed, decomposed)

	assert.Equal(t, "serve café filing", NormalizeTitle(composed))
	assert.Equal(t, NormalizeTitle(composed), NormalizeTitle(decomposed))
	assert.Equal(t, Content(composed, "2025-12-30", "m"), Content(decomposed, "2025-12-30", "m"))
}

func TestContent_SentinelDiffersFromEmptyPromotionEncoding(t *testing.T) {
	assert.NotEqual(t, Content("x", "", ""), Promotion("", "x", "", ""))
}

func TestPromotion_DependsOnEveryComponent(t *testing.T) {
	base := Promotion("page-1", "Draft reply", "2025-12-30", "proj-1")
	assert.Regexp(t, hexDigest, base)
	assert.Equal(t, base, Promotion("page-1", "draft reply.", "2025-12-30", "proj-1"))

	assert.NotEqual(t, base, Promotion("page-2", "Draft reply", "2025-12-30", "proj-1"))
	assert.NotEqual(t, base, Promotion("page-1", "Draft answer", "2025-12-30", "proj-1"))
	assert.NotEqual(t, base, Promotion("page-1", "Draft reply", "", "proj-1"))
	assert.NotEqual(t, base, Promotion("page-1", "Draft reply", "2025-12-30", ""))
}

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"Respond to Discovery!":      "respond to discovery",
		"  CPLR 3212 § MSJ  filing ": "cplr 3212 msj filing",
		"Walker v. Metro-Ten":        "walker v metroten",
		"":                           "",
		"Año\tnuevo":                 "año nuevo",
		"ＭＳＪ ﬁling":                  "msj filing",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTitle(in), "input=%q", in)
	}
}

func TestNormalizeSubject(t *testing.T) {
	assert.Equal(t, "walker v metro ten - discovery", NormalizeSubject("RE: Fwd: Walker v. Metro Ten - Discovery"))
	assert.Equal(t, "status_update", NormalizeSubject("  fw:   Status_Update!! "))
}

func TestParseReceivedAt_KnownLayouts(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Sunday, November 30, 2025 10:30 AM", time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC)},
		{"November 30, 2025 10:30 AM", time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC)},
		{"2025-11-30T10:30:00.123456Z", time.Date(2025, 11, 30, 10, 30, 0, 123456000, time.UTC)},
		{"2025-11-30T10:30:00Z", time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC)},
		{"Sun, 30 Nov 2025 10:30:00 +0000", time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := ParseReceivedAt(tc.in, now)
		require.True(t, ok, "input=%q", tc.in)
		assert.True(t, tc.want.Equal(got), "input=%q got=%s", tc.in, got)
	}
}

func TestParseReceivedAt_FallsBackToNow(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ParseReceivedAt("yesterday-ish", now)
	assert.False(t, ok)
	assert.Equal(t, now, got)

	got, ok = ParseReceivedAt("", now)
	assert.False(t, ok)
	assert.Equal(t, now, got)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", Short("abc"))
	assert.Len(t, Short(Content("x", "", "")), 16)
}
