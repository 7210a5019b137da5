// Package matter attaches tasks to legal-matter records, creating a stub
// matter when extracted metadata names a case the directory does not know.
package matter

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/domain"
)

// Directory is the matter store the resolver reads and writes.
type Directory interface {
	FindMatterByName(ctx context.Context, name string) (*domain.Matter, error)
	FindMatterByNameContains(ctx context.Context, fragment string) (*domain.Matter, error)
	FindMatterByIndex(ctx context.Context, index string) (*domain.Matter, error)
	CreateMatter(ctx context.Context, m domain.Matter) (*domain.Matter, error)
}

// Resolution is the result of Resolve. Matter is nil when no matter could be
// attached.
type Resolution struct {
	Matter      *domain.Matter
	CreatedStub bool
}

// MatterID returns the resolved id or "".
func (r Resolution) MatterID() string {
	if r.Matter == nil {
		return ""
	}
	return r.Matter.ID
}

// Resolver finds or stubs the matter for extracted (index number, caption).
type Resolver struct {
	dir    Directory
	logger *log.Logger
}

// NewResolver creates a Resolver that looks matters up in, and stubs them into, dir.
func NewResolver(dir Directory, logger *log.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger}
}

// Resolve runs the lookup strategies in order: case name (exact, then
// contains), then index number. When nothing matches and there is a caption
// or index number, it re-checks the index and creates a Pending stub.
//
// Directory errors never escape. If any lookup failed the resolver returns no
// matter instead of creating a stub it cannot prove is new; the task is then
// routed to review.
func (r *Resolver) Resolve(ctx context.Context, indexNumber, caption string) Resolution {
	indexNumber = strings.TrimSpace(indexNumber)
	caption = strings.TrimSpace(caption)
	caseName := CaseName(caption)
	fields := log.Fields{"index_number": indexNumber, "case_name": caseName}

	type lookup struct {
		what string
		arg  string
		find func(context.Context, string) (*domain.Matter, error)
	}
	var lookups []lookup
	if caseName != "" {
		lookups = append(lookups,
			lookup{"name", caseName, r.dir.FindMatterByName},
			lookup{"name fragment", caseName, r.dir.FindMatterByNameContains})
	}
	if indexNumber != "" {
		lookups = append(lookups, lookup{"index", indexNumber, r.dir.FindMatterByIndex})
	}

	lookupFailed := false
	for _, l := range lookups {
		m, err := l.find(ctx, l.arg)
		if err != nil {
			lookupFailed = true
			r.logger.WithFields(fields).WithError(err).Warnf("matter lookup by %s failed", l.what)
			continue
		}
		if m != nil {
			return Resolution{Matter: m}
		}
	}

	if caption == "" && indexNumber == "" {
		return Resolution{}
	}
	if lookupFailed {
		r.logger.WithFields(fields).Warn("skipping stub creation after failed lookup")
		return Resolution{}
	}

	// Another delivery may have created the matter since the lookup above.
	if indexNumber != "" {
		m, err := r.dir.FindMatterByIndex(ctx, indexNumber)
		if err != nil {
			r.logger.WithFields(fields).WithError(err).Warn("matter re-check failed, skipping stub creation")
			return Resolution{}
		}
		if m != nil {
			return Resolution{Matter: m}
		}
	}

	stub := domain.Matter{
		CaseName:    domain.CoalesceStr(caseName, caption, domain.UnknownMatterName),
		IndexNumber: indexNumber,
		Caption:     caption,
		Status:      domain.MatterPending,
	}
	created, err := r.dir.CreateMatter(ctx, stub)
	if err != nil || created == nil {
		r.logger.WithFields(fields).WithError(err).Error("stub matter creation failed")
		return Resolution{}
	}
	r.logger.WithFields(log.Fields{
		"matter_id":    created.ID,
		"case_name":    created.CaseName,
		"index_number": indexNumber,
	}).Info("created stub matter")
	return Resolution{Matter: created, CreatedStub: true}
}

var partySplit = regexp.MustCompile(`(?i)\s+vs?\.?\s+`)

// CaseName derives a case name from a caption of the form "A v. B" by taking
// the first party. Captions without a "v." separator are returned trimmed.
func CaseName(caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return ""
	}
	first := caption
	if parts := partySplit.Split(caption, 2); len(parts) == 2 {
		first = parts[0]
	}
	return strings.TrimFunc(first, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
