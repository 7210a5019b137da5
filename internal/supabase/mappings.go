package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

type mappingRow struct {
	MatterID    string `json:"matter_id"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (r mappingRow) toDomain() *domain.ProjectMapping {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return &domain.ProjectMapping{
		MatterID:    r.MatterID,
		ProjectID:   r.ProjectID,
		ProjectName: r.ProjectName,
		CreatedAt:   created,
	}
}

// ProjectForMatter returns the mapping for matterID, or nil.
func (c *Client) ProjectForMatter(ctx context.Context, matterID string) (*domain.ProjectMapping, error) {
	return c.findMapping(ctx, "matter_id", matterID)
}

// MatterForProject returns the mapping for projectID, or nil.
func (c *Client) MatterForProject(ctx context.Context, projectID string) (*domain.ProjectMapping, error) {
	return c.findMapping(ctx, "project_id", projectID)
}

// SaveMapping inserts m. When either side is already mapped the existing
// row wins and is returned instead.
func (c *Client) SaveMapping(ctx context.Context, m domain.ProjectMapping) (*domain.ProjectMapping, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	row := mappingRow{
		MatterID:    m.MatterID,
		ProjectID:   m.ProjectID,
		ProjectName: m.ProjectName,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	var inserted []mappingRow
	err := c.request(ctx, http.MethodPost, tableMappings, nil,
		"resolution=ignore-duplicates,return=representation", row, &inserted)
	if err != nil {
		return nil, fmt.Errorf("save project mapping: %w", err)
	}
	if len(inserted) > 0 {
		return inserted[0].toDomain(), nil
	}

	if existing, err := c.ProjectForMatter(ctx, m.MatterID); err != nil || existing != nil {
		return existing, err
	}
	existing, err := c.MatterForProject(ctx, m.ProjectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("save project mapping: insert ignored but no conflicting row found")
	}
	return existing, nil
}

func (c *Client) findMapping(ctx context.Context, column, value string) (*domain.ProjectMapping, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(column, eq(value))
	q.Set("limit", "1")

	var rows []mappingRow
	if err := c.request(ctx, http.MethodGet, tableMappings, q, "", nil, &rows); err != nil {
		return nil, fmt.Errorf("query project mappings: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}
