package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexanderramin/docket/internal/domain"
)

// FindMatterByName returns the matter whose name equals name, or nil.
func (c *Client) FindMatterByName(ctx context.Context, name string) (*domain.Matter, error) {
	return c.findMatter(ctx, titleFilter(c.cfg.MatterProps.Name, "equals", name))
}

// FindMatterByNameContains returns a matter whose name contains fragment.
func (c *Client) FindMatterByNameContains(ctx context.Context, fragment string) (*domain.Matter, error) {
	return c.findMatter(ctx, titleFilter(c.cfg.MatterProps.Name, "contains", fragment))
}

// FindMatterByIndex returns a matter whose index number contains index.
func (c *Client) FindMatterByIndex(ctx context.Context, index string) (*domain.Matter, error) {
	return c.findMatter(ctx, richTextFilter(c.cfg.MatterProps.IndexNumber, "contains", index))
}

// GetMatter fetches a matter by page id, or nil when it does not exist.
func (c *Client) GetMatter(ctx context.Context, id string) (*domain.Matter, error) {
	p, err := c.getPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get matter %s: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}
	return c.toMatter(p), nil
}

// CreateMatter creates a matter page.
func (c *Client) CreateMatter(ctx context.Context, m domain.Matter) (*domain.Matter, error) {
	mp := c.cfg.MatterProps
	props := map[string]any{
		mp.Name:   titleValue(domain.CoalesceStr(m.CaseName, domain.UnknownMatterName)),
		mp.Status: selectValue(string(m.Status)),
	}
	if m.IndexNumber != "" {
		props[mp.IndexNumber] = richTextValue(m.IndexNumber)
	}
	if m.Caption != "" {
		props[mp.Caption] = richTextValue(m.Caption)
	}
	p, err := c.createPage(ctx, c.cfg.MattersDatabaseID, props)
	if err != nil {
		return nil, fmt.Errorf("create matter %q: %w", m.CaseName, err)
	}
	m.ID = p.ID
	return &m, nil
}

// AddNote appends a dated paragraph to the matter page.
func (c *Client) AddNote(ctx context.Context, matterID, note string) error {
	text := time.Now().UTC().Format(domain.DateLayout) + ": " + note
	body := map[string]any{
		"children": []any{map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []any{map[string]any{
					"type": "text",
					"text": map[string]any{"content": domain.Truncate(text, maxRichText)},
				}},
			},
		}},
	}
	if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+matterID+"/children", body, nil); err != nil {
		return fmt.Errorf("add matter note: %w", err)
	}
	c.logger.WithField("matter_id", matterID).Debug("added matter note")
	return nil
}

func (c *Client) findMatter(ctx context.Context, filter map[string]any) (*domain.Matter, error) {
	p, err := c.queryOne(ctx, c.cfg.MattersDatabaseID, filter)
	if err != nil {
		c.logger.WithError(err).Debug("matter query failed")
		return nil, fmt.Errorf("query matters: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return c.toMatter(p), nil
}

func (c *Client) toMatter(p *page) *domain.Matter {
	mp := c.cfg.MatterProps
	return &domain.Matter{
		ID:          p.ID,
		CaseName:    p.text(mp.Name),
		IndexNumber: p.text(mp.IndexNumber),
		Caption:     p.text(mp.Caption),
		Status:      domain.MatterStatus(p.text(mp.Status)),
	}
}
