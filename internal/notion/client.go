// Package notion is the task board and matter directory client. Tasks and
// matters live in two Notion databases; the client reads and writes them
// through the public REST API.
package notion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"

	// maxRichText is Notion's per-object rich text limit.
	maxRichText = 2000
)

var (
	// ErrNotFound is returned when a page does not exist.
	ErrNotFound = errors.New("notion page not found")
	// ErrNoPageID is returned when a create call succeeds without an id.
	ErrNoPageID = errors.New("notion response carried no page id")
)

// Config configures the client.
type Config struct {
	APIKey            string
	BaseURL           string
	Version           string
	TasksDatabaseID   string
	MattersDatabaseID string
	Timeout           time.Duration
	TaskProps         TaskProperties
	MatterProps       MatterProperties
}

// DefaultConfig returns a Config with the production property layout.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Version:     DefaultVersion,
		Timeout:     15 * time.Second,
		TaskProps:   DefaultTaskProperties(),
		MatterProps: DefaultMatterProperties(),
	}
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the Notion REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", c.cfg.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = sonic.ConfigStd.Unmarshal(respBody, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", ErrNotFound, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type queryResponse struct {
	Results []page `json:"results"`
}

// queryOne runs a database query and returns the first result, or nil.
func (c *Client) queryOne(ctx context.Context, databaseID string, filter map[string]any) (*page, error) {
	body := map[string]any{"filter": filter, "page_size": 1}
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

func (c *Client) createPage(ctx context.Context, databaseID string, props map[string]any) (*page, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": props,
	}
	var p page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, ErrNoPageID
	}
	return &p, nil
}

// getPage returns nil, nil when the page does not exist.
func (c *Client) getPage(ctx context.Context, pageID string) (*page, error) {
	var p page
	err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &p)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) updatePage(ctx context.Context, pageID string, props map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, map[string]any{"properties": props}, nil)
}
