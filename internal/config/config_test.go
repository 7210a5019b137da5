package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/docket/internal/extraction"
)

func validConfig() Config {
	cfg := Default()
	cfg.Notion = NotionConfig{APIKey: "secret", TasksDatabaseID: "tasks", MattersDatabaseID: "matters"}
	cfg.Tasks.CredentialsFile = "/etc/docket/client.json"
	cfg.Tasks.RefreshToken = "refresh"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, "@default", cfg.Tasks.DefaultList)
	assert.True(t, cfg.Reconcile.MatterNotes)
	assert.Equal(t, extraction.DefaultMaxAttachmentBytes, cfg.Extraction.MaxAttachmentBytes)
	assert.Empty(t, cfg.Server.SignatureMarkers)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DOCKET_ADDR", "127.0.0.1:9000")
	t.Setenv("DOCKET_STORE", "Supabase")
	t.Setenv("DOCKET_SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("DOCKET_SUPABASE_KEY", "service-key")
	t.Setenv("DOCKET_NOTION_API_KEY", "ntn")
	t.Setenv("DOCKET_NOTION_TASKS_DB", "tdb")
	t.Setenv("DOCKET_NOTION_MATTERS_DB", "mdb")
	t.Setenv("DOCKET_HTTP_TIMEOUT", "30")
	t.Setenv("DOCKET_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DOCKET_REDIS_TTL", "48h")
	t.Setenv("DOCKET_MATTER_NOTES", "false")
	t.Setenv("DOCKET_DEBUG", "true")
	t.Setenv("DOCKET_LLM_MODEL", "test-model")
	t.Setenv("DOCKET_MAX_ATTACHMENT_BYTES", "120000")
	t.Setenv("DOCKET_SIGNATURE_MARKERS", "Best regards, , Sent from my iPhone")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, StoreSupabase, cfg.Store.Kind)
	assert.Equal(t, "https://x.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "service-key", cfg.Supabase.Key)
	assert.Equal(t, "ntn", cfg.Notion.APIKey)
	assert.Equal(t, "tdb", cfg.Notion.TasksDatabaseID)
	assert.Equal(t, "mdb", cfg.Notion.MattersDatabaseID)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.Tasks.Timeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 48*time.Hour, cfg.Redis.TTL)
	assert.False(t, cfg.Reconcile.MatterNotes)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, 120000, cfg.Extraction.MaxAttachmentBytes)
	assert.Equal(t, []string{"Best regards", "Sent from my iPhone"}, cfg.Server.SignatureMarkers)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("DOCKET_ADDR", "")
	t.Setenv("PORT", "3000")
	assert.Equal(t, ":3000", Load().Server.Addr)
}

func TestLoad_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("DOCKET_HTTP_TIMEOUT", "soon")
	t.Setenv("DOCKET_MATTER_NOTES", "maybe")
	t.Setenv("DOCKET_MAX_ATTACHMENT_BYTES", "lots")
	cfg := Load()
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, extraction.DefaultMaxAttachmentBytes, cfg.Extraction.MaxAttachmentBytes)
	assert.True(t, cfg.Reconcile.MatterNotes)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown store", func(c *Config) { c.Store.Kind = "mongo" }, `unknown store "mongo"`},
		{"sqlite path", func(c *Config) { c.Store.Path = "" }, "DOCKET_DB"},
		{"supabase credentials", func(c *Config) { c.Store.Kind = StoreSupabase }, "DOCKET_SUPABASE_URL"},
		{"notion key", func(c *Config) { c.Notion.APIKey = "" }, "notion api key"},
		{"notion databases", func(c *Config) { c.Notion.MattersDatabaseID = "" }, "database ids"},
		{"google tasks", func(c *Config) { c.Tasks.RefreshToken = "" }, "refresh token"},
		{"timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http timeout"},
		{"attachment cap", func(c *Config) { c.Extraction.MaxAttachmentBytes = 0 }, "max attachment bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Store.Kind = "nope"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
	assert.Contains(t, err.Error(), "notion api key")
	assert.Contains(t, err.Error(), "google tasks")
}
