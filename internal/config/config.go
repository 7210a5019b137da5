// Package config assembles the service configuration from DOCKET_*
// environment variables layered over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/docket/internal/extraction"
	"github.com/alexanderramin/docket/internal/gtasks"
	"github.com/alexanderramin/docket/internal/llm"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StoreSupabase = "supabase"
)

// DefaultHTTPTimeout applies to every outbound REST client.
const DefaultHTTPTimeout = 15 * time.Second

type ServerConfig struct {
	Addr      string
	Secret    string
	BodyLimit string

	// SignatureMarkers open the forwarder's signature. User notes end at the
	// first one, or at a horizontal rule.
	SignatureMarkers []string
}

type StoreConfig struct {
	Kind string
	Path string
}

type NotionConfig struct {
	APIKey            string
	TasksDatabaseID   string
	MattersDatabaseID string
}

type SupabaseConfig struct {
	URL string
	Key string
}

type RedisConfig struct {
	URL    string
	Prefix string
	TTL    time.Duration
}

type ExtractionConfig struct {
	// MaxAttachmentBytes caps the attachment text sent to the model.
	MaxAttachmentBytes int
}

type ReconcileConfig struct {
	// MatterNotes appends an activity line to the matter on promotion and
	// completion.
	MatterNotes bool
}

// Config is the full service configuration.
type Config struct {
	Debug       bool
	HTTPTimeout time.Duration

	Server     ServerConfig
	Store      StoreConfig
	Notion     NotionConfig
	Supabase   SupabaseConfig
	LLM        llm.LLMConfig
	Tasks      gtasks.Config
	Redis      RedisConfig
	Extraction ExtractionConfig
	Reconcile  ReconcileConfig
}

// Default returns the configuration used when no environment is set.
// The SQLite store lives under ~/.docket.
func Default() Config {
	path := "docket.db"
	if home, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(home, ".docket", "docket.db")
	}
	return Config{
		HTTPTimeout: DefaultHTTPTimeout,
		Server: ServerConfig{
			Addr:      ":8080",
			BodyLimit: "25M",
		},
		Store: StoreConfig{Kind: StoreSQLite, Path: path},
		LLM:   llm.DefaultConfig(),
		Tasks: gtasks.Config{DefaultList: "@default"},
		Redis: RedisConfig{Prefix: "docket:gate:", TTL: 7 * 24 * time.Hour},
		Extraction: ExtractionConfig{
			MaxAttachmentBytes: extraction.DefaultMaxAttachmentBytes,
		},
		Reconcile: ReconcileConfig{
			MatterNotes: true,
		},
	}
}

// Load reads the environment over Default.
func Load() Config {
	cfg := Default()
	cfg.LLM = llm.LoadConfig()

	cfg.Debug = envBool("DOCKET_DEBUG", cfg.Debug)
	cfg.HTTPTimeout = envDuration("DOCKET_HTTP_TIMEOUT", cfg.HTTPTimeout)

	cfg.Server.Addr = envString("DOCKET_ADDR", cfg.Server.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCKET_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Server.Secret = envString("DOCKET_WEBHOOK_SECRET", cfg.Server.Secret)
	cfg.Server.BodyLimit = envString("DOCKET_BODY_LIMIT", cfg.Server.BodyLimit)
	cfg.Server.SignatureMarkers = envList("DOCKET_SIGNATURE_MARKERS", cfg.Server.SignatureMarkers)

	cfg.Store.Kind = strings.ToLower(envString("DOCKET_STORE", cfg.Store.Kind))
	cfg.Store.Path = envString("DOCKET_DB", cfg.Store.Path)

	cfg.Notion.APIKey = envString("NOTION_API_KEY", cfg.Notion.APIKey)
	cfg.Notion.APIKey = envString("DOCKET_NOTION_API_KEY", cfg.Notion.APIKey)
	cfg.Notion.TasksDatabaseID = envString("DOCKET_NOTION_TASKS_DB", cfg.Notion.TasksDatabaseID)
	cfg.Notion.MattersDatabaseID = envString("DOCKET_NOTION_MATTERS_DB", cfg.Notion.MattersDatabaseID)

	cfg.Supabase.URL = envString("DOCKET_SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.Key = envString("DOCKET_SUPABASE_KEY", cfg.Supabase.Key)

	cfg.Tasks.CredentialsFile = envString("DOCKET_GTASKS_CREDENTIALS", cfg.Tasks.CredentialsFile)
	cfg.Tasks.RefreshToken = envString("DOCKET_GTASKS_REFRESH_TOKEN", cfg.Tasks.RefreshToken)
	cfg.Tasks.DefaultList = envString("DOCKET_GTASKS_DEFAULT_LIST", cfg.Tasks.DefaultList)
	cfg.Tasks.Endpoint = envString("DOCKET_GTASKS_ENDPOINT", cfg.Tasks.Endpoint)

	cfg.Redis.URL = envString("DOCKET_REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Prefix = envString("DOCKET_REDIS_PREFIX", cfg.Redis.Prefix)
	cfg.Redis.TTL = envDuration("DOCKET_REDIS_TTL", cfg.Redis.TTL)

	cfg.Extraction.MaxAttachmentBytes = envInt("DOCKET_MAX_ATTACHMENT_BYTES", cfg.Extraction.MaxAttachmentBytes)

	cfg.Reconcile.MatterNotes = envBool("DOCKET_MATTER_NOTES", cfg.Reconcile.MatterNotes)

	cfg.Tasks.Timeout = cfg.HTTPTimeout
	return cfg
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("sqlite store requires DOCKET_DB"))
		}
	case StoreSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			errs = append(errs, errors.New("supabase store requires DOCKET_SUPABASE_URL and DOCKET_SUPABASE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want %s or %s)", c.Store.Kind, StoreSQLite, StoreSupabase))
	}
	if c.Notion.APIKey == "" {
		errs = append(errs, errors.New("notion api key is not configured"))
	}
	if c.Notion.TasksDatabaseID == "" || c.Notion.MattersDatabaseID == "" {
		errs = append(errs, errors.New("notion tasks and matters database ids are required"))
	}
	if c.Tasks.CredentialsFile == "" || c.Tasks.RefreshToken == "" {
		errs = append(errs, errors.New("google tasks credentials and refresh token are required"))
	}
	if c.Extraction.MaxAttachmentBytes <= 0 {
		errs = append(errs, errors.New("max attachment bytes must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	return errors.Join(errs...)
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envList splits a comma-separated value, dropping blank entries.
func envList(name string, fallback []string) []string {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(name string, fallback bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envDuration accepts Go durations ("30s") or a bare number of seconds.
func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
