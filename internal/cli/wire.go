package cli

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/config"
	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/extraction"
	"github.com/alexanderramin/docket/internal/gate"
	"github.com/alexanderramin/docket/internal/gtasks"
	"github.com/alexanderramin/docket/internal/llm"
	"github.com/alexanderramin/docket/internal/mailhook"
	"github.com/alexanderramin/docket/internal/notion"
	"github.com/alexanderramin/docket/internal/reconcile"
	"github.com/alexanderramin/docket/internal/repository"
	"github.com/alexanderramin/docket/internal/server"
	"github.com/alexanderramin/docket/internal/supabase"
)

// StoreOpener opens the audit, receipt and mapping store. The returned
// close func is never nil.
type StoreOpener func(cfg config.Config, logger *log.Logger) (repository.Store, func() error, error)

// OpenStore opens the backend named by cfg.Store.Kind.
func OpenStore(cfg config.Config, logger *log.Logger) (repository.Store, func() error, error) {
	switch cfg.Store.Kind {
	case config.StoreSupabase:
		client := supabase.NewClient(supabase.Config{
			URL:     cfg.Supabase.URL,
			Key:     cfg.Supabase.Key,
			Timeout: cfg.HTTPTimeout,
		}, logger)
		return client, func() error { return nil }, nil
	case config.StoreSQLite:
		database, err := db.OpenDB(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteStore(database), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}
}

// BuildServer assembles the reconciler and its collaborators behind the
// webhook server.
func BuildServer(ctx context.Context, cfg config.Config, store repository.Store, logger *log.Logger, version string) (*echo.Echo, error) {
	notionCfg := notion.DefaultConfig()
	notionCfg.APIKey = cfg.Notion.APIKey
	notionCfg.TasksDatabaseID = cfg.Notion.TasksDatabaseID
	notionCfg.MattersDatabaseID = cfg.Notion.MattersDatabaseID
	notionCfg.Timeout = cfg.HTTPTimeout
	board := notion.NewClient(notionCfg, logger)

	tasksCfg := cfg.Tasks
	tasksCfg.Timeout = cfg.HTTPTimeout
	srv, err := gtasks.NewService(ctx, tasksCfg)
	if err != nil {
		return nil, err
	}
	taskManager := gtasks.NewClient(srv, tasksCfg.DefaultList, logger)

	var gateOpts []gate.Option
	var rc *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		rc = redis.NewClient(opts)
		gateOpts = append(gateOpts, gate.WithCache(gate.NewRedisCache(rc, cfg.Redis.Prefix, cfg.Redis.TTL)))
	}
	g := gate.New(store, logger, gateOpts...)

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	extractor := extraction.NewService(llm.NewAnthropicClient(cfg.LLM, observer), logger,
		extraction.WithMaxAttachmentBytes(cfg.Extraction.MaxAttachmentBytes),
	)

	r := reconcile.NewReconciler(reconcile.Deps{
		Board:     board,
		Tasks:     taskManager,
		Directory: board,
		Extractor: extractor,
		Receipts:  store,
		Mappings:  store,
	}, g, logger,
		reconcile.WithSourceURL(notion.SourceEmailURL),
		reconcile.WithMatterNotes(cfg.Reconcile.MatterNotes),
	)

	e := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Secret:    cfg.Server.Secret,
		BodyLimit: cfg.Server.BodyLimit,
		Service:   "docket",
		Version:   version,
	}, r, mailhook.NewParser(cfg.Server.SignatureMarkers...), logger)
	if rc != nil {
		e.Server.RegisterOnShutdown(func() { _ = rc.Close() })
	}
	return e, nil
}
