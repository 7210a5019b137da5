// Package server exposes the reconciler over HTTP webhooks.
package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/alexanderramin/docket/internal/mailhook"
	"github.com/alexanderramin/docket/internal/reconcile"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Docket-Secret"

// Config configures the webhook server.
type Config struct {
	Addr      string
	Secret    string
	BodyLimit string
	Service   string
	Version   string
}

// New builds the echo instance with middleware and routes registered.
func New(cfg Config, r reconcile.Reconciler, parser *mailhook.Parser, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(requestLogger(logger))

	Register(e, cfg, r, parser, logger)
	return e
}

// Register wires the webhook and health routes on e.
func Register(e *echo.Echo, cfg Config, r reconcile.Reconciler, parser *mailhook.Parser, logger *log.Logger) {
	h := &handlers{reconciler: r, parser: parser, logger: logger, cfg: cfg}

	hooks := e.Group("", requireSecret(cfg.Secret))
	hooks.POST("/webhook", h.email)
	hooks.POST("/webhooks/email", h.email)
	hooks.POST("/webhooks/approval", h.approval)
	hooks.POST("/webhooks/completion", h.completion)
	hooks.POST("/webhooks/task-added", h.taskAdded)

	e.GET("/health", h.health)
	e.GET("/", h.root)
}

// requireSecret rejects requests without the shared secret. An empty
// secret disables the check.
func requireSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}
			got := c.Request().Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid webhook secret"})
			}
			return next(c)
		}
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			entry := logger.WithFields(log.Fields{
				"method":      req.Method,
				"path":        req.URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			})
			if c.Response().Status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Debug("request")
			}
			return nil
		}
	}
}
