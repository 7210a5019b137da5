package cli

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/config"
)

// App holds what the commands share. Store access goes through OpenStore
// so commands that never touch storage do not open it.
type App struct {
	Config    config.Config
	Logger    *log.Logger
	Version   string
	Now       func() time.Time
	OpenStore StoreOpener
}

// NewApp wires the default store opener.
func NewApp(cfg config.Config, logger *log.Logger, version string) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Version:   version,
		Now:       time.Now,
		OpenStore: OpenStore,
	}
}

// NewRootCmd creates the top-level "docket" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "docket",
		Short:         "Legal email intake and task reconciliation",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newFingerprintCmd(app),
		newAuditCmd(app),
	)

	return root
}
