package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
)

func newAuditCmd(app *App) *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "audit <identity>",
		Short: "Show the audit trail recorded for a fingerprint or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if store != "" {
				cfg.Store.Kind = store
			}
			st, closeStore, err := app.OpenStore(cfg, app.Logger)
			if err != nil {
				return err
			}
			defer closeStore()

			events, err := st.ListByIdentity(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("listing audit events: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAuditTrail(args[0], events, app.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "Store backend: sqlite or supabase (overrides DOCKET_STORE)")

	return cmd
}
