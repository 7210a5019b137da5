package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/fingerprint"
)

func newFingerprintCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Compute the dedup fingerprints used by the reconciler",
	}
	cmd.AddCommand(
		newFingerprintMessageCmd(app),
		newFingerprintContentCmd(),
		newFingerprintPromotionCmd(),
	)
	return cmd
}

func newFingerprintMessageCmd(app *App) *cobra.Command {
	var messageID, sender, received string

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Fingerprint an inbound email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if messageID == "" && sender == "" {
				return fmt.Errorf("one of --message-id or --sender is required")
			}
			at, ok := fingerprint.ParseReceivedAt(received, app.Now())
			if !ok && received != "" {
				return fmt.Errorf("unrecognised received time %q", received)
			}
			digest := fingerprint.Message(messageID, sender, at)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFingerprint("message", []formatter.Field{
				{Label: "message id", Value: messageID},
				{Label: "sender", Value: sender},
				{Label: "received", Value: at.UTC().Format(time.RFC3339)},
			}, digest))
			return nil
		},
	}

	cmd.Flags().StringVar(&messageID, "message-id", "", "Reply reference or Message-ID header")
	cmd.Flags().StringVar(&sender, "sender", "", "Original sender address")
	cmd.Flags().StringVar(&received, "received", "", "Received timestamp as sent by the mail hook")

	return cmd
}

func newFingerprintContentCmd() *cobra.Command {
	var title, due, matterID string

	cmd := &cobra.Command{
		Use:   "content",
		Short: "Fingerprint a task by title, due date and matter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}
			digest := fingerprint.Content(title, due, matterID)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFingerprint("content", []formatter.Field{
				{Label: "title", Value: fingerprint.NormalizeTitle(title)},
				{Label: "due", Value: due},
				{Label: "matter", Value: matterID},
			}, digest))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&matterID, "matter", "", "Matter id")

	return cmd
}

func newFingerprintPromotionCmd() *cobra.Command {
	var pageID, title, due, projectID string

	cmd := &cobra.Command{
		Use:   "promotion",
		Short: "Fingerprint the promotion of a board task into a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageID == "" {
				return fmt.Errorf("--page-id is required")
			}
			digest := fingerprint.Promotion(pageID, title, due, projectID)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFingerprint("promotion", []formatter.Field{
				{Label: "page id", Value: pageID},
				{Label: "title", Value: fingerprint.NormalizeTitle(title)},
				{Label: "due", Value: due},
				{Label: "project", Value: projectID},
			}, digest))
			return nil
		},
	}

	cmd.Flags().StringVar(&pageID, "page-id", "", "Task board page id")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&projectID, "project", "", "Task manager project id")

	return cmd
}
