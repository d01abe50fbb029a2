// Package cli implements the brmreport command line.
package cli

import (
	"context"

	"github.com/JonMunkholm/BRMReports/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the brmreport command tree.
func NewRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "brmreport",
		Short: "Split beneficiary reports into per-BRM workbooks",
		Long: `brmreport normalizes an Excel or CSV report, renders a consolidated
workbook plus one workbook per relationship manager, and bundles them
into a zip archive.

Settings are read from the same environment variables as the server;
flags override them for a single run.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so the archive can be streamed to stdout.
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newSchemasCmd())
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
