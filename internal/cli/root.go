// Package cli implements covctl, the terminal client of the covweb backend.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/covweb/internal/client"
	"github.com/me/covweb/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	api    *client.Client
)

// defaultServer returns the default server URL, checking COV_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("COV_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8500"
}

// NewRootCmd creates the root cobra command for the covctl CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "covctl",
		Short: "covctl browses COV inspections",
		Long:  "covctl lists inspected vans, events, fleet numbers and inspections still missing a video.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			api = client.New(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "covweb server URL (or COV_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newVansCmd(),
		newEventsCmd(),
		newCOVsCmd(),
		newMissingCmd(),
	)

	return root
}
