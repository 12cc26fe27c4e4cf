// Package commands implements cmppctl's cobra command tree.
package commands

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Ucell-first/cmpp30/cmpp/config"
	cmpplog "github.com/Ucell-first/cmpp30/cmpp/log"
	cmppmetrics "github.com/Ucell-first/cmpp30/cmpp/metrics"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "cmppctl",
	Short:         "Operate a CMPP 3.0 gateway session",
	Long:          `cmppctl drives a session.Client against a CMPP 3.0 gateway: connect and hold the link, send a single message, or watch inbound DELIVER traffic.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command; its subcommands are registered in init.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug-ish verbosity (info level; no separate debug tier)")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(watchCmd)
}

// newLogger returns a process-wide logger writing to stderr, so stdout
// stays free for command output (send's message ids, watch's frames).
func newLogger() cmpplog.Logger {
	return cmpplog.New(os.Stderr)
}

// newMetrics returns Metrics registered against a fresh registry; cmppctl
// is a one-shot/foreground tool, so there is no /metrics endpoint, only the
// collectors themselves for WithMetrics wiring symmetry with a long-running
// service.
func newMetrics() cmppmetrics.Metrics {
	return cmppmetrics.New(prometheus.NewRegistry(), "cmppctl")
}

func loadConfig() (config.Config, error) {
	return config.Load()
}
