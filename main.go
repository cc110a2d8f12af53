// path: main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/config"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reliefhub",
	Short: "Disaster relief coordination API",
	Long: `reliefhub serves the aid request API: citizens file requests,
volunteers claim and complete them, administrators oversee the lifecycle.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print request statistics as JSON",
	Long: `Without dates, prints the totals over every request.
With --start and --end (MM/DD/YYYY), prints the period compared with the
same window one week earlier.`,
	RunE: runStats,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	statsCmd.Flags().StringVar(&statsStart, "start", "", "Period start date")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "Period end date")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "json", "Output format: json or yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug || level == "debug" {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if lvl, err := zapcore.ParseLevel(level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
