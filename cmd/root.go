package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/KaramelBytes/tuyere-cli/internal/config"
	"github.com/KaramelBytes/tuyere-cli/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string
	flagDataDir   string
	flagOutDir    string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger carries operational events; user-facing results go to stdout
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tuyere",
	Short: "Tuyere CLI: regression and correlation analysis of tuyere stress/strain simulations",
	Long: `Tuyere loads simulation results per fuel and injection rate, fits boosted-tree
regressors for strain and stress, and computes high-stress correlation matrices
with feature-importance and heatmap plots.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tuyere/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding {fuel}_{rate} files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutDir, "out-dir", "", "directory for matrices, plots and summaries (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("out-dir") && flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// requireConfig returns the loaded configuration, loading it again to surface
// the error when startup loading failed.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
