// Command archguard validates source files against a configurable
// architectural policy.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archguard/internal/config"
	"archguard/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	policyFlag string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "archguard",
	Short: "archguard - architectural principle validation",
	Long: `archguard checks source files against a policy of clean-code, SOLID, DDD,
security and performance rules and decides whether a change can be approved.

The policy lives in .archguard/policy.yaml by default; run "archguard policy init"
to write the stock policy there.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(resolvePath(configPath))
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		opts := cfg.Logging.Options()
		if verbose {
			opts.Level = "debug"
		}
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.Root()
		logger.Debug("configuration loaded",
			zap.String("policy", policyPath()),
			zap.String("database", resolvePath(cfg.DatabasePath)),
			zap.Int("concurrency", cfg.Concurrency))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(".archguard", "config.yaml"), "Application config file")
	rootCmd.PersistentFlags().StringVarP(&policyFlag, "policy", "p", "", "Policy file (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolvePath anchors relative paths at the workspace.
func resolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) || workspace == "" {
		return path
	}
	return filepath.Join(workspace, path)
}

func policyPath() string {
	if policyFlag != "" {
		return resolvePath(policyFlag)
	}
	return resolvePath(cfg.PolicyPath)
}
