package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archguard/internal/finding"
	"archguard/internal/validation"
	"archguard/internal/watch"
)

var (
	watchAuthor  string
	watchInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-validate files as they change",
	Long: `Watches a directory tree (default: the workspace) and validates each source
file once its changes settle for the configured debounce period. Findings are
printed as they arrive. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchAuthor, "author", "", "Apply team overrides for this member")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Validate every file once before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := workspace
	if len(args) == 1 {
		dir = resolvePath(args[0])
	}
	if dir == "" {
		dir = "."
	}

	p, err := loadPolicy()
	if err != nil {
		return err
	}
	engine, err := validation.New(p.ForMember(watchAuthor))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	handler := func(_ context.Context, name string, findings []finding.Finding) {
		if len(findings) == 0 {
			fmt.Fprintf(out, "%s: clean\n", name)
			return
		}
		fmt.Fprintf(out, "%s: %d findings\n", name, len(findings))
		for _, f := range findings {
			fmt.Fprintf(out, "  [%s] %s - %s\n", f.Severity, f.Location(), f.Description)
		}
	}

	w, err := watch.New(dir, engine, handler,
		watch.WithDebounce(cfg.GetWatchDebounce()),
		watch.WithExtensions(cfg.Watch.Extensions),
		watch.WithMaxFileSize(cfg.MaxFileSizeBytes()),
	)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchInitial {
		if err := w.TriggerValidation(ctx); err != nil {
			return err
		}
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching for changes", zap.String("dir", dir), zap.Duration("debounce", cfg.GetWatchDebounce()))

	<-w.Done()
	stats := w.GetStats()
	logger.Info("watch finished",
		zap.Int("validations", stats.Validations),
		zap.Int("findings", stats.Findings),
		zap.Int("errors", stats.Errors))
	return nil
}
