package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"archguard/internal/store"
)

var (
	historyLimit     int
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded review runs",
	Long:  `Lists runs saved with "archguard validate --save", newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the findings of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete runs older than --older-than",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPurge,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	historyPurgeCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Age of runs to delete")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPurgeCmd)
}

func openStore() (*store.Store, error) {
	return store.Open(resolvePath(cfg.DatabasePath))
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No review runs recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("RUN", "STARTED", "AUTHOR", "FILES", "SCORE", "DECISION", "C/H/M/L/I")
	for _, r := range runs {
		author := r.Author
		if author == "" {
			author = "-"
		}
		s := r.Summary
		t.Row(r.ID, r.StartedAt.Local().Format(time.DateTime), author,
			strconv.Itoa(r.Files), strconv.Itoa(r.Score), string(r.Decision),
			fmt.Sprintf("%d/%d/%d/%d/%d", s.Critical, s.High, s.Medium, s.Low, s.Info))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return err
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	findings, err := db.RunFindings(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s) score %d, %s\n", run.ID, run.StartedAt.Local().Format(time.DateTime), run.Score, run.Decision)
	for _, f := range findings {
		fmt.Fprintf(out, "  [%s] %s - %s\n", f.Severity, f.Location(), f.Description)
	}
	return nil
}

func runHistoryPurge(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.PurgeBefore(cmd.Context(), time.Now().Add(-historyOlderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d runs.\n", n)
	return nil
}
