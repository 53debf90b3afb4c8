package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archguard/internal/report"
	"archguard/internal/review"
	"archguard/internal/store"
)

var (
	validateAuthor   string
	validateFormat   string
	validateColor    string
	validateSave     bool
	validateNoFail   bool
	validateParallel int
)

// validateCmd reviews files or directory trees
var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Validate files against the policy and decide on approval",
	Long: `Validates every file named on the command line; directories are walked for
files with the configured watch extensions. The report lists findings most
severe first, followed by the score and decision.

Exit status is non-zero when the review blocks the commit (REJECTED, or a
critical finding) unless --no-fail is given.

Example:
  archguard validate src/ --author dev@example.com --format markdown --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateAuthor, "author", "", "Change author; selects team overrides")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "", "Output format: text, markdown, json, sarif (default from config)")
	validateCmd.Flags().StringVar(&validateColor, "color", "auto", "Styled output: auto, always, never")
	validateCmd.Flags().BoolVar(&validateSave, "save", false, "Record the run in the history database")
	validateCmd.Flags().BoolVar(&validateNoFail, "no-fail", false, "Exit zero even when the review blocks")
	validateCmd.Flags().IntVar(&validateParallel, "parallel-extract", 0, "Run up to N extractors per file concurrently")
}

// errBlocked signals a blocking review after the report has been printed.
type errBlocked struct {
	decision review.Decision
}

func (e errBlocked) Error() string {
	return fmt.Sprintf("review blocked: %s", e.decision)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	formatName := validateFormat
	if formatName == "" {
		formatName = cfg.OutputFormat
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	p, err := loadPolicy()
	if err != nil {
		return err
	}

	files, err := collectFiles(args, cfg.Watch.Extensions)
	if err != nil {
		return err
	}
	if cfg.Limits.MaxFiles > 0 && len(files) > cfg.Limits.MaxFiles {
		return fmt.Errorf("%d files exceed the limit of %d", len(files), cfg.Limits.MaxFiles)
	}
	logger.Debug("validating files", zap.Int("count", len(files)), zap.String("author", validateAuthor))

	reviewer, err := review.New(p,
		review.WithConcurrency(cfg.Concurrency),
		review.WithMaxFileSize(cfg.MaxFileSizeBytes()),
		review.WithParallelExtraction(validateParallel),
	)
	if err != nil {
		return err
	}
	sources := make([]review.Source, len(files))
	for i, f := range files {
		sources[i] = review.Source{Name: displayName(f), Path: f}
	}
	result, err := reviewer.Review(ctx, validateAuthor, sources)
	if err != nil {
		return err
	}

	if validateSave {
		if err := saveRun(ctx, result); err != nil {
			return err
		}
	}

	color, err := colorEnabled(validateColor, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), result, format, report.Options{Color: color}); err != nil {
		return err
	}

	if result.BlockCommit && !validateNoFail {
		return errBlocked{decision: result.Decision}
	}
	return nil
}

func saveRun(ctx context.Context, result *review.Result) error {
	db, err := store.Open(resolvePath(cfg.DatabasePath))
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveRun(ctx, result, policyPath()); err != nil {
		return err
	}
	logger.Info("review run saved", zap.String("id", result.ID))
	return nil
}

// displayName is the slash-separated path relative to the workspace, which
// is what policy globs are matched against.
func displayName(path string) string {
	base := workspace
	if base == "" {
		base = "."
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// collectFiles expands directories into the files they contain, keeping
// explicitly named files as given. Hidden directories are skipped.
func collectFiles(args []string, extensions []string) ([]string, error) {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	var files []string
	for _, arg := range args {
		path := resolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if len(exts) == 0 || exts[strings.ToLower(filepath.Ext(p))] {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
