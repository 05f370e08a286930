package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/effectlint/internal/fixer"
	"github.com/gnolang/effectlint/lint"
)

const defaultConfidenceThreshold = 0.75

var (
	dryRun              bool
	confidenceThreshold float64
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errNoPaths
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// initialize the lint engine
		engine, err := newEngine()
		if err != nil {
			return err
		}

		return runAutoFix(ctx, logger, engine, args, dryRun, confidenceThreshold, os.Stdout)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().Float64Var(&confidenceThreshold, "confidence", defaultConfidenceThreshold, "Confidence threshold for auto-fixing (0.0 to 1.0)")
}

// runAutoFix lints paths and applies the fixes file by file. A file that
// cannot be fixed is logged and the others are still processed.
func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, dryRun bool, confidenceThreshold float64, w io.Writer) error {
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be between 0.0 and 1.0, got %v", confidenceThreshold)
	}

	fix := fixer.New(dryRun, confidenceThreshold)
	fix.SetOutput(w)

	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	issuesByFile, sortedFiles := groupByFile(issues)

	var errs []error
	for _, filename := range sortedFiles {
		if _, err := fix.Fix(filename, issuesByFile[filename]); err != nil {
			logger.Error("error fixing issues", zap.String("file", filename), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
