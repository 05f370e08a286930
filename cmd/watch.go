package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/effectlint/formatter"
	"github.com/gnolang/effectlint/internal"
	tt "github.com/gnolang/effectlint/internal/types"
)

var debounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint files as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		applyIgnores(engine, ignoreRules, ignorePaths)

		logger.Info("watching for changes", zap.Strings("dirs", args))
		return engine.Watch(ctx, logger, args, debounce, reportTo(os.Stdout, logger))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&debounce, "debounce", internal.DefaultDebounce, "Delay between the last write to a file and its re-lint")
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	watchCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// reportTo prints the issues of each re-linted file to w.
func reportTo(w io.Writer, logger *zap.Logger) internal.ReportFunc {
	return func(filename string, issues []tt.Issue) {
		if len(issues) == 0 {
			fmt.Fprintf(w, "%s: ok\n", filename)
			return
		}
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			return
		}
		fmt.Fprintln(w, formatter.GenerateFormattedIssue(issues, sourceCode))
	}
}
