package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/effectlint/internal"
	"github.com/gnolang/effectlint/lint"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile  string
	timeout  time.Duration
	cacheDir    string
	cacheMaxAge time.Duration
	clearCache  bool

	logger *zap.Logger
)

// ErrIssuesFound is returned when linting leaves issues behind.
var ErrIssuesFound = errors.New("issues found")

var rootCmd = &cobra.Command{
	Use:              "effectlint [paths...]",
	Short:            "effectlint - keeps effect components named after what they render",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'effectlint' is entered
			return cmd.Help()
		}
		// Format: effectlint [path1 path2 ...] => behaves like the lint subcommand
		return lintCmd.RunE(lintCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// SetLogger replaces the logger built on first use.
func SetLogger(l *zap.Logger) {
	logger = l
}

// newEngine builds the engine shared by the subcommands from the global flags.
func newEngine() (*internal.Engine, error) {
	var opts []internal.EngineOption
	if cacheDir != "" {
		cache, err := openCache(cacheDir, cacheMaxAge, clearCache, cfgFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, internal.WithCache(cache))
	}

	engine, err := lint.New(".", cfgFile, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lint engine: %w", err)
	}
	return engine, nil
}

// openCache opens the result cache in dir, invalidated by changes to deps.
func openCache(dir string, maxAge time.Duration, clear bool, deps ...string) (*internal.Cache, error) {
	cache, err := internal.NewCache(dir, deps...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	cache.SetMaxAge(maxAge)
	if clear {
		cache.InvalidateAll()
	}
	return cache, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", lint.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the linter")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory caching lint results between runs (disabled when empty)")
	rootCmd.PersistentFlags().DurationVar(&cacheMaxAge, "cache-max-age", internal.DefaultCacheAge, "How long cached results stay valid (0 keeps them until the file changes)")
	rootCmd.PersistentFlags().BoolVar(&clearCache, "clear-cache", false, "Drop every cached result before linting")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
}
