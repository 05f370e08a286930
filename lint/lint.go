package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/effectlint/internal"
	"github.com/gnolang/effectlint/internal/lints"
	"github.com/gnolang/effectlint/internal/tsx"
	tt "github.com/gnolang/effectlint/internal/types"
	"github.com/gnolang/effectlint/scanner"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = ".effectlint.yaml"

// ProgressOutput receives the progress bar drawn while a directory is linted.
var ProgressOutput io.Writer = os.Stderr

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New builds an engine from the configuration at configurationPath.
// A missing configuration file leaves every rule at its default.
func New(rootDir string, configurationPath string, opts ...internal.EngineOption) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}

	return internal.NewEngine(rootDir, config.Rules, opts...)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath lints path, a single file or a directory walked recursively.
// Files of a directory are processed by a bounded pool of workers; a file
// that fails does not stop the others, and the issues found so far are
// returned together with the joined errors.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.SupportedFile(path) {
			return []tt.Issue{}, nil
		}
		issues, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return issues, nil
	}

	files, err := scanner.New(path, tsx.Extensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := newProgressBar(len(files), path)
	defer func() { _ = bar.Finish() }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var (
		mu       sync.Mutex
		fileErrs []error
	)
	results := make([][]tt.Issue, len(files))

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() { _ = bar.Add(1) }()

			fileIssues, err := processor(engine, file.Path)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file.Path), zap.Error(err))
				}
				mu.Lock()
				fileErrs = append(fileErrs, fmt.Errorf("%s: %w", file.Path, err))
				mu.Unlock()
				return nil
			}
			results[i] = fileIssues
			return nil
		})
	}

	waitErr := g.Wait()

	issues := make([]tt.Issue, 0)
	for _, r := range results {
		issues = append(issues, r...)
	}

	if waitErr != nil {
		return issues, waitErr
	}
	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errors.Join(fileErrs...)
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name  string                   `yaml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig is the configuration written by `effectlint init`.
func DefaultConfig() Config {
	return Config{
		Name: "effectlint",
		Rules: map[string]tt.ConfigRule{
			lints.EffectComponentRule: {
				Severity: tt.SeverityError,
				Data:     map[string]any{"suffix": lints.DefaultEffectSuffix},
			},
		},
	}
}

// LoadConfig reads the configuration at configurationPath. An empty path
// or a missing file yields an empty configuration.
func LoadConfig(configurationPath string) (Config, error) {
	var config Config
	if configurationPath == "" {
		return config, nil
	}

	// Read the configuration file
	f, err := os.Open(configurationPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	// Parse the configuration file
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("failed to parse config %s: %w", configurationPath, err)
	}

	return config, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
