package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/effectlint/internal/types"
	"github.com/gnolang/effectlint/scanner"
)

// DefaultDebounce is how long Watch waits after the last write to a file
// before linting it, so that editors saving in several steps trigger one run.
const DefaultDebounce = 100 * time.Millisecond

// ReportFunc receives the issues of a re-linted file.
type ReportFunc func(filename string, issues []tt.Issue)

// Watch lints supported files under dirs whenever they are written, until
// ctx is cancelled. New subdirectories are watched as they appear.
func (e *Engine) Watch(ctx context.Context, logger *zap.Logger, dirs []string, debounce time.Duration, report ReportFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addRecursive(watcher, dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	addDir := func(dir string) error { return addRecursive(watcher, dir) }
	return e.watchEvents(ctx, logger, watcher.Events, watcher.Errors, addDir, debounce, report)
}

// watchEvents debounces events and re-lints the files they name. It returns
// when ctx is done or either channel is closed.
func (e *Engine) watchEvents(
	ctx context.Context,
	logger *zap.Logger,
	events <-chan fsnotify.Event,
	errs <-chan error,
	addDir func(string) error,
	debounce time.Duration,
	report ReportFunc,
) error {
	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		ready   = make(chan string)
		done    = make(chan struct{})
	)
	defer close(done)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[name]; ok {
			t.Reset(debounce)
			return
		}
		pending[name] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(pending, name)
			mu.Unlock()
			select {
			case ready <- name:
			case <-ctx.Done():
			case <-done:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addDir(event.Name); err != nil {
						logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && SupportedFile(event.Name) {
				schedule(event.Name)
			}
		case name := <-ready:
			issues, err := e.Run(name)
			if err != nil {
				logger.Error("Error linting file", zap.String("file", name), zap.Error(err))
				continue
			}
			logger.Debug("Linted file", zap.String("file", name), zap.Int("issues", len(issues)))
			report(name, issues)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scanner.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
