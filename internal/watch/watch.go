// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs a sync whenever source documents in a directory
// change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/logger"
)

// DefaultDebounce is how long the directory must stay quiet after a change
// before a sync is triggered. Word processors save in several steps.
const DefaultDebounce = 2 * time.Second

// Options configures Run.
type Options struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// Match selects the file names whose changes trigger a sync.
	Match func(name string) bool

	// Debounce is the quiet period before a sync. DefaultDebounce when zero.
	Debounce time.Duration
}

// Run calls sync once, then again after every burst of matching changes in
// opts.Dir has settled. Syncs never overlap. A failing sync is logged and
// the watch continues. Run returns nil when ctx is cancelled.
func Run(ctx context.Context, opts Options, sync func() error) error {
	absDir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", opts.Dir, err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("watch directory not found: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(absDir); err != nil {
		return fmt.Errorf("watching %s: %w", absDir, err)
	}
	logger.Log.Info("watcher started", zap.String("dir", absDir))

	runSync(sync)
	return loop(ctx, fw.Events, fw.Errors, opts, sync)
}

// loop drives the debounce timer from raw events. It is split from Run so
// tests can feed events directly.
func loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, opts Options, sync func() error) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Log.Info("watcher stopping")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev, opts.Match) {
				continue
			}
			logger.Log.Debug("change detected",
				zap.String("path", ev.Name),
				zap.String("op", ev.Op.String()))
			timer.Reset(debounce)
			pending = true

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Log.Error("watcher error", zap.Error(err))

		case <-timer.C:
			if pending {
				pending = false
				runSync(sync)
			}
		}
	}
}

func relevant(ev fsnotify.Event, match func(string) bool) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	if match == nil {
		return true
	}
	return match(filepath.Base(ev.Name))
}

func runSync(sync func() error) {
	if err := sync(); err != nil {
		logger.Log.Error("sync failed", zap.Error(err))
	}
}
