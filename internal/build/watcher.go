package build

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gerunddev/postbridge/internal/logger"
)

// Watcher rebuilds whenever a post under the posts directory changes
type Watcher struct {
	builder  *Builder
	watcher  *fsnotify.Watcher
	root     string
	delay    time.Duration
	logger   *logger.Logger
	mu       sync.Mutex
	timer    *time.Timer
	rebuild  chan struct{}
	onResult func(*Result, error)
}

// NewWatcher watches the builder's posts directory and its subdirectories.
// onResult, if set, receives the outcome of every build.
func NewWatcher(b *Builder, onResult func(*Result, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		builder:  b,
		watcher:  fw,
		root:     b.config.PostsDir,
		delay:    b.config.WatchDebounce,
		logger:   b.logger,
		rebuild:  make(chan struct{}, 1),
		onResult: onResult,
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// Run performs an initial build, then rebuilds after each debounced burst
// of changes. Builds never overlap. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, opts Options) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	w.build(ctx, opts)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)

		case <-w.rebuild:
			w.build(ctx, opts)
		}
	}
}

func (w *Watcher) build(ctx context.Context, opts Options) {
	result, err := w.builder.Build(ctx, opts)
	if err != nil && ctx.Err() == nil {
		w.logger.Error("build failed", "error", err)
	}
	if w.onResult != nil && ctx.Err() == nil {
		w.onResult(result, err)
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// Pick up new directories; removed ones drop out of the watch list on their own
		if event.Has(fsnotify.Create) {
			info, err := os.Stat(path)
			if err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Error("watch error", "path", path, "error", err)
				}
				w.schedule()
			}
		}
		return
	}

	if event.Op == fsnotify.Chmod {
		return
	}

	w.logger.WatchEvent(path, event.Op.String())
	w.schedule()
}

// schedule restarts the debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		select {
		case w.rebuild <- struct{}{}:
		default:
			// A rebuild is already pending
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
