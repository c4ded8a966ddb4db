// Package watch reruns a reload function when definition files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher observes a definition file or directory.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	match    func(name string) bool
	debounce time.Duration
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before reload runs. Zero reloads on
// every event.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts watching path. A directory matches *.yaml, *.yml and *.json
// entries; a file is watched through its directory so that editors which
// replace the file on save are still seen.
func New(path string, opts ...Option) (*Watcher, error) {
	w := &Watcher{path: path, debounce: DefaultDebounce, logger: zap.NewNop()}
	for _, o := range opts {
		o(w)
	}
	dir, match := target(path)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.fs, w.match = fw, match
	return w, nil
}

// Run calls reload after matching changes until ctx is done. A failed reload
// is logged and the watch continues. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, reload func() error) error {
	defer func() { _ = w.fs.Close() }()
	// Reloads run one at a time so a slow one cannot finish after a newer one.
	var reloading sync.Mutex
	d := &debouncer{interval: w.debounce, fire: func() {
		reloading.Lock()
		defer reloading.Unlock()
		if err := reload(); err != nil {
			w.logger.Warn("reload failed, keeping previous definitions", zap.String("path", w.path), zap.Error(err))
			return
		}
		w.logger.Info("definitions reloaded", zap.String("path", w.path))
	}}
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.match(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("definition changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			d.trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func target(path string) (string, func(string) bool) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return path, isDefinitionFile
	}
	clean := filepath.Clean(path)
	return filepath.Dir(clean), func(name string) bool { return filepath.Clean(name) == clean }
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	pending  bool
	stopped  bool
	interval time.Duration
	fire     func()
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.interval <= 0 {
		d.fire()
		return
	}
	if d.pending {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
	} else {
		d.timer.Reset(d.interval)
	}
}

func (d *debouncer) flush() {
	d.mu.Lock()
	d.pending = false
	stopped := d.stopped
	d.mu.Unlock()
	if !stopped {
		d.fire()
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
