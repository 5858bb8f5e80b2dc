package rules

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig controls rule file hot reload.
type WatcherConfig struct {
	// Debounce collapses bursts of editor writes into one reload.
	Debounce time.Duration
	// OnChange receives every successfully parsed RuleSet.
	OnChange func(*RuleSet)
	// OnError receives parse and watch failures. The active rules are kept.
	OnError func(error)
}

func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{Debounce: 500 * time.Millisecond}
}

// Watcher reloads a rules file when it changes and swaps the result into a
// Holder. Invalid files are logged and ignored.
type Watcher struct {
	path    string
	holder  *Holder
	config  *WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu        sync.Mutex
	debouncer *time.Timer
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewWatcher(path string, holder *Holder, cfg *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if holder == nil {
		return nil, fmt.Errorf("rules holder is required")
	}
	if cfg == nil {
		cfg = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory so atomic rename-over writes are seen.
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch rules directory: %w", err)
	}

	return &Watcher{
		path:    absPath,
		holder:  holder,
		config:  cfg,
		watcher: fw,
		logger:  logger.With("component", "rules-watcher"),
		stopCh:  make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	w.wg.Go(w.loop)
	w.logger.Info("rules watcher started", "file", w.path)
}

// Stop ends watching and cancels any pending reload.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	w.mu.Lock()
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("rules watcher error", "error", err)
			w.reportError(fmt.Errorf("watch rules file: %w", err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.debouncer = time.AfterFunc(w.config.Debounce, w.Reload)
}

// Reload parses the file now and installs it when valid.
func (w *Watcher) Reload() {
	rs, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("rules reload failed, keeping active rules", "file", w.path, "error", err)
		w.reportError(err)
		return
	}
	w.holder.Swap(rs)
	w.logger.Info("rules reloaded", "file", w.path, "rule_count", rs.Len())
	if w.config.OnChange != nil {
		w.config.OnChange(rs)
	}
}

func (w *Watcher) reportError(err error) {
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
