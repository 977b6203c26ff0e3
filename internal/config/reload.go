package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// ReloadableConfig watches a YAML config file and swaps in the new
// configuration when it changes. Changes that cannot be applied to a running
// tunnel are rejected and the previous configuration stays in effect.
type ReloadableConfig struct {
	path      string
	current   atomic.Pointer[RunConfig]
	mu        sync.RWMutex
	watchers  []func(old, new *RunConfig)
	onError   func(error)
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	closeOnce sync.Once
	reloadMu  sync.Mutex // serializes reloads
}

// NewReloadable loads path and starts watching it.
func NewReloadable(path string) (*ReloadableConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("initial config load: %w", err)
	}

	r := &ReloadableConfig{
		path:   path,
		stopCh: make(chan struct{}),
	}
	r.current.Store(cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}

	r.watcher = watcher
	go r.watchLoop()

	return r, nil
}

// Get returns the current configuration.
func (r *ReloadableConfig) Get() *RunConfig {
	return r.current.Load()
}

// Watch registers a callback run after every accepted reload.
func (r *ReloadableConfig) Watch(fn func(old, new *RunConfig)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers = append(r.watchers, fn)
}

// OnError replaces the handler for failed background reloads, which by
// default prints to stderr.
func (r *ReloadableConfig) OnError(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

func (r *ReloadableConfig) reportError(err error) {
	r.mu.RLock()
	fn := r.onError
	r.mu.RUnlock()
	if fn != nil {
		fn(err)
		return
	}
	fmt.Fprintf(os.Stderr, "config reload failed: %v\n", err)
}

// Reload forces a reload from disk.
func (r *ReloadableConfig) Reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	newCfg, err := Load(r.path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	oldCfg := r.Get()
	if err := validateTransition(oldCfg, newCfg); err != nil {
		return fmt.Errorf("validate transition: %w", err)
	}

	r.current.Store(newCfg)

	r.mu.RLock()
	watchers := make([]func(old, new *RunConfig), len(r.watchers))
	copy(watchers, r.watchers)
	r.mu.RUnlock()

	for _, fn := range watchers {
		fn(oldCfg, newCfg)
	}
	return nil
}

// validateTransition rejects changes that need a restart. SNI lists, ALPN,
// fingerprint and flags may change; the listening socket and secret may not.
func validateTransition(old, new *RunConfig) error {
	if old.Mode != new.Mode {
		return fmt.Errorf("mode change requires restart: %s -> %s", old.Mode, new.Mode)
	}
	if old.Listen() != new.Listen() {
		return fmt.Errorf("listen address change requires restart")
	}
	if old.Password() != new.Password() {
		return fmt.Errorf("password change requires restart")
	}
	return nil
}

func (r *ReloadableConfig) watchLoop() {
	target := filepath.Clean(r.path)
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := r.Reload(); err != nil {
					r.reportError(err)
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.reportError(fmt.Errorf("config watcher: %w", err))
		case <-r.stopCh:
			return
		}
	}
}

// Close stops the file watcher.
func (r *ReloadableConfig) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopCh)
		err = r.watcher.Close()
	})
	return err
}
