package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dshills/cursorkeep/internal/config/loader"
	"github.com/dshills/cursorkeep/internal/config/notify"
	"github.com/dshills/cursorkeep/internal/config/watcher"
	"github.com/dshills/cursorkeep/internal/logging"
)

// Change sources reported to observers.
const (
	SourceSet  = "set"
	SourceFile = "file"
)

// Config holds the layered cursorkeep configuration.
type Config struct {
	mu sync.RWMutex

	path     string
	defaults Settings
	doc      map[string]any // whole config file, other sections preserved
	file     map[string]any // cursorkeep section of doc
	env      map[string]any
	runtime  map[string]any
	current  Settings

	envLoader *loader.EnvLoader
	notifier  *notify.Notifier
	watch     *watcher.Watcher
	logger    *logging.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithPath sets the config file. An empty path disables the file layer.
func WithPath(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithDefaults replaces the built-in defaults.
func WithDefaults(s Settings) Option {
	return func(c *Config) {
		c.defaults = s
	}
}

// WithEnvLookup replaces os.LookupEnv for the environment layer.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(c *Config) {
		c.envLoader = loader.NewEnvLoader(envMapping).WithLookup(lookup)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Config holding the defaults. Call Load to read the file and
// environment layers.
func New(opts ...Option) *Config {
	c := &Config{
		defaults:  DefaultSettings(),
		runtime:   make(map[string]any),
		envLoader: loader.NewEnvLoader(envMapping),
		notifier:  notify.New(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current = c.defaults
	return c
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "cursorkeep", "config.toml"), nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Settings returns a snapshot of the effective settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns the effective value of key.
func (c *Config) Get(key string) (any, bool) {
	return c.Settings().Get(key)
}

// Load reads the file and environment layers without notifying observers.
// If the file cannot be parsed, the previous file layer is kept and the
// error is returned.
func (c *Config) Load() error {
	_, err := c.load()
	return err
}

// Reload reads the file and environment layers and notifies observers when
// any effective value changed.
func (c *Config) Reload() error {
	changed, err := c.load()
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		c.logger.Info("configuration reloaded, changed: %v", changed)
		c.notifier.NotifyReload(changed, SourceFile)
	}
	return nil
}

func (c *Config) load() ([]string, error) {
	c.mu.Lock()

	var loadErr error
	if c.path != "" {
		doc, err := loader.ReadFile(c.path)
		if err != nil {
			loadErr = err
		} else {
			c.doc = doc
			c.file = loader.Section(doc, SectionName)
			c.dropStaleRuntimeLocked()
		}
	}
	c.env = c.envLoader.Load()

	before := c.current
	c.current = c.resolveLocked()
	changed := diff(before, c.current)
	c.mu.Unlock()

	return changed, loadErr
}

// resolveLocked layers file, env and runtime values over the defaults.
// Invalid values are logged and skipped.
func (c *Config) resolveLocked() Settings {
	s := c.defaults
	for _, layer := range []struct {
		name   string
		values map[string]any
	}{
		{"file", c.file},
		{"env", c.env},
		{"runtime", c.runtime},
	} {
		for _, key := range sortedKeys(layer.values) {
			if err := s.apply(key, layer.values[key]); err != nil {
				c.logger.Warn("ignoring %s setting: %v", layer.name, err)
			}
		}
	}
	return s
}

// Set validates value, makes it the effective value of key, writes it to the
// config file, and notifies observers. The in-memory change is kept even if
// the file write fails; the write error is returned.
func (c *Config) Set(key string, value any) error {
	c.mu.Lock()

	probe := c.current
	if err := probe.apply(key, value); err != nil {
		c.mu.Unlock()
		return err
	}

	oldValue, _ := c.current.Get(key)
	c.runtime[key], _ = probe.Get(key)
	c.current = c.resolveLocked()
	newValue, _ := c.current.Get(key)

	writeErr := c.persistLocked(key, newValue)
	c.mu.Unlock()

	if oldValue != newValue {
		c.notifier.NotifySet(key, oldValue, newValue, SourceSet)
	}
	switch {
	case writeErr == nil:
	case errors.Is(writeErr, ErrNoConfigFile):
		c.logger.Debug("%s set for this session only", key)
	default:
		c.logger.Error("failed to persist %s: %v", key, writeErr)
	}
	return writeErr
}

// dropStaleRuntimeLocked forgets runtime values that the config file now
// contradicts, so external edits made after a Set take effect.
func (c *Config) dropStaleRuntimeLocked() {
	for key, rv := range c.runtime {
		fv, ok := c.file[key]
		if !ok {
			continue
		}
		probe := c.defaults
		if err := probe.apply(key, fv); err != nil {
			continue
		}
		if v, _ := probe.Get(key); v != rv {
			delete(c.runtime, key)
		}
	}
}

func (c *Config) persistLocked(key string, value any) error {
	if c.path == "" {
		return ErrNoConfigFile
	}
	if c.doc == nil {
		c.doc = make(map[string]any)
	}
	if c.file == nil {
		c.file = make(map[string]any)
	}
	c.file[key] = value
	c.doc[SectionName] = c.file
	return loader.WriteFile(c.path, c.doc)
}

// Subscribe registers an observer for configuration changes.
func (c *Config) Subscribe(obs notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(obs)
}

// Watch starts reloading the config file whenever it changes on disk.
// The file's directory is created if missing.
func (c *Config) Watch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return ErrNoConfigFile
	}
	if c.watch != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	w := watcher.New(c.path, func(string) {
		if err := c.Reload(); err != nil {
			c.logger.Error("failed to reload configuration: %v", err)
		}
	}, watcher.WithErrorHandler(func(err error) {
		c.logger.Warn("config watcher: %v", err)
	}))
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", c.path, err)
	}
	c.watch = w
	return nil
}

// Close stops the file watch and drops all observers.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watch
	c.watch = nil
	c.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	c.notifier.Close()
	return err
}

func diff(a, b Settings) []string {
	var keys []string
	for _, k := range Keys {
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		if av != bv {
			keys = append(keys, k)
		}
	}
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
