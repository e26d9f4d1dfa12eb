// Package watcher reports changes to a single configuration file.
//
// The parent directory is watched rather than the file itself, because many
// editors save by writing a temporary file and renaming it over the original,
// which drops a watch held on the old inode. Bursts of events are coalesced
// by a debounce timer before the handler runs.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when starting a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Handler is called after the watched file changes.
type Handler func(path string)

// ErrorHandler receives errors from the underlying watcher.
type ErrorHandler func(err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the error callback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		if h != nil {
			w.onError = h
		}
	}
}

// Watcher watches one file for writes, creates, renames and removals.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler
	onError  ErrorHandler

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	closed  bool
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher for path. It does nothing until Start.
func New(path string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		handler:  handler,
		onError:  func(error) {},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. The parent directory must exist.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.started = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Close stops watching and waits for the event loop to exit. Pending
// debounced notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	fsw := w.fsw
	w.mu.Unlock()

	close(w.done)
	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()

	if !closed && w.handler != nil {
		w.handler(w.path)
	}
}
