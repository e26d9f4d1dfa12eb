package schedule

import (
	"sync"
	"time"

	"github.com/dshills/cursorkeep/internal/config"
)

// StatusBarTipInterval is the rotation period of the statusbar tip mode.
const StatusBarTipInterval = 10 * time.Second

// TipInterval returns the tip period for mode, or 0 if mode shows no tips.
func TipInterval(mode config.TipMode) time.Duration {
	switch mode {
	case config.TipStatusBar:
		return StatusBarTipInterval
	case config.Tip5s:
		return 5 * time.Second
	case config.Tip10s:
		return 10 * time.Second
	case config.Tip1min:
		return time.Minute
	default:
		return 0
	}
}

// Config is the timer configuration of a Loop. A zero interval disables
// the corresponding ticker.
type Config struct {
	SaveInterval time.Duration
	TipInterval  time.Duration
}

// ConfigFrom derives the loop configuration from settings. The save
// interval is clamped to config.MaxSaveInterval.
func ConfigFrom(s config.Settings) Config {
	secs := min(s.SaveInterval, config.MaxSaveInterval)
	return Config{
		SaveInterval: time.Duration(secs) * time.Second,
		TipInterval:  TipInterval(s.TipMode),
	}
}

// Loop drives the save and tip callbacks.
type Loop struct {
	mu      sync.Mutex
	onSave  func()
	onTip   func()
	cfg     Config
	running bool
	done    chan struct{}
}

// NewLoop creates a stopped loop. Either callback may be nil.
func NewLoop(onSave, onTip func()) *Loop {
	return &Loop{
		onSave: onSave,
		onTip:  onTip,
	}
}

// Start starts the tickers described by cfg. Starting a running loop
// is a no-op; use Restart to change the configuration.
func (l *Loop) Start(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.startLocked(cfg)
}

// Restart stops both tickers and starts them again with cfg.
func (l *Loop) Restart(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()
	l.startLocked(cfg)
}

// Stop stops both tickers. It does not wait for a callback that is
// already running. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Running reports whether the loop has been started and not stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Config returns the active configuration.
func (l *Loop) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

func (l *Loop) startLocked(cfg Config) {
	l.cfg = cfg
	l.running = true
	l.done = make(chan struct{})

	if cfg.SaveInterval > 0 && l.onSave != nil {
		go tick(cfg.SaveInterval, l.done, l.onSave)
	}
	if cfg.TipInterval > 0 && l.onTip != nil {
		go tick(cfg.TipInterval, l.done, l.onTip)
	}
}

func (l *Loop) stopLocked() {
	if !l.running {
		return
	}
	l.running = false
	close(l.done)
}

func tick(interval time.Duration, done <-chan struct{}, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// A stop may race with the tick; prefer the stop.
			select {
			case <-done:
				return
			default:
			}
			fn()
		}
	}
}
