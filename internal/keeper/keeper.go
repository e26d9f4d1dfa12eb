package keeper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/config/notify"
	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/event/topic"
	"github.com/dshills/cursorkeep/internal/host"
	"github.com/dshills/cursorkeep/internal/logging"
	"github.com/dshills/cursorkeep/internal/position"
	"github.com/dshills/cursorkeep/internal/schedule"
)

// Source is the event source name used by the keeper.
const Source = "cursorkeep"

// Status item text and transient message durations.
const (
	IdleText    = "cursorkeep"
	IdleTooltip = "cursorkeep is tracking cursor positions"

	// TipDuration is how long a tip stays visible.
	TipDuration = 2 * time.Second

	// StartupMessageDuration is how long the startup status message stays.
	StartupMessageDuration = 3 * time.Second
)

// Option configures a Keeper.
type Option func(*Keeper)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(k *Keeper) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithClock replaces time.Now for record timestamps and the save time shown
// in the status item.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) {
		if now != nil {
			k.now = now
		}
	}
}

// WithRandom replaces the tip picker. intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(k *Keeper) {
		if intn != nil {
			k.intn = intn
		}
	}
}

// WithTipReset sets how long a statusbar tip replaces the status item text.
func WithTipReset(d time.Duration) Option {
	return func(k *Keeper) {
		if d > 0 {
			k.tipReset = schedule.NewDelay(d)
		}
	}
}

// Keeper persists and restores cursor positions for a host session.
type Keeper struct {
	mu sync.Mutex

	session host.Session
	bus     *event.Bus
	cfg     *config.Config
	store   *position.Store
	logger  *logging.Logger

	loop     *schedule.Loop
	tipReset *schedule.Delay

	status      host.StatusItem
	statusShown bool

	busSubs []*event.Subscription
	cfgSub  *notify.Subscription

	commands []Command
	byID     map[string]Command

	started  bool
	disposed bool

	// events queued under mu, published after it is released
	outbox []any

	now  func() time.Time
	intn func(n int) int
}

// New creates a stopped Keeper.
func New(session host.Session, bus *event.Bus, cfg *config.Config, store *position.Store, opts ...Option) *Keeper {
	k := &Keeper{
		session:  session,
		bus:      bus,
		cfg:      cfg,
		store:    store,
		logger:   logging.Discard(),
		tipReset: schedule.NewDelay(TipDuration),
		now:      time.Now,
		intn:     rand.Intn,
	}
	for _, opt := range opts {
		opt(k)
	}
	k.loop = schedule.NewLoop(k.onSaveTick, k.onTipTick)
	k.registerCommands()
	return k
}

// Store returns the position store.
func (k *Keeper) Store() *position.Store {
	return k.store
}

// Start resolves the storage file, loads it, subscribes to host and
// configuration events, and starts the timers. It does nothing and returns
// ctx.Err() when ctx is already done.
func (k *Keeper) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.unlock()

	if k.disposed {
		return ErrDisposed
	}
	if k.started {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s := k.cfg.Settings()
	if err := k.openStorageLocked(s); err != nil {
		return err
	}
	k.store.SetCap(s.MaxFilesPerDocument)
	k.applyStatusItemLocked(s.EnableStatusBar)

	if err := k.subscribeLocked(); err != nil {
		k.unsubscribeLocked()
		return err
	}

	k.loop.Start(schedule.ConfigFrom(s))
	k.started = true

	if s.ShowStartupMessage {
		k.session.Notify(host.LevelInfo, "cursorkeep started")
		k.session.StatusMessage("cursorkeep: tracking cursor positions", StartupMessageDuration)
	}
	k.logger.Info("started: %d files tracked in %s", k.store.Len(), k.store.Path())
	return nil
}

// Dispose stops the timers, drops all subscriptions, hides the status item
// and saves one last time. Calling it again does nothing.
func (k *Keeper) Dispose() error {
	k.mu.Lock()
	defer k.unlock()

	if k.disposed {
		return nil
	}
	k.disposed = true

	k.loop.Stop()
	k.tipReset.Cancel()
	k.unsubscribeLocked()
	k.applyStatusItemLocked(false)

	if !k.started {
		return nil
	}
	_, err := k.saveLocked(false)
	k.logger.Info("disposed")
	return err
}

// Running reports whether the keeper is started and not disposed.
func (k *Keeper) Running() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.started && !k.disposed
}

func (k *Keeper) subscribeLocked() error {
	handlers := []struct {
		pattern topic.Topic
		fn      event.HandlerFunc
	}{
		{events.TopicSelectionChanged, k.handleSelectionChanged},
		{events.TopicActiveEditorChanged, k.handleActiveEditorChanged},
		{events.TopicConfigChanged, k.handleConfigChanged},
	}
	for _, h := range handlers {
		sub, err := k.bus.SubscribeFunc(h.pattern, h.fn)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", h.pattern, err)
		}
		k.busSubs = append(k.busSubs, sub)
	}

	k.cfgSub = k.cfg.Subscribe(k.forwardConfigChange)
	return nil
}

func (k *Keeper) unsubscribeLocked() {
	for _, sub := range k.busSubs {
		if err := k.bus.Unsubscribe(sub); err != nil && !errors.Is(err, event.ErrSubscriptionNotFound) {
			k.logger.Warn("unsubscribe %s: %v", sub.Topic(), err)
		}
	}
	k.busSubs = nil
	if k.cfgSub != nil {
		k.cfgSub.Unsubscribe()
		k.cfgSub = nil
	}
}

// forwardConfigChange turns a configuration notification into a
// config.changed event.
func (k *Keeper) forwardConfigChange(ch notify.Change) {
	ev := event.New(events.TopicConfigChanged, events.ConfigChanged{
		Keys:   ch.Keys,
		Source: ch.Source,
	}, Source)
	k.publish(ev)
}

// openStorageLocked points the store at the file selected by s and loads it.
// A load failure is reported and leaves the store empty.
func (k *Keeper) openStorageLocked(s config.Settings) error {
	path, err := s.StoragePath()
	if err != nil {
		return fmt.Errorf("resolving storage path: %w", err)
	}
	k.store.SetPath(path)
	if err := k.store.Load(); err != nil {
		k.logger.Error("failed to load positions from %s: %v", path, err)
		k.session.Notify(host.LevelError, "Failed to load cursor positions")
		return nil
	}
	return nil
}

func (k *Keeper) applyStatusItemLocked(enabled bool) {
	switch {
	case enabled && !k.statusShown:
		k.status = k.session.StatusItem()
		if k.status == nil {
			return
		}
		k.status.SetText(IdleText)
		k.status.SetTooltip(IdleTooltip)
		k.status.Show()
		k.statusShown = true
	case !enabled && k.statusShown:
		k.tipReset.Cancel()
		k.status.Hide()
		k.statusShown = false
	}
}

// saveLocked writes the store. Failures are logged, and also shown to the
// user when notifyFailure is set.
func (k *Keeper) saveLocked(notifyFailure bool) (position.SaveResult, error) {
	res, err := k.store.Save()
	if err != nil {
		k.logger.Error("failed to save positions: %v", err)
		if notifyFailure {
			k.session.Notify(host.LevelError, "Failed to save cursor positions")
		}
		return res, err
	}

	if k.statusShown {
		k.status.SetText(fmt.Sprintf("%s saved %s", IdleText, k.now().Format("15:04:05")))
	}
	k.emit(event.New(events.TopicPositionsSaved, events.PositionsSaved{
		Path:    res.Path,
		Bytes:   res.Bytes,
		Files:   res.Files,
		Trimmed: res.Trimmed,
	}, Source))
	return res, nil
}

// emit queues ev for publication once mu is released.
func (k *Keeper) emit(ev any) {
	k.outbox = append(k.outbox, ev)
}

// unlock releases mu and publishes queued events.
func (k *Keeper) unlock() {
	out := k.outbox
	k.outbox = nil
	k.mu.Unlock()

	for _, ev := range out {
		k.publish(ev)
	}
}

func (k *Keeper) publish(ev any) {
	err := k.bus.Publish(context.Background(), ev)
	if err != nil && !errors.Is(err, event.ErrBusClosed) {
		k.logger.Warn("publish: %v", err)
	}
}

func (k *Keeper) onSaveTick() {
	k.mu.Lock()
	defer k.unlock()

	if k.disposed || !k.cfg.Settings().Enabled {
		return
	}
	_, _ = k.saveLocked(true)
}
