package keeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/config/loader"
	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
	"github.com/dshills/cursorkeep/internal/position"
)

type harness struct {
	t       *testing.T
	dir     string
	sess    *fakeSession
	bus     *event.Bus
	cfg     *config.Config
	store   *position.Store
	k       *Keeper
	nowMill atomic.Int64
}

func newHarness(t *testing.T, mutate func(*config.Settings), opts ...Option) *harness {
	t.Helper()

	h := &harness{t: t, dir: t.TempDir()}
	h.nowMill.Store(1000)

	defaults := config.DefaultSettings()
	defaults.SaveLocation = config.LocationAlternate
	defaults.AlternateDir = filepath.Join(h.dir, "store")
	defaults.SaveInterval = 3600
	defaults.ShowStartupMessage = false
	if mutate != nil {
		mutate(&defaults)
	}

	h.cfg = config.New(
		config.WithPath(filepath.Join(h.dir, "config.toml")),
		config.WithDefaults(defaults),
		config.WithEnvLookup(func(string) (string, bool) { return "", false }),
	)
	require.NoError(t, h.cfg.Load())

	h.sess = newFakeSession()
	h.bus = event.NewBus()
	h.store = position.NewStore("")

	base := []Option{
		WithClock(func() time.Time { return time.UnixMilli(h.nowMill.Load()) }),
		WithRandom(func(int) int { return 0 }),
	}
	h.k = New(h.sess, h.bus, h.cfg, h.store, append(base, opts...)...)
	t.Cleanup(func() { _ = h.k.Dispose() })
	return h
}

func (h *harness) start() {
	h.t.Helper()
	require.NoError(h.t, h.k.Start(context.Background()))
}

func (h *harness) at(ms int64) {
	h.nowMill.Store(ms)
}

func (h *harness) storagePath() string {
	return filepath.Join(h.dir, "store", config.DefaultStorageFile)
}

func (h *harness) moveCursor(ed *fakeEditor, line, char int) {
	h.t.Helper()
	ed.moveTo(line, char)
	require.NoError(h.t, h.bus.Publish(context.Background(), event.New(events.TopicSelectionChanged,
		events.SelectionChanged{Editor: ed, Kind: "keyboard"}, "test")))
}

func (h *harness) focus(ed *fakeEditor) {
	h.t.Helper()
	h.sess.setActive(ed)
	require.NoError(h.t, h.bus.Publish(context.Background(), event.New(events.TopicActiveEditorChanged,
		events.ActiveEditorChanged{Editor: ed}, "test")))
}

func (h *harness) writeStore(content string) {
	h.t.Helper()
	require.NoError(h.t, os.MkdirAll(filepath.Dir(h.storagePath()), 0o755))
	require.NoError(h.t, os.WriteFile(h.storagePath(), []byte(content), 0o644))
}

func TestKeeper_StartLoadsAndShowsStatusItem(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.ShowStartupMessage = true })
	h.writeStore(`{"/a.ts": [{"line": 3, "character": 1, "timestamp": 50}]}`)
	h.start()

	assert.Equal(t, h.storagePath(), h.store.Path())
	assert.Equal(t, 1, h.store.Len())
	assert.True(t, h.sess.status.Shown())
	assert.Equal(t, IdleText, h.sess.status.Text())
	assert.True(t, h.sess.notified("cursorkeep started"))
	require.NotEmpty(t, h.sess.statusMessages())
	assert.Equal(t, StartupMessageDuration, h.sess.statusMessages()[0].d)
	assert.True(t, h.k.Running())

	assert.ErrorIs(t, h.k.Start(context.Background()), ErrAlreadyStarted)
}

func TestKeeper_StartWithoutStatusBar(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.EnableStatusBar = false })
	h.start()

	assert.False(t, h.sess.status.Shown())
	assert.Empty(t, h.sess.notes)
}

func TestKeeper_StartWithCanceledContext(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 3, "character": 1, "timestamp": 50}]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.k.Start(ctx), context.Canceled)
	assert.False(t, h.k.Running())
	assert.Zero(t, h.store.Len())
	assert.False(t, h.sess.status.Shown())

	h.start()
	assert.True(t, h.k.Running())
	assert.Equal(t, 1, h.store.Len())
}

func TestKeeper_StartCorruptStoreIsNotFatal(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`[1, 2, 3]`)
	h.start()

	assert.Zero(t, h.store.Len())
	assert.Empty(t, h.sess.errors())
}

func TestKeeper_RecordsSelection(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 20}
	h.at(100)
	h.moveCursor(ed, 5, 2)
	h.at(200)
	h.moveCursor(ed, 6, 0)

	rec, ok := h.store.Lookup("/a.ts")
	require.True(t, ok)
	assert.Equal(t, position.Record{Line: 6, Character: 0, Timestamp: 200}, rec)
	assert.Len(t, h.store.History("/a.ts"), 2)
}

func TestKeeper_CapOneKeepsNewest(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.MaxFilesPerDocument = 1 })
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 20}
	h.at(100)
	h.moveCursor(ed, 5, 2)
	h.at(200)
	h.moveCursor(ed, 6, 0)

	assert.Equal(t, []position.Record{{Line: 6, Character: 0, Timestamp: 200}}, h.store.History("/a.ts"))
}

func TestKeeper_IgnoresUntitledEditors(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	h.moveCursor(&fakeEditor{lines: 3}, 1, 1)
	assert.Zero(t, h.store.Len())
}

func TestKeeper_IgnoresEventsBeforeStart(t *testing.T) {
	h := newHarness(t, nil)

	// not subscribed yet, so nothing can arrive; Execute still works
	require.NoError(t, h.k.Execute(context.Background(), CommandShowStatus))
	assert.Zero(t, h.store.Len())
}

func TestKeeper_RestoresOnFocus(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 6, "character": 3, "timestamp": 200}]}`)
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 10}
	h.focus(ed)

	want := host.Position{Line: 6, Character: 3}
	assert.Equal(t, want, ed.Selection())
	assert.Equal(t, []host.Position{want}, ed.reveals())
}

func TestKeeper_RestoreSkipsShrunkDocument(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 6, "character": 3, "timestamp": 200}]}`)
	h.start()

	tests := []struct {
		name  string
		lines int
	}{
		{"exactly line count", 6},
		{"shorter", 2},
		{"empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := &fakeEditor{path: "/a.ts", lines: tt.lines}
			h.focus(ed)
			assert.Equal(t, host.Position{}, ed.Selection())
			assert.Empty(t, ed.reveals())
		})
	}
}

func TestKeeper_RestoreWithReentrantHost(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 2, "character": 4, "timestamp": 200}]}`)
	h.start()
	h.at(300)

	ed := &fakeEditor{path: "/a.ts", lines: 10, bus: h.bus}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.sess.setActive(ed)
		_ = h.bus.Publish(context.Background(), event.New(events.TopicActiveEditorChanged,
			events.ActiveEditorChanged{Editor: ed}, "test"))
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("restore deadlocked")
	}

	rec, ok := h.store.Lookup("/a.ts")
	require.True(t, ok)
	assert.Equal(t, position.Record{Line: 2, Character: 4, Timestamp: 300}, rec)
}

func TestKeeper_Toggle(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ctx := context.Background()

	require.NoError(t, h.k.Execute(ctx, CommandToggle))
	assert.False(t, h.cfg.Settings().Enabled)
	assert.True(t, h.sess.notified("Cursor tracking disabled"))
	assert.True(t, h.sess.notified("cursorkeep configuration updated"))

	doc, err := loader.ReadFile(h.cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, false, loader.Section(doc, config.SectionName)[config.KeyEnabled])

	// disabled: no recording, no restoring
	ed := &fakeEditor{path: "/b.go", lines: 10}
	h.moveCursor(ed, 4, 4)
	assert.Zero(t, h.store.Len())

	require.NoError(t, h.store.Update("/b.go", position.Record{Line: 1, Timestamp: 1}))
	h.focus(ed)
	assert.Empty(t, ed.reveals())

	require.NoError(t, h.k.Execute(ctx, CommandToggle))
	assert.True(t, h.cfg.Settings().Enabled)
	assert.True(t, h.sess.notified("Cursor tracking enabled"))
}

func TestKeeper_SaveNowWorksWhileDisabled(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.Enabled = false })
	h.start()

	require.NoError(t, h.store.Update("/a.ts", position.Record{Line: 1, Character: 2, Timestamp: 3}))

	var saved []events.PositionsSaved
	_, err := h.bus.SubscribeFunc(events.TopicPositionsSaved, func(_ context.Context, ev any) error {
		p, ok := event.Payload[events.PositionsSaved](ev)
		require.True(t, ok)
		saved = append(saved, p)
		return nil
	})
	require.NoError(t, err)

	h.at(time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local).UnixMilli())
	require.NoError(t, h.k.Execute(context.Background(), CommandSaveNow))

	data, err := os.ReadFile(h.storagePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/a.ts"`)
	assert.Equal(t, "cursorkeep saved 15:04:05", h.sess.status.Text())
	assert.True(t, h.sess.notified("Cursor positions saved"))

	require.Len(t, saved, 1)
	assert.Equal(t, h.storagePath(), saved[0].Path)
	assert.Equal(t, 1, saved[0].Files)
}

func TestKeeper_SaveFailureNotifies(t *testing.T) {
	h := newHarness(t, nil)
	blocker := filepath.Join(h.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	require.NoError(t, h.cfg.Set(config.KeyAlternateDir, filepath.Join(blocker, "sub")))

	h.start()
	assert.Contains(t, h.sess.errors(), "Failed to load cursor positions")

	err := h.k.Execute(context.Background(), CommandSaveNow)
	require.Error(t, err)
	assert.Contains(t, h.sess.errors(), "Failed to save cursor positions")
	assert.Equal(t, IdleText, h.sess.status.Text())
}

func TestKeeper_ToggleTips(t *testing.T) {
	h := newHarness(t, nil)
	h.start()
	ctx := context.Background()

	want := []config.TipMode{config.TipStatusBar, config.Tip5s, config.Tip10s, config.Tip1min, config.TipNone}
	for _, mode := range want {
		require.NoError(t, h.k.Execute(ctx, CommandToggleTips))
		assert.Equal(t, mode, h.cfg.Settings().TipMode)
		assert.Equal(t, "Tip mode: "+string(mode), h.sess.lastNote().msg)
	}
	assert.Zero(t, h.k.loop.Config().TipInterval)

	require.NoError(t, h.k.Execute(ctx, CommandToggleTips))
	assert.Equal(t, 10*time.Second, h.k.loop.Config().TipInterval)

	doc, err := loader.ReadFile(h.cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "statusbar", loader.Section(doc, config.SectionName)[config.KeyTipMode])
}

func TestKeeper_StatusBarTip(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.TipMode = config.TipStatusBar },
		WithTipReset(20*time.Millisecond))
	h.start()

	h.k.onTipTick()
	assert.Equal(t, statusBarTips[0], h.sess.status.Text())

	assert.Eventually(t, func() bool {
		return h.sess.status.Text() == IdleText
	}, time.Second, 5*time.Millisecond)
}

func TestKeeper_MessageTip(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.TipMode = config.Tip1min })
	h.start()

	h.k.onTipTick()
	msgs := h.sess.statusMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, messageTips[0], msgs[0].msg)
	assert.Equal(t, TipDuration, msgs[0].d)
}

func TestKeeper_SaveTickSkippedWhileDisabled(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.Enabled = false })
	h.start()
	require.NoError(t, h.store.Update("/a.ts", position.Record{Timestamp: 1}))

	h.k.onSaveTick()
	_, err := os.Stat(h.storagePath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, h.cfg.Set(config.KeyEnabled, true))
	h.k.onSaveTick()
	_, err = os.Stat(h.storagePath())
	assert.NoError(t, err)
}

func TestKeeper_PeriodicSave(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.SaveInterval = 1 })
	h.start()

	ed := &fakeEditor{path: "/tick.go", lines: 5}
	h.moveCursor(ed, 2, 2)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(h.storagePath())
		return err == nil && strings.Contains(string(data), "/tick.go")
	}, 5*time.Second, 50*time.Millisecond)
}

func TestKeeper_ClearAll(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 1, "character": 1, "timestamp": 1}], "/b.ts": [{"line": 2, "character": 2, "timestamp": 2}]}`)
	h.start()
	require.Equal(t, 2, h.store.Len())

	var cleared atomic.Int32
	_, err := h.bus.SubscribeFunc(events.TopicPositionsCleared, func(context.Context, any) error {
		cleared.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, h.k.Execute(context.Background(), CommandClearAll))
	assert.Zero(t, h.store.Len())
	assert.True(t, h.sess.notified("All cursor positions cleared"))
	assert.Equal(t, int32(1), cleared.Load())

	reloaded := position.NewStore(h.storagePath())
	require.NoError(t, reloaded.Load())
	assert.Zero(t, reloaded.Len())
}

func TestKeeper_ShowStatus(t *testing.T) {
	h := newHarness(t, func(s *config.Settings) { s.TipMode = config.Tip5s })
	h.writeStore(`{"/a.ts": [{"line": 1, "character": 1, "timestamp": 1}], "/b.ts": [{"line": 2, "character": 2, "timestamp": 2}]}`)
	h.start()
	h.sess.open = []string{"/a.ts", "/c.ts"}

	require.NoError(t, h.k.Execute(context.Background(), CommandShowStatus))
	msg := h.sess.lastNote().msg
	assert.True(t, strings.HasPrefix(msg, "Status: enabled"), msg)
	assert.Contains(t, msg, "interval: 3600s")
	assert.Contains(t, msg, "tracked: 2")
	assert.Contains(t, msg, "open: 1")
	assert.Contains(t, msg, "size: 0 KB")
	assert.Contains(t, msg, "tips: 5s")
	assert.Contains(t, msg, "history: 10")
	assert.Contains(t, msg, "location: alternate (")
}

func TestKeeper_ConfigChangeMovesStorage(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 20}
	h.moveCursor(ed, 7, 1)

	newDir := filepath.Join(h.dir, "moved")
	require.NoError(t, h.cfg.Set(config.KeyAlternateDir, newDir))

	assert.Equal(t, filepath.Join(newDir, config.DefaultStorageFile), h.store.Path())
	assert.True(t, h.sess.notified("cursorkeep configuration updated"))

	// flushed to the old file before switching
	old := position.NewStore(h.storagePath())
	require.NoError(t, old.Load())
	_, ok := old.Lookup("/a.ts")
	assert.True(t, ok)

	// the new file was empty
	assert.Zero(t, h.store.Len())
}

func TestKeeper_ConfigChangeAppliesCapAndStatusBar(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 20}
	for i := 0; i < 5; i++ {
		h.at(int64(100 + i))
		h.moveCursor(ed, i, 0)
	}

	require.NoError(t, h.cfg.Set(config.KeyMaxFilesPerDocument, 2))
	assert.Equal(t, 2, h.store.Cap())
	hist := h.store.History("/a.ts")
	require.Len(t, hist, 2)
	assert.Equal(t, 4, hist[0].Line)

	require.NoError(t, h.cfg.Set(config.KeyEnableStatusBar, false))
	assert.False(t, h.sess.status.Shown())

	require.NoError(t, h.cfg.Set(config.KeySaveInterval, 42))
	assert.Equal(t, 42*time.Second, h.k.loop.Config().SaveInterval)
}

func TestKeeper_Dispose(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	ed := &fakeEditor{path: "/a.ts", lines: 20}
	h.moveCursor(ed, 3, 3)

	require.NoError(t, h.k.Dispose())
	require.NoError(t, h.k.Dispose())

	assert.False(t, h.k.Running())
	assert.False(t, h.sess.status.Shown())
	assert.False(t, h.k.loop.Running())
	assert.Zero(t, h.bus.Stats().Subscribers)

	saved := position.NewStore(h.storagePath())
	require.NoError(t, saved.Load())
	_, ok := saved.Lookup("/a.ts")
	assert.True(t, ok)

	// later events are ignored
	h.moveCursor(&fakeEditor{path: "/late.ts", lines: 5}, 1, 1)
	_, ok = h.store.Lookup("/late.ts")
	assert.False(t, ok)

	assert.ErrorIs(t, h.k.Start(context.Background()), ErrDisposed)
}

func TestKeeper_DisposeBeforeStartDoesNotWrite(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.k.Dispose())

	_, err := os.Stat(h.storagePath())
	assert.True(t, os.IsNotExist(err))
}

func TestKeeper_Commands(t *testing.T) {
	h := newHarness(t, nil)

	var ids []string
	for _, c := range h.k.Commands() {
		ids = append(ids, c.ID)
		assert.NotEmpty(t, c.Title)
	}
	assert.Equal(t, []string{
		CommandToggle, CommandSaveNow, CommandRestore,
		CommandToggleTips, CommandClearAll, CommandShowStatus,
	}, ids)

	err := h.k.Execute(context.Background(), "cursorkeep.nope")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestKeeper_RestoreCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.writeStore(`{"/a.ts": [{"line": 4, "character": 0, "timestamp": 1}]}`)
	h.start()
	ctx := context.Background()

	require.NoError(t, h.k.Execute(ctx, CommandRestore))
	assert.Empty(t, h.sess.notes, "no active editor")

	ed := &fakeEditor{path: "/a.ts", lines: 10}
	h.sess.setActive(ed)
	require.NoError(t, h.k.Execute(ctx, CommandRestore))
	assert.Equal(t, host.Position{Line: 4}, ed.Selection())
	assert.Equal(t, "Cursor position restored", h.sess.lastNote().msg)

	h.sess.setActive(&fakeEditor{path: "/new.ts", lines: 10})
	require.NoError(t, h.k.Execute(ctx, CommandRestore))
	assert.Equal(t, "No saved cursor position for this file", h.sess.lastNote().msg)
}

func TestKeeper_ConcurrentEventsAndTicks(t *testing.T) {
	h := newHarness(t, nil)
	h.start()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ed := &fakeEditor{path: filepath.Join("/w", string(rune('a'+i))), lines: 100}
			for j := 0; j < 50; j++ {
				ed.moveTo(j, i)
				_ = h.bus.Publish(context.Background(), event.New(events.TopicSelectionChanged,
					events.SelectionChanged{Editor: ed}, "test"))
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		h.k.onSaveTick()
	}
	wg.Wait()

	assert.Equal(t, 4, h.store.Len())
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 KB"},
		{400, "0 KB"},
		{600, "1 KB"},
		{10 * 1024, "10 KB"},
		{1023 * 1024, "1023 KB"},
		{1024 * 1024, "1.0 MB"},
		{1536 * 1024, "1.5 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "%d bytes", tt.bytes)
	}
}
