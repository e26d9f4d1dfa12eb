package term

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
	"github.com/dshills/cursorkeep/internal/keeper"
	"github.com/dshills/cursorkeep/internal/logging"
)

// ErrNoDocuments is returned by New without documents.
var ErrNoDocuments = errors.New("no documents to view")

// CommandRunner executes a command by ID.
type CommandRunner func(ctx context.Context, id string) error

// commandKeys binds single keys to cursorkeep commands.
var commandKeys = map[rune]string{
	's': keeper.CommandSaveNow,
	'r': keeper.CommandRestore,
	't': keeper.CommandToggleTips,
	'e': keeper.CommandToggle,
	'C': keeper.CommandClearAll,
	'?': keeper.CommandShowStatus,
}

// quitSignal is posted to stop Run.
type quitSignal struct{}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithClock replaces time.Now for transient message expiry.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// Viewer is a terminal host session.
type Viewer struct {
	screen tcell.Screen
	bus    *event.Bus
	logger *logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	views     []*View
	active    int
	status    *StatusItem
	message   string
	level     host.Level
	transient string
	until     time.Time
	run       CommandRunner
}

// New creates a viewer over docs. The screen must already be initialized.
func New(screen tcell.Screen, bus *event.Bus, docs []*Document, opts ...Option) (*Viewer, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	v := &Viewer{
		screen: screen,
		bus:    bus,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	pub := publisher(bus, func(err error) {
		v.logger.Warn("publish: %v", err)
	})
	for _, doc := range docs {
		v.views = append(v.views, newView(doc, pub))
	}
	v.status = &StatusItem{changed: v.redraw}
	v.layout()
	return v, nil
}

// SetCommandRunner sets the target of command keys.
func (v *Viewer) SetCommandRunner(run CommandRunner) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.run = run
}

// ActiveEditor implements host.Session.
func (v *Viewer) ActiveEditor() (host.Editor, bool) {
	view := v.activeView()
	if view == nil {
		return nil, false
	}
	return view, true
}

// OpenPaths implements host.Session.
func (v *Viewer) OpenPaths() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	paths := make([]string, 0, len(v.views))
	for _, view := range v.views {
		if p := view.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Notify implements host.Session by replacing the message line.
func (v *Viewer) Notify(level host.Level, msg string) {
	v.mu.Lock()
	v.message = msg
	v.level = level
	v.mu.Unlock()

	v.logger.Debug("notify %s: %s", level, msg)
	v.redraw()
}

// StatusMessage implements host.Session. The message overrides the message
// line until d has passed.
func (v *Viewer) StatusMessage(msg string, d time.Duration) {
	v.mu.Lock()
	v.transient = msg
	v.until = v.now().Add(d)
	v.mu.Unlock()

	v.redraw()
	time.AfterFunc(d, v.redraw)
}

// StatusItem implements host.Session.
func (v *Viewer) StatusItem() host.StatusItem {
	return v.status
}

// Views returns the open views.
func (v *Viewer) Views() []*View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*View(nil), v.views...)
}

// Run focuses the first view and processes terminal events until the user
// quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
		case <-stop:
		}
	}()

	v.focus(0)
	v.draw()

	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.layout()
		case *tcell.EventKey:
			if v.handleKey(ctx, e) {
				return nil
			}
		case *tcell.EventInterrupt:
			if _, ok := e.Data().(quitSignal); ok {
				return ctx.Err()
			}
		}
		v.draw()
	}
}

// handleKey applies a key press. It reports whether the viewer should quit.
func (v *Viewer) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	view := v.activeView()
	page := v.textHeight()

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyUp:
		view.move(-1, 0)
	case tcell.KeyDown:
		view.move(1, 0)
	case tcell.KeyLeft:
		view.move(0, -1)
	case tcell.KeyRight:
		view.move(0, 1)
	case tcell.KeyPgUp:
		view.move(-page, 0)
	case tcell.KeyPgDn:
		view.move(page, 0)
	case tcell.KeyHome:
		view.moveTo(host.Position{Line: view.Selection().Line})
	case tcell.KeyEnd:
		line := view.Selection().Line
		view.moveTo(host.Position{Line: line, Character: view.Document().LineLen(line)})
	case tcell.KeyTab:
		v.cycle(1)
	case tcell.KeyBacktab:
		v.cycle(-1)
	case tcell.KeyRune:
		return v.handleRune(ctx, view, ev.Rune())
	}
	return false
}

func (v *Viewer) handleRune(ctx context.Context, view *View, r rune) bool {
	switch r {
	case 'q':
		return true
	case 'k':
		view.move(-1, 0)
	case 'j':
		view.move(1, 0)
	case 'h':
		view.move(0, -1)
	case 'l':
		view.move(0, 1)
	default:
		if id, ok := commandKeys[r]; ok {
			v.execute(ctx, id)
		}
	}
	return false
}

func (v *Viewer) execute(ctx context.Context, id string) {
	v.mu.Lock()
	run := v.run
	v.mu.Unlock()

	if run == nil {
		v.Notify(host.LevelWarning, "cursorkeep is not running")
		return
	}
	if err := run(ctx, id); err != nil {
		v.logger.Error("command %s: %v", id, err)
	}
}

// cycle moves focus by delta views, wrapping around.
func (v *Viewer) cycle(delta int) {
	v.mu.Lock()
	n := len(v.views)
	next := ((v.active+delta)%n + n) % n
	v.mu.Unlock()

	v.focus(next)
}

func (v *Viewer) focus(i int) {
	v.mu.Lock()
	if i < 0 || i >= len(v.views) {
		v.mu.Unlock()
		return
	}
	v.active = i
	view := v.views[i]
	v.mu.Unlock()

	err := v.bus.Publish(context.Background(), event.New(events.TopicActiveEditorChanged,
		events.ActiveEditorChanged{Editor: view}, "term"))
	if err != nil {
		v.logger.Warn("publish: %v", err)
	}
}

func (v *Viewer) activeView() *View {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.views) == 0 {
		return nil
	}
	return v.views[v.active]
}

// textHeight is the number of rows available for text.
func (v *Viewer) textHeight() int {
	_, h := v.screen.Size()
	if h -= 2; h < 1 {
		h = 1
	}
	return h
}

func (v *Viewer) layout() {
	h := v.textHeight()
	for _, view := range v.Views() {
		view.setHeight(h)
	}
}

// redraw asks Run to repaint from its own goroutine.
func (v *Viewer) redraw() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// messageLine returns the text and style of the bottom line.
func (v *Viewer) messageLine() (string, tcell.Style) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.transient != "" && v.now().Before(v.until) {
		return v.transient, styleMessage
	}
	switch v.level {
	case host.LevelError:
		return v.message, styleError
	case host.LevelWarning:
		return v.message, styleWarning
	default:
		return v.message, styleMessage
	}
}

func (v *Viewer) position() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active, len(v.views)
}

func (v *Viewer) statusLine(view *View) (left, right string) {
	pos := view.Selection()
	left = fmt.Sprintf(" %s  %s", displayName(view.Path()), pos)

	i, n := v.position()
	right = fmt.Sprintf("[%d/%d] ", i+1, n)
	if text, visible := v.status.Text(); visible && text != "" {
		right = text + "  " + right
	}
	return left, right
}
