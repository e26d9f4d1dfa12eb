package keeper

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
)

type fakeEditor struct {
	mu       sync.Mutex
	path     string
	sel      host.Position
	lines    int
	revealed []host.Position

	// when set, SetSelection publishes selection-changed like a real host
	bus *event.Bus
}

func (e *fakeEditor) Path() string { return e.path }

func (e *fakeEditor) Selection() host.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

func (e *fakeEditor) SetSelection(pos host.Position) {
	e.mu.Lock()
	e.sel = pos
	bus := e.bus
	e.mu.Unlock()

	if bus != nil {
		_ = bus.Publish(context.Background(), event.New(events.TopicSelectionChanged,
			events.SelectionChanged{Editor: e, Kind: "command"}, "fake"))
	}
}

func (e *fakeEditor) Reveal(pos host.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.revealed = append(e.revealed, pos)
}

func (e *fakeEditor) LineCount() int { return e.lines }

func (e *fakeEditor) moveTo(line, char int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = host.Position{Line: line, Character: char}
}

func (e *fakeEditor) reveals() []host.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]host.Position(nil), e.revealed...)
}

type fakeStatus struct {
	mu      sync.Mutex
	text    string
	tooltip string
	shown   bool
}

func (s *fakeStatus) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *fakeStatus) SetTooltip(tooltip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = tooltip
}

func (s *fakeStatus) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = true
}

func (s *fakeStatus) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = false
}

func (s *fakeStatus) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *fakeStatus) Shown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

type note struct {
	level host.Level
	msg   string
}

type statusMessage struct {
	msg string
	d   time.Duration
}

type fakeSession struct {
	mu       sync.Mutex
	active   *fakeEditor
	open     []string
	notes    []note
	messages []statusMessage
	status   *fakeStatus
}

func newFakeSession() *fakeSession {
	return &fakeSession{status: &fakeStatus{}}
}

func (s *fakeSession) ActiveEditor() (host.Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, false
	}
	return s.active, true
}

func (s *fakeSession) OpenPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.open...)
}

func (s *fakeSession) Notify(level host.Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note{level, msg})
}

func (s *fakeSession) StatusMessage(msg string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, statusMessage{msg, d})
}

func (s *fakeSession) StatusItem() host.StatusItem { return s.status }

func (s *fakeSession) setActive(e *fakeEditor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = e
}

func (s *fakeSession) notified(msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.msg == msg {
			return true
		}
	}
	return false
}

func (s *fakeSession) lastNote() note {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notes) == 0 {
		return note{}
	}
	return s.notes[len(s.notes)-1]
}

func (s *fakeSession) errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.notes {
		if n.level == host.LevelError {
			out = append(out, n.msg)
		}
	}
	return out
}

func (s *fakeSession) statusMessages() []statusMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusMessage(nil), s.messages...)
}
