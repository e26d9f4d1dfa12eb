package term

import (
	"context"
	"sync"

	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
)

// Selection change kinds.
const (
	KindKeyboard = "keyboard"
	KindCommand  = "command"
)

// View is a document with a cursor and a scroll offset. It implements
// host.Editor.
type View struct {
	mu     sync.Mutex
	doc    *Document
	cursor host.Position
	top    int
	height int

	publish func(ev any)
}

// newView creates a view. publish may be nil.
func newView(doc *Document, publish func(ev any)) *View {
	return &View{doc: doc, height: 1, publish: publish}
}

// Path implements host.Editor.
func (v *View) Path() string { return v.doc.Path() }

// LineCount implements host.Editor.
func (v *View) LineCount() int { return v.doc.LineCount() }

// Selection implements host.Editor.
func (v *View) Selection() host.Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// SetSelection implements host.Editor. The position is clamped to the
// document and a selection change is published.
func (v *View) SetSelection(pos host.Position) {
	v.mu.Lock()
	v.cursor = v.clamp(pos)
	v.scrollToCursorLocked()
	v.mu.Unlock()

	v.changed(KindCommand)
}

// Reveal implements host.Editor by centering pos vertically.
func (v *View) Reveal(pos host.Position) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pos = v.clamp(pos)
	v.top = pos.Line - v.height/2
	v.clampTopLocked()
}

// Document returns the viewed document.
func (v *View) Document() *Document { return v.doc }

// Top returns the first visible line.
func (v *View) Top() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.top
}

// move shifts the cursor by lines/chars and publishes the change when the
// cursor actually moved.
func (v *View) move(lines, chars int) {
	v.mu.Lock()
	before := v.cursor
	pos := host.Position{Line: v.cursor.Line + lines, Character: v.cursor.Character + chars}
	if lines != 0 {
		pos.Character = v.cursor.Character
	}
	v.cursor = v.clamp(pos)
	v.scrollToCursorLocked()
	moved := v.cursor != before
	v.mu.Unlock()

	if moved {
		v.changed(KindKeyboard)
	}
}

// moveTo sets the cursor from a key press.
func (v *View) moveTo(pos host.Position) {
	v.mu.Lock()
	before := v.cursor
	v.cursor = v.clamp(pos)
	v.scrollToCursorLocked()
	moved := v.cursor != before
	v.mu.Unlock()

	if moved {
		v.changed(KindKeyboard)
	}
}

func (v *View) setHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h < 1 {
		h = 1
	}
	v.height = h
	v.scrollToCursorLocked()
}

func (v *View) changed(kind string) {
	if v.publish == nil {
		return
	}
	v.publish(event.New(events.TopicSelectionChanged, events.SelectionChanged{Editor: v, Kind: kind}, "term"))
}

func (v *View) clamp(pos host.Position) host.Position {
	last := v.doc.LineCount() - 1
	if pos.Line > last {
		pos.Line = last
	}
	if pos.Line < 0 {
		pos.Line = 0
	}
	if n := v.doc.LineLen(pos.Line); pos.Character > n {
		pos.Character = n
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	return pos
}

func (v *View) scrollToCursorLocked() {
	if v.cursor.Line < v.top {
		v.top = v.cursor.Line
	}
	if v.cursor.Line >= v.top+v.height {
		v.top = v.cursor.Line - v.height + 1
	}
	v.clampTopLocked()
}

func (v *View) clampTopLocked() {
	maxTop := v.doc.LineCount() - v.height
	if v.top > maxTop {
		v.top = maxTop
	}
	if v.top < 0 {
		v.top = 0
	}
}

// publisher adapts a bus to the view's publish hook.
func publisher(bus *event.Bus, onErr func(error)) func(ev any) {
	return func(ev any) {
		if err := bus.Publish(context.Background(), ev); err != nil && onErr != nil {
			onErr(err)
		}
	}
}
