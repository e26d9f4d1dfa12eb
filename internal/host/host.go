// Package host defines the editor session that cursorkeep runs inside.
//
// cursorkeep never talks to an editor directly. A host adapter implements
// Session and Editor over its own documents and UI, and publishes host events
// on the event bus. Everything above this package can therefore be exercised
// with in-memory fakes.
package host

import (
	"fmt"
	"time"
)

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int
	Character int
}

// String returns "line:character" using one-based numbers for display.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Editor is a single open document view.
type Editor interface {
	// Path returns the absolute, host-native file path, or "" for
	// documents that are not backed by a file.
	Path() string

	// Selection returns the active end of the primary selection.
	Selection() Position

	// SetSelection collapses the primary selection to pos.
	SetSelection(pos Position)

	// Reveal scrolls pos into the center of the view.
	Reveal(pos Position)

	// LineCount returns the number of lines in the current document revision.
	LineCount() int
}

// Level is the severity of a user-visible notification.
type Level int

const (
	// LevelInfo is an informational notification.
	LevelInfo Level = iota
	// LevelWarning is a warning notification.
	LevelWarning
	// LevelError is an error notification.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusItem is a persistent status-bar entry owned by cursorkeep.
type StatusItem interface {
	SetText(text string)
	SetTooltip(tooltip string)
	Show()
	Hide()
}

// Session is the editor platform as seen by cursorkeep.
//
// Editor.SetSelection may publish events synchronously. Notify,
// StatusMessage and the StatusItem methods must not.
type Session interface {
	// ActiveEditor returns the focused editor, if any.
	ActiveEditor() (Editor, bool)

	// OpenPaths returns the file paths of every open tab.
	OpenPaths() []string

	// Notify shows a notification.
	Notify(level Level, message string)

	// StatusMessage shows a transient status-bar message for d.
	StatusMessage(message string, d time.Duration)

	// StatusItem returns the status-bar entry reserved for cursorkeep.
	StatusItem() StatusItem
}
