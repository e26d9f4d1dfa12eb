// Package term is a small read-only terminal host for cursorkeep.
//
// A Viewer shows one file at a time in a tcell screen and implements
// host.Session. Cursor movement publishes editor.selection.changed and
// switching files publishes editor.active.changed on the event bus, which
// is all cursorkeep needs to record and restore positions.
//
// Layout, top to bottom: the text area, a status line (file, position,
// cursorkeep status item, file index) and a message line for notifications
// and transient status messages.
package term
