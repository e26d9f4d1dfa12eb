package events

import (
	"github.com/dshills/cursorkeep/internal/event/topic"
	"github.com/dshills/cursorkeep/internal/host"
)

// Editor event topics.
const (
	// TopicSelectionChanged is published when the selection of an editor moves.
	TopicSelectionChanged topic.Topic = "editor.selection.changed"

	// TopicActiveEditorChanged is published when focus moves to another editor.
	TopicActiveEditorChanged topic.Topic = "editor.active.changed"
)

// SelectionChanged carries the editor whose selection moved.
type SelectionChanged struct {
	Editor host.Editor

	// Kind describes what moved the selection ("keyboard", "mouse", "command").
	Kind string
}

// ActiveEditorChanged carries the newly focused editor. Editor is nil when
// focus left all editors.
type ActiveEditorChanged struct {
	Editor host.Editor
}
