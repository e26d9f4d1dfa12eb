package events

import "github.com/dshills/cursorkeep/internal/event/topic"

// Position store topics.
const (
	// TopicPositionsSaved is published after the position file was written.
	TopicPositionsSaved topic.Topic = "positions.saved"

	// TopicPositionsCleared is published after every position was dropped.
	TopicPositionsCleared topic.Topic = "positions.cleared"
)

// PositionsSaved reports a completed save.
type PositionsSaved struct {
	Path    string
	Bytes   int
	Files   int
	Trimmed bool
}

// PositionsCleared reports a clear-all.
type PositionsCleared struct {
	Path string
}
