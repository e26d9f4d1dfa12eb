package events

import "github.com/dshills/cursorkeep/internal/event/topic"

// TopicConfigChanged is published after cursorkeep settings change.
const TopicConfigChanged topic.Topic = "config.changed"

// ConfigChanged describes a settings change. Keys is empty for a full reload.
type ConfigChanged struct {
	Keys   []string
	Source string
}

// Affects reports whether key is covered by the change.
func (c ConfigChanged) Affects(key string) bool {
	if len(c.Keys) == 0 {
		return true
	}
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}
