// Package events defines the topics and payloads cursorkeep exchanges with
// its host over the event bus.
package events
