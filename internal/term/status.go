package term

import "sync"

// StatusItem is the cursorkeep entry on the viewer's status line.
type StatusItem struct {
	mu      sync.Mutex
	text    string
	tooltip string
	visible bool

	changed func()
}

// SetText implements host.StatusItem.
func (s *StatusItem) SetText(text string) {
	s.update(func() { s.text = text })
}

// SetTooltip implements host.StatusItem. The tooltip is kept but not drawn.
func (s *StatusItem) SetTooltip(tooltip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = tooltip
}

// Show implements host.StatusItem.
func (s *StatusItem) Show() {
	s.update(func() { s.visible = true })
}

// Hide implements host.StatusItem.
func (s *StatusItem) Hide() {
	s.update(func() { s.visible = false })
}

// Text returns the current text and whether the item is visible.
func (s *StatusItem) Text() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.visible
}

// Tooltip returns the tooltip.
func (s *StatusItem) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

func (s *StatusItem) update(fn func()) {
	s.mu.Lock()
	fn()
	changed := s.changed
	s.mu.Unlock()

	if changed != nil {
		changed()
	}
}
