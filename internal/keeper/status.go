package keeper

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/position"
)

// Status is a snapshot of the keeper state.
type Status struct {
	Enabled      bool
	SaveInterval int
	TrackedFiles int
	OpenTracked  int
	FileSize     int64
	TipMode      config.TipMode
	Cap          int
	Location     string
	Path         string
}

// String renders the one-line summary shown by the showStatus command.
func (s Status) String() string {
	state := "disabled"
	if s.Enabled {
		state = "enabled"
	}
	parts := []string{
		"Status: " + state,
		fmt.Sprintf("interval: %ds", s.SaveInterval),
		fmt.Sprintf("tracked: %d", s.TrackedFiles),
		fmt.Sprintf("open: %d", s.OpenTracked),
		"size: " + FormatSize(s.FileSize),
		"tips: " + string(s.TipMode),
		fmt.Sprintf("history: %d", s.Cap),
		"location: " + s.Location,
	}
	return strings.Join(parts, " | ")
}

// Status collects the current status. Open files are counted through the
// host session; without a session the count is zero.
func (k *Keeper) Status() Status {
	var open []string
	if k.session != nil {
		open = k.session.OpenPaths()
	}
	return StatusOf(k.cfg.Settings(), k.store, open)
}

// StatusOf builds a Status from settings, a store and the open file paths.
func StatusOf(s config.Settings, store *position.Store, open []string) Status {
	size, err := store.FileSize()
	if err != nil {
		size = 0
	}
	return Status{
		Enabled:      s.Enabled,
		SaveInterval: s.SaveInterval,
		TrackedFiles: store.Len(),
		OpenTracked:  store.CountTracked(open),
		FileSize:     size,
		TipMode:      s.TipMode,
		Cap:          store.Cap(),
		Location:     s.LocationLabel(),
		Path:         store.Path(),
	}
}

// FormatSize renders a byte count as whole kilobytes, or as megabytes with
// one decimal once it reaches 1024 KB.
func FormatSize(n int64) string {
	kb := int64(math.Round(float64(n) / 1024))
	if kb >= 1024 {
		mb := math.Round(float64(kb)/1024*10) / 10
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%d KB", kb)
}
