package position

import (
	"sort"
	"time"

	"github.com/dshills/cursorkeep/internal/host"
)

// Record is a stored cursor position for one file.
type Record struct {
	Line      int   `json:"line"`
	Character int   `json:"character"`
	Timestamp int64 `json:"timestamp"`
}

// NewRecord captures pos at time at.
func NewRecord(pos host.Position, at time.Time) Record {
	return Record{
		Line:      pos.Line,
		Character: pos.Character,
		Timestamp: at.UnixMilli(),
	}
}

// Position returns the record as a host position.
func (r Record) Position() host.Position {
	return host.Position{Line: r.Line, Character: r.Character}
}

// Time returns the capture time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Valid reports whether line and character are non-negative.
func (r Record) Valid() bool {
	return r.Line >= 0 && r.Character >= 0
}

// sortNewestFirst orders records by descending timestamp, keeping the
// existing order for equal timestamps.
func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp > recs[j].Timestamp
	})
}

// newest returns the largest timestamp in recs.
func newest(recs []Record) int64 {
	var ts int64
	for i, r := range recs {
		if i == 0 || r.Timestamp > ts {
			ts = r.Timestamp
		}
	}
	return ts
}
