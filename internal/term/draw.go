package term

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	styleText    = tcell.StyleDefault
	styleGutter  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleMessage = tcell.StyleDefault
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// draw repaints the whole screen.
func (v *Viewer) draw() {
	view := v.activeView()
	if view == nil {
		return
	}

	s := v.screen
	w, h := s.Size()
	s.Clear()

	doc := view.Document()
	textH := v.textHeight()
	top := view.Top()
	gutter := len(fmt.Sprint(doc.LineCount())) + 1

	for row := 0; row < textH && top+row < doc.LineCount(); row++ {
		n := top + row
		putString(s, 0, row, w, fmt.Sprintf("%*d ", gutter-1, n+1), styleGutter)
		putString(s, gutter, row, w, expandTabs(doc.Line(n)), styleText)
	}

	if h >= 2 {
		left, right := v.statusLine(view)
		fill(s, h-2, w, styleStatus)
		putString(s, 0, h-2, w, left, styleStatus)
		putString(s, w-runewidth.StringWidth(right), h-2, w, right, styleStatus)
	}
	if h >= 1 {
		msg, style := v.messageLine()
		putString(s, 0, h-1, w, msg, style)
	}

	cur := view.Selection()
	if cur.Line >= top && cur.Line < top+textH {
		prefix := string([]rune(doc.Line(cur.Line))[:cur.Character])
		s.ShowCursor(gutter+runewidth.StringWidth(expandTabs(prefix)), cur.Line-top)
	} else {
		s.HideCursor()
	}
	s.Show()
}

// putString draws text at (x, y), clipped at width w. It returns the next
// column.
func putString(s tcell.Screen, x, y, w int, text string, style tcell.Style) int {
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > w {
			break
		}
		if x >= 0 {
			s.SetContent(x, y, r, nil, style)
		}
		x += rw
	}
	return x
}

func fill(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

// expandTabs renders each tab as a single space so that cursor columns
// match rune offsets.
func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", " ")
}

func displayName(path string) string {
	if path == "" {
		return "[scratch]"
	}
	return filepath.Base(path)
}
