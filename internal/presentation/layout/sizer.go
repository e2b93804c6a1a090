package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Fallback terminal size when stdout is not a TTY
const (
	DefaultWidth  = 100
	DefaultHeight = 30

	minWidth  = 40
	minHeight = 10
)

// Column widths of the live log table, in display cells
const (
	levelColumnWidth = 7
	minSourceWidth   = 10
	maxSourceWidth   = 28
	minMessageWidth  = 10
)

// Sizer holds the drawable area of the terminal
type Sizer struct {
	Width  int
	Height int
}

// NewSizer creates a sizer for a fixed area
func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// DetectSizer measures stdout, falling back to the default size
func DetectSizer() *Sizer {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return NewSizer(DefaultWidth, DefaultHeight)
	}
	return NewSizer(max(width, minWidth), max(height, minHeight))
}

// displayWidth calculates the actual display width of a string containing emojis and Unicode characters
func (s Sizer) displayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads a string to a specific display width, handling emojis correctly
func (s Sizer) PadString(text string, width int, leftAlign bool) string {
	actualWidth := s.displayWidth(text)
	if actualWidth >= width {
		return text
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return text + padding
	}
	return padding + text
}

// Fit truncates then pads text to exactly width cells
func (s Sizer) Fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if s.displayWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return s.PadString(text, width, true)
}

// BodyLines returns the rows left for content after fixed header and footer
// lines, never less than one.
func (s Sizer) BodyLines(headerLines, footerLines int) int {
	return max(s.Height-headerLines-footerLines, 1)
}

// ColumnWidths are the widths of the live log table columns
type ColumnWidths struct {
	Time    int
	Level   int
	Source  int
	Message int
}

// Columns splits the width between the table columns. The message column
// takes whatever the fixed columns leave.
func (s Sizer) Columns(timeWidth int) ColumnWidths {
	const gaps = 3 // one space between each of the four columns

	cols := ColumnWidths{Time: timeWidth, Level: levelColumnWidth}
	rest := s.Width - cols.Time - cols.Level - gaps

	cols.Source = min(max(rest/4, minSourceWidth), maxSourceWidth)
	cols.Message = max(rest-cols.Source, minMessageWidth)
	return cols
}
