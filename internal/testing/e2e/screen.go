// Package e2e drives the built binary through a pseudo terminal and
// reconstructs what the user would see.
package e2e

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Screen is a minimal VT100 emulator covering the sequences the live view
// emits: cursor home/position, erase in display/line, SGR and private
// modes (ignored), CR and LF.
type Screen struct {
	rows, cols int
	cells      [][]rune
	x, y       int
}

// NewScreen returns a blank rows x cols screen
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, cells: make([][]rune, rows)}
	for i := range s.cells {
		s.cells[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Feed interprets terminal output
func (s *Screen) Feed(output string) {
	runes := []rune(output)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\x1b':
			i = s.escape(runes, i)
		case r == '\r':
			s.x = 0
		case r == '\n':
			s.lineFeed()
		case r == '\b':
			s.x = max(s.x-1, 0)
		case r < 32:
			// other control characters do not print
		default:
			s.put(r)
		}
	}
}

// escape consumes the sequence starting at runes[i] and returns the index
// of its last rune
func (s *Screen) escape(runes []rune, i int) int {
	if i+1 >= len(runes) || runes[i+1] != '[' {
		return i + 1
	}
	j := i + 2
	private := j < len(runes) && runes[j] == '?'
	if private {
		j++
	}
	start := j
	for j < len(runes) && (runes[j] >= '0' && runes[j] <= '9' || runes[j] == ';') {
		j++
	}
	if j >= len(runes) {
		return j
	}
	if !private {
		s.csi(runes[j], parseParams(string(runes[start:j])))
	}
	return j
}

func parseParams(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	params := make([]int, len(parts))
	for i, p := range parts {
		params[i], _ = strconv.Atoi(p)
	}
	return params
}

func param(params []int, i, def int) int {
	if i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

func (s *Screen) csi(cmd rune, params []int) {
	switch cmd {
	case 'H', 'f':
		s.y = min(param(params, 0, 1), s.rows) - 1
		s.x = min(param(params, 1, 1), s.cols) - 1
	case 'J':
		mode := 0
		if len(params) > 0 {
			mode = params[0]
		}
		switch mode {
		case 0:
			s.eraseLine(s.x, s.cols)
			for y := s.y + 1; y < s.rows; y++ {
				s.cells[y] = blankRow(s.cols)
			}
		case 2, 3:
			for y := range s.cells {
				s.cells[y] = blankRow(s.cols)
			}
		}
	case 'K':
		if len(params) > 0 && params[0] == 2 {
			s.eraseLine(0, s.cols)
		} else {
			s.eraseLine(s.x, s.cols)
		}
	}
}

func (s *Screen) eraseLine(from, to int) {
	for x := from; x < to && x < s.cols; x++ {
		s.cells[s.y][x] = ' '
	}
}

func (s *Screen) lineFeed() {
	if s.y < s.rows-1 {
		s.y++
		return
	}
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankRow(s.cols)
}

func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if s.x+w > s.cols {
		s.x = 0
		s.lineFeed()
	}
	s.cells[s.y][s.x] = r
	// the right half of a wide rune is left empty
	for k := 1; k < w; k++ {
		s.cells[s.y][s.x+k] = 0
	}
	s.x += w
}

// Line returns row y with trailing spaces removed
func (s *Screen) Line(y int) string {
	if y < 0 || y >= s.rows {
		return ""
	}
	var b strings.Builder
	for _, r := range s.cells[y] {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines returns every row
func (s *Screen) Lines() []string {
	lines := make([]string, s.rows)
	for y := range lines {
		lines[y] = s.Line(y)
	}
	return lines
}

// String renders the screen as newline-separated rows
func (s *Screen) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Contains reports whether any row contains text
func (s *Screen) Contains(text string) bool {
	for y := 0; y < s.rows; y++ {
		if strings.Contains(s.Line(y), text) {
			return true
		}
	}
	return false
}
