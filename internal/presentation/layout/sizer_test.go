package layout

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestNewSizer(t *testing.T) {
	sizer := NewSizer(80, 24)
	if sizer.Width != 80 || sizer.Height != 24 {
		t.Errorf("Expected 80x24, got %dx%d", sizer.Width, sizer.Height)
	}
}

func TestDetectSizer(t *testing.T) {
	// stdout is not a terminal under go test
	sizer := DetectSizer()
	if sizer.Width < minWidth || sizer.Height < minHeight {
		t.Errorf("DetectSizer returned %dx%d", sizer.Width, sizer.Height)
	}
}

func TestSizerBodyLines(t *testing.T) {
	tests := []struct {
		name        string
		height      int
		headerLines int
		footerLines int
		want        int
	}{
		{name: "standard_layout", height: 24, headerLines: 5, footerLines: 3, want: 16},
		{name: "no_footer", height: 24, headerLines: 2, footerLines: 0, want: 22},
		{name: "overflow_keeps_one_line", height: 6, headerLines: 5, footerLines: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSizer(80, tt.height).BodyLines(tt.headerLines, tt.footerLines)
			if got != tt.want {
				t.Errorf("BodyLines() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSizerPadString(t *testing.T) {
	s := NewSizer(80, 24)

	tests := []struct {
		name      string
		input     string
		width     int
		leftAlign bool
		want      string
	}{
		{name: "left_align", input: "ab", width: 5, leftAlign: true, want: "ab   "},
		{name: "right_align", input: "ab", width: 5, leftAlign: false, want: "   ab"},
		{name: "wide_runes", input: "日本", width: 6, leftAlign: true, want: "日本  "},
		{name: "already_wide_enough", input: "abcdef", width: 3, leftAlign: true, want: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PadString(tt.input, tt.width, tt.leftAlign); got != tt.want {
				t.Errorf("PadString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSizerFit(t *testing.T) {
	s := NewSizer(80, 24)

	inputs := []string{"", "short", "a much longer value than fits", "日本語のメッセージです"}
	for _, in := range inputs {
		got := s.Fit(in, 10)
		if w := runewidth.StringWidth(got); w != 10 {
			t.Errorf("Fit(%q) width = %d, want 10 (%q)", in, w, got)
		}
	}
	if s.Fit("abc", 0) != "" {
		t.Error("Fit with zero width should be empty")
	}
}

func TestSizerColumns(t *testing.T) {
	tests := []struct {
		name  string
		width int
	}{
		{name: "standard", width: 80},
		{name: "wide", width: 200},
		{name: "narrow", width: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := NewSizer(tt.width, 24).Columns(8)
			if cols.Time != 8 || cols.Level != levelColumnWidth {
				t.Errorf("unexpected fixed columns %+v", cols)
			}
			if cols.Source < minSourceWidth || cols.Source > maxSourceWidth {
				t.Errorf("source width %d out of range", cols.Source)
			}
			if cols.Message < minMessageWidth {
				t.Errorf("message width %d below minimum", cols.Message)
			}
			total := cols.Time + cols.Level + cols.Source + cols.Message + 3
			if tt.width >= 80 && total != tt.width {
				t.Errorf("columns use %d cells, want %d", total, tt.width)
			}
		})
	}
}
