package display

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/presentation/layout"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// DisplayConfig controls the live terminal view
type DisplayConfig struct {
	// TimeFormat is "12h" or "24h"
	TimeFormat string
	// Out defaults to os.Stdout
	Out io.Writer
	// Size overrides terminal detection when set
	Size *layout.Sizer
}

// TerminalDisplay draws full frames on the alternate screen. Every frame is
// written in one call, overwriting the previous one line by line.
type TerminalDisplay struct {
	config            *DisplayConfig
	out               io.Writer
	mu                sync.Mutex
	inAlternateScreen bool
	lastMode          displayMode
	isFirstRender     bool
}

type displayMode int

const (
	modeNormal displayMode = iota
	modeHelp
	modeLoading
)

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{
		config:        config,
		out:           out,
		isFirstRender: true,
	}
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()

	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen+util.ClearScreen+util.MoveCursorHome+util.ResetScrollRegion+util.HideCursor)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()

	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

func (td *TerminalDisplay) sizer() *layout.Sizer {
	if td.config.Size != nil {
		return td.config.Size
	}
	return layout.DetectSizer()
}

func determineDisplayMode(state model.InteractionState) displayMode {
	if state.ShowHelp {
		return modeHelp
	}
	if state.IsLoading {
		return modeLoading
	}
	return modeNormal
}

// RenderWithState draws one frame for view under the given interaction state
func (td *TerminalDisplay) RenderWithState(view layout.View, state model.InteractionState) {
	sizer := td.sizer()
	if view.FormatTime == nil {
		tp := util.GetTimeProvider()
		view.FormatTime = func(t time.Time) string {
			return tp.FormatClock(t, td.config.TimeFormat)
		}
	}

	var lines []string
	mode := determineDisplayMode(state)
	switch mode {
	case modeHelp:
		lines = HelpLines(sizer)
	case modeLoading:
		lines = loadingLines(state.StatusMessage, sizer)
	default:
		lines = layout.GetLayoutStrategy(state.LayoutStyle).Render(view, sizer)
		lines = append(lines, StatusLine(state, sizer))
	}

	td.mu.Lock()
	defer td.mu.Unlock()

	w := bufio.NewWriter(td.out)
	if td.isFirstRender || mode != td.lastMode {
		w.WriteString(util.ClearScreen)
		td.isFirstRender = false
		td.lastMode = mode
	}
	w.WriteString(util.MoveCursorHome)
	for i, line := range lines {
		if i >= sizer.Height {
			break
		}
		w.WriteString(line)
		w.WriteString(util.ColorReset + util.ClearLineFromCursor)
		if i < len(lines)-1 && i < sizer.Height-1 {
			w.WriteString("\r\n")
		}
	}
	w.WriteString(util.ClearToEndOfScreen)
	if err := w.Flush(); err != nil {
		util.LogDebug("frame write failed", util.F("error", err.Error()))
	}
}

// StatusLine renders the input prompt while typing, otherwise the last
// status message.
func StatusLine(state model.InteractionState, sizer *layout.Sizer) string {
	switch state.InputMode {
	case model.InputSearch:
		return promptLine("Search", state.InputBuffer, sizer)
	case model.InputModule:
		return promptLine("Module", state.InputBuffer, sizer)
	}
	if state.StatusMessage == "" {
		return ""
	}
	return util.Colorize(util.ColorCyan, util.TruncateToWidth(util.SanitizeLine(state.StatusMessage), sizer.Width))
}

func promptLine(label, buffer string, sizer *layout.Sizer) string {
	prefix := label + ": "
	hint := "  (Enter apply, Esc cancel)"
	room := sizer.Width - util.GetDisplayWidth(prefix) - util.GetDisplayWidth(hint) - 1

	text := util.SanitizeLine(buffer)
	// keep the tail visible while typing
	for util.GetDisplayWidth(text) > room && text != "" {
		_, size := firstRune(text)
		text = text[size:]
	}
	return util.ColorBold + prefix + util.ColorReset + text + "█" + util.Colorize(util.ColorGray, hint)
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i > 0 {
			return r, i
		}
	}
	return 0, len(s)
}

// HelpLines renders the key reference
func HelpLines(sizer *layout.Sizer) []string {
	lines := []string{
		util.FormatHeaderTitle("Log Monitor - Help"),
		strings.Repeat("═", min(sizer.Width, 80)),
		"",
		"Polling:",
		"  p / space  - Pause or resume polling",
		"  r          - Reload the buffer with a full fetch",
		"",
		"Filters (each change restarts from the newest logs):",
		"  a          - Level ALL",
		"  i          - Level INFO",
		"  w          - Level WARNING",
		"  e          - Level ERROR",
		"  /          - Search text",
		"  m          - Module name",
		"  c          - Clear module and search",
		"  s          - Save filters to the profile file",
		"",
		"View:",
		"  t          - Switch layout (Full / Compact)",
		"  h / ?      - Toggle this help",
		"  q / Ctrl+C - Quit",
		"",
		"Error rate colours:",
		"  " + util.Colorize(util.ColorGreen, "green") + "  - up to 10%",
		"  " + util.Colorize(util.ColorYellow, "yellow") + " - above 10%",
		"  " + util.Colorize(util.ColorRed, "red") + "    - above 20%",
		"",
		strings.Repeat("═", min(sizer.Width, 80)),
		"Press 'h' to return...",
	}
	return lines
}

func loadingLines(message string, sizer *layout.Sizer) []string {
	if message == "" {
		message = "Loading logs..."
	}
	message = util.TruncateToWidth(util.SanitizeLine(message), sizer.Width-4)

	top := max(sizer.Height/2-1, 0)
	lines := make([]string, top, top+3)
	lines = append(lines,
		centerText(util.FormatHeaderTitle("LOG MONITOR"), "LOG MONITOR", sizer.Width),
		centerText(message, message, sizer.Width),
		centerText(util.Colorize(util.ColorGray, "Press 'q' to quit"), "Press 'q' to quit", sizer.Width),
	)
	return lines
}

// centerText pads styled so that its visible text is centred
func centerText(styled, visible string, width int) string {
	pad := (width - util.GetDisplayWidth(visible)) / 2
	if pad <= 0 {
		return styled
	}
	return strings.Repeat(" ", pad) + styled
}
