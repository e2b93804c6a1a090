package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// TableFormatter prints records in a box-drawn table. Widths are measured in
// display cells so wide runes line up.
type TableFormatter struct {
	w       io.Writer
	opts    Options
	headers []string
}

func NewTableFormatter(w io.Writer, opts Options) *TableFormatter {
	return &TableFormatter{
		w:       w,
		opts:    opts.withDefaults(),
		headers: []string{"Time", "Level", "Source", "Message"},
	}
}

func (f *TableFormatter) Format(records []model.LogRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, f.row(r))
	}

	widths := f.calculateColumnWidths(rows)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths)
	}
	f.printBorder(widths, "bottom")

	_, err := fmt.Fprintf(f.w, "%s records\n", util.FormatNumber(len(records)))
	return err
}

func (f *TableFormatter) row(r model.LogRecord) []string {
	return []string{
		util.SanitizeLine(r.TimestampText(f.opts.TimeFormat)),
		util.SanitizeLine(r.Level),
		util.SanitizeLine(r.Source()),
		util.TruncateToWidth(util.SanitizeLine(r.Message), f.opts.MessageWidth),
	}
}

// calculateColumnWidths sizes each column to its widest cell
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}

	for _, row := range rows {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Level column fits WARNING even when the batch has none
	widths[1] = max(widths[1], len(model.LevelWarning))
	return widths
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(f.w, b.String())
}

func (f *TableFormatter) printRow(values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		b.WriteString(util.PadToWidth(value, widths[i]))
		b.WriteString(" │")
	}
	fmt.Fprintln(f.w, b.String())
}
