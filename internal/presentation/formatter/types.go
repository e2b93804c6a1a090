// Package formatter renders log records and statistics for one-shot CLI
// output.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

// Formatter writes a batch of log records (newest first)
type Formatter interface {
	Format(records []model.LogRecord) error
}

// Output formats understood by New
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
	OutputLines   = "lines"
	OutputJSONL   = "jsonl"
)

// OutputFormats lists the accepted --output values
var OutputFormats = []string{OutputTable, OutputJSON, OutputCSV, OutputSummary, OutputLines, OutputJSONL}

// Options tune the human-readable formatters
type Options struct {
	// TimeFormat renders record timestamps; defaults to RFC3339 in UTC
	TimeFormat func(time.Time) string
	// MessageWidth caps the message column of the table, in display cells
	MessageWidth int
}

func (o Options) withDefaults() Options {
	if o.TimeFormat == nil {
		o.TimeFormat = func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04:05")
		}
	}
	if o.MessageWidth <= 0 {
		o.MessageWidth = 80
	}
	return o
}

// New returns the formatter for the named output format
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case OutputTable, "":
		return NewTableFormatter(w, opts), nil
	case OutputJSON:
		return NewJSONFormatter(w), nil
	case OutputCSV:
		return NewCSVFormatter(w), nil
	case OutputSummary:
		return NewSummaryFormatter(w, opts), nil
	case OutputLines:
		return NewLineFormatter(w, opts, false), nil
	case OutputJSONL:
		return NewJSONLinesFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid output format '%s': must be one of %s", format, strings.Join(OutputFormats, ", "))
	}
}
