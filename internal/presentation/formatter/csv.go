package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

// Format writes one row per record with RFC3339 timestamps. Messages are
// written verbatim; quoting is left to encoding/csv.
func (f *CSVFormatter) Format(records []model.LogRecord) error {
	w := csv.NewWriter(f.w)

	headers := []string{"timestamp", "level", "module", "function_name", "line_number", "message"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, r := range records {
		timestamp := r.RawTimestamp
		if !r.Timestamp.IsZero() {
			timestamp = r.Timestamp.Format(time.RFC3339Nano)
		}
		line := ""
		if r.Line != nil {
			line = strconv.Itoa(*r.Line)
		}

		record := []string{timestamp, r.Level, r.Module, r.Function, line, r.Message}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
