package formatter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// LineFormatter prints one plain line per record, oldest first, in the
// shape of a log file. It suits streaming output where batches arrive over
// time.
type LineFormatter struct {
	w     io.Writer
	opts  Options
	color bool
}

func NewLineFormatter(w io.Writer, opts Options, color bool) *LineFormatter {
	return &LineFormatter{w: w, opts: opts.withDefaults(), color: color}
}

// Format takes records newest first, as the API returns them
func (f *LineFormatter) Format(records []model.LogRecord) error {
	bw := bufio.NewWriter(f.w)
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		level := fmt.Sprintf("%-7s", util.SanitizeLine(r.Level))
		if f.color {
			level = util.Colorize(levelColor(r.Class()), level)
		}
		fmt.Fprintf(bw, "%s %s %s %s\n",
			util.SanitizeLine(r.TimestampText(f.opts.TimeFormat)),
			level,
			util.SanitizeLine(r.Source()),
			util.SanitizeLine(r.Message))
	}
	return bw.Flush()
}

// JSONLinesFormatter prints one compact JSON object per record, oldest first
type JSONLinesFormatter struct {
	w io.Writer
}

func NewJSONLinesFormatter(w io.Writer) *JSONLinesFormatter {
	return &JSONLinesFormatter{w: w}
}

func (f *JSONLinesFormatter) Format(records []model.LogRecord) error {
	bw := bufio.NewWriter(f.w)
	for i := len(records) - 1; i >= 0; i-- {
		data, err := sonic.Marshal(records[i])
		if err != nil {
			return err
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func levelColor(class model.LevelClass) string {
	switch class {
	case model.ClassError:
		return util.ColorRed
	case model.ClassWarning:
		return util.ColorYellow
	default:
		return util.ColorGreen
	}
}
