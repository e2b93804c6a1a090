package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

const topModules = 10

// SummaryFormatter prints aggregate counts for a batch instead of the rows
type SummaryFormatter struct {
	w    io.Writer
	opts Options
}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter(w io.Writer, opts Options) *SummaryFormatter {
	return &SummaryFormatter{w: w, opts: opts.withDefaults()}
}

type moduleCount struct {
	name   string
	total  int
	errors int
}

// Format writes level and module breakdowns and the covered time range.
func (f *SummaryFormatter) Format(records []model.LogRecord) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Log Summary Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(records) == 0 {
		b.WriteString("No logs to summarize\n\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
		_, err := io.WriteString(f.w, b.String())
		return err
	}

	// records arrive newest first
	newest, oldest := records[0], records[len(records)-1]
	fmt.Fprintf(&b, "Time Range: %s to %s\n\n",
		util.SanitizeLine(oldest.TimestampText(f.opts.TimeFormat)),
		util.SanitizeLine(newest.TimestampText(f.opts.TimeFormat)))

	classes := map[model.LevelClass]int{}
	modules := map[string]*moduleCount{}
	for _, r := range records {
		class := r.Class()
		classes[class]++

		name := r.Module
		if name == "" {
			name = "(none)"
		}
		mc, ok := modules[name]
		if !ok {
			mc = &moduleCount{name: name}
			modules[name] = mc
		}
		mc.total++
		if class == model.ClassError {
			mc.errors++
		}
	}

	total := len(records)
	errorRate := float64(classes[model.ClassError]) / float64(total) * 100

	b.WriteString("Level Breakdown:\n")
	fmt.Fprintf(&b, "  Info:     %s\n", util.FormatNumber(classes[model.ClassInfo]))
	fmt.Fprintf(&b, "  Warning:  %s\n", util.FormatNumber(classes[model.ClassWarning]))
	fmt.Fprintf(&b, "  Error:    %s\n", util.FormatNumber(classes[model.ClassError]))
	fmt.Fprintf(&b, "  Total:    %s\n", util.FormatNumber(total))
	fmt.Fprintf(&b, "  Error Rate: %s\n\n", util.FormatPercent(errorRate))

	sorted := make([]*moduleCount, 0, len(modules))
	for _, mc := range modules {
		sorted = append(sorted, mc)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].total != sorted[j].total {
			return sorted[i].total > sorted[j].total
		}
		return sorted[i].name < sorted[j].name
	})
	if len(sorted) > topModules {
		sorted = sorted[:topModules]
	}

	b.WriteString("Top Modules:\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, mc := range sorted {
		fmt.Fprintf(&b, "  %s %8s logs  %6s errors\n",
			util.PadToWidth(util.TruncateToWidth(util.SanitizeLine(mc.name), 30), 30),
			util.FormatNumber(mc.total),
			util.FormatNumber(mc.errors))
	}

	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	_, err := io.WriteString(f.w, b.String())
	return err
}
