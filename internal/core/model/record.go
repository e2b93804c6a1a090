package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Log levels emitted by the server
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// LevelClass is the styling bucket a record level falls into
type LevelClass string

const (
	ClassInfo    LevelClass = "info"
	ClassWarning LevelClass = "warning"
	ClassError   LevelClass = "error"
)

// ClassForLevel maps a level to its styling bucket. Unknown levels are
// styled as INFO.
func ClassForLevel(level string) LevelClass {
	switch strings.ToUpper(level) {
	case LevelError:
		return ClassError
	case LevelWarning:
		return ClassWarning
	default:
		return ClassInfo
	}
}

// LogRecord is a single log line as delivered by the API. Records are
// treated as immutable once decoded; Message is untrusted text.
type LogRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	RawTimestamp string    `json:"raw_timestamp,omitempty"`
	Level        string    `json:"level"`
	Module       string    `json:"module,omitempty"`
	Function     string    `json:"function_name,omitempty"`
	Line         *int      `json:"line_number,omitempty"`
	Location     string    `json:"location,omitempty"`
	Message      string    `json:"message"`
}

// Class returns the styling bucket of the record level
func (r LogRecord) Class() LevelClass {
	return ClassForLevel(r.Level)
}

// Source renders module:function:line, falling back to location or "-"
func (r LogRecord) Source() string {
	if r.Module == "" && r.Function == "" {
		if r.Location != "" {
			return r.Location
		}
		return "-"
	}

	parts := make([]string, 0, 3)
	if r.Module != "" {
		parts = append(parts, r.Module)
	}
	if r.Function != "" {
		parts = append(parts, r.Function)
	}
	if r.Line != nil {
		parts = append(parts, strconv.Itoa(*r.Line))
	}
	return strings.Join(parts, ":")
}

// TimestampText returns the raw server value when it could not be parsed
func (r LogRecord) TimestampText(format func(time.Time) string) string {
	if r.Timestamp.IsZero() {
		if r.RawTimestamp != "" {
			return r.RawTimestamp
		}
		return "-"
	}
	return format(r.Timestamp)
}

type wireRecord struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Level     string          `json:"level"`
	Module    *string         `json:"module"`
	Function  *string         `json:"function_name"`
	Line      *int            `json:"line_number"`
	Location  *string         `json:"location"`
	Message   *string         `json:"message"`
}

// UnmarshalJSON accepts the timestamp as RFC3339, RFC1123 (GMT), a naive
// ISO/SQL datetime or unix seconds. Unparseable values are kept verbatim in
// RawTimestamp.
func (r *LogRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = LogRecord{
		Level: w.Level,
		Line:  w.Line,
	}
	if w.Module != nil {
		r.Module = *w.Module
	}
	if w.Function != nil {
		r.Function = *w.Function
	}
	if w.Location != nil {
		r.Location = *w.Location
	}
	if w.Message != nil {
		r.Message = *w.Message
	}

	ts, raw, err := decodeTimestamp(w.Timestamp)
	if err != nil {
		return err
	}
	r.Timestamp = ts
	if ts.IsZero() {
		r.RawTimestamp = raw
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func decodeTimestamp(raw json.RawMessage) (time.Time, string, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return time.Time{}, "", nil
	}

	if strings.HasPrefix(text, `"`) {
		var s string
		if err := sonic.UnmarshalString(text, &s); err != nil {
			return time.Time{}, "", fmt.Errorf("invalid timestamp %s: %w", text, err)
		}
		return ParseTimestamp(s), s, nil
	}

	secs, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid timestamp %s: %w", text, err)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), text, nil
}

// ParseTimestamp tries the known server layouts; naive values are UTC.
// It returns the zero time when nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
