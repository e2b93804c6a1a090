package model

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTime  time.Time
		wantRaw   string
		wantLevel string
		wantLine  *int
	}{
		{
			name:      "rfc1123 from flask",
			input:     `{"timestamp":"Tue, 05 Mar 2024 10:15:30 GMT","level":"ERROR","module":"scraper","function_name":"fetch","line_number":42,"message":"boom"}`,
			wantTime:  time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC),
			wantLevel: "ERROR",
			wantLine:  intPtr(42),
		},
		{
			name:      "rfc3339",
			input:     `{"timestamp":"2024-03-05T10:15:30Z","level":"INFO","message":"ok"}`,
			wantTime:  time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC),
			wantLevel: "INFO",
		},
		{
			name:      "naive sql datetime",
			input:     `{"timestamp":"2024-03-05 10:15:30.250000","level":"INFO","message":"ok","line_number":null}`,
			wantTime:  time.Date(2024, 3, 5, 10, 15, 30, 250000000, time.UTC),
			wantLevel: "INFO",
		},
		{
			name:      "unix seconds",
			input:     `{"timestamp":1709633730,"level":"WARNING","message":"slow"}`,
			wantTime:  time.Unix(1709633730, 0).UTC(),
			wantLevel: "WARNING",
		},
		{
			name:      "unparseable string kept raw",
			input:     `{"timestamp":"yesterday","level":"DEBUG","message":"x"}`,
			wantRaw:   "yesterday",
			wantLevel: "DEBUG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r LogRecord
			require.NoError(t, sonic.Unmarshal([]byte(tt.input), &r))

			assert.True(t, tt.wantTime.Equal(r.Timestamp), "got %v", r.Timestamp)
			assert.Equal(t, tt.wantRaw, r.RawTimestamp)
			assert.Equal(t, tt.wantLevel, r.Level)
			assert.Equal(t, tt.wantLine, r.Line)
		})
	}
}

func TestLogRecord_UnmarshalJSON_InvalidTimestamp(t *testing.T) {
	var r LogRecord
	err := sonic.Unmarshal([]byte(`{"timestamp":true,"level":"INFO"}`), &r)
	assert.Error(t, err)
}

func TestLogRecord_Source(t *testing.T) {
	assert.Equal(t, "-", LogRecord{}.Source())
	assert.Equal(t, "worker.py:12", LogRecord{Location: "worker.py:12"}.Source())
	assert.Equal(t, "scraper:fetch:42", LogRecord{Module: "scraper", Function: "fetch", Line: intPtr(42)}.Source())
	assert.Equal(t, "scraper", LogRecord{Module: "scraper"}.Source())
}

func TestClassForLevel(t *testing.T) {
	assert.Equal(t, ClassError, ClassForLevel("ERROR"))
	assert.Equal(t, ClassWarning, ClassForLevel("warning"))
	assert.Equal(t, ClassInfo, ClassForLevel("INFO"))
	assert.Equal(t, ClassInfo, ClassForLevel("CRITICAL"))
	assert.Equal(t, ClassInfo, ClassForLevel(""))
}

func TestLogRecord_TimestampText(t *testing.T) {
	format := func(t time.Time) string { return t.Format("15:04") }

	assert.Equal(t, "-", LogRecord{}.TimestampText(format))
	assert.Equal(t, "soon", LogRecord{RawTimestamp: "soon"}.TimestampText(format))
	assert.Equal(t, "10:15", LogRecord{Timestamp: time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)}.TimestampText(format))
}

func intPtr(v int) *int { return &v }
