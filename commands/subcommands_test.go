package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/data/profile"
	"github.com/penwyp/go-log-monitor/internal/testing/fixtures"
)

const (
	statsBody = `{"success":true,"data":{"total_requests":1234,"total_logs":500,"total_errors":25,"error_rate":5}}`
	liveBody  = `{"success":true,"data":{"total_operations":80,"error_count":20,"error_rate":25,"avg_duration":0.5,"time_range_hours":24}}`
)

func TestRunStats(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{
		"/stats":        jsonResponse(statsBody),
		"/live-metrics": jsonResponse(liveBody),
	})

	stdout, _, err := executeCommand(t, nil, server, "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1,234")
	assert.Contains(t, stdout, "25.0%")
}

func TestRunStats_PartialFailure(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{
		"/stats": jsonResponse(statsBody),
	})

	stdout, stderr, err := executeCommand(t, nil, server, "stats", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"total_requests": 1234`)
	assert.Contains(t, stderr, "live metrics")
}

func TestRunStats_AllFail(t *testing.T) {
	server := newAPIServer(t, nil)

	_, _, err := executeCommand(t, nil, server, "stats")
	assert.Error(t, err)
}

func TestRunHealth(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{
		"/health": jsonResponse(`{"success":true,"status":"healthy","postgres":"connected"}`),
	})

	stdout, _, err := executeCommand(t, nil, server, "health")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Status:   healthy")
	assert.Contains(t, stdout, "Postgres: connected")
}

func TestRunHealth_Unhealthy(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{
		"/health": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"status":"unhealthy","error":"postgres unreachable"}`))
		},
	})

	_, _, err := executeCommand(t, nil, server, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhealthy")
}

const csvBody = "timestamp,level,message\n2024-03-05T10:15:30Z,INFO,hello\n"

func csvResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(csvBody))
}

func TestRunExport_ToFile(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{"/export/csv": csvResponse})
	out := filepath.Join(t.TempDir(), "nested", "logs.csv")

	stdout, _, err := executeCommand(t, nil, server, "export", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))
	assert.Contains(t, stdout, "Exported")

	// no temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunExport_Stdout(t *testing.T) {
	server := newAPIServer(t, map[string]http.HandlerFunc{"/export/csv": csvResponse})

	stdout, _, err := executeCommand(t, nil, server, "export", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, csvBody, stdout)
}

func TestRunExport_FailureLeavesNoFile(t *testing.T) {
	server := newAPIServer(t, nil)
	out := filepath.Join(t.TempDir(), "logs.csv")

	_, _, err := executeCommand(t, nil, server, "export", "--out", out)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultExportName(t *testing.T) {
	name := defaultExportName()
	assert.True(t, strings.HasPrefix(name, "sb-export-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.Len(t, name, len("sb-export-2006-01-02.csv"))
}

func TestRunFollow_PrintsBatchesOldestFirst(t *testing.T) {
	var mu sync.Mutex
	var sinces []string
	calls := 0
	server := newAPIServer(t, map[string]http.HandlerFunc{
		"/logs/stream": func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			n := calls
			sinces = append(sinces, r.URL.Query().Get("since"))
			mu.Unlock()

			if n == 1 {
				jsonResponse(`{"success":true,"next_since":"t1","data":[
					{"timestamp":"2024-03-05T10:15:31Z","level":"ERROR","module":"db","message":"second"},
					{"timestamp":"2024-03-05T10:15:30Z","level":"INFO","module":"db","message":"first"}
				]}`)(w, r)
				return
			}
			jsonResponse(`{"success":true,"next_since":"t1","data":[]}`)(w, r)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 450*time.Millisecond)
	defer cancel()

	stdout, _, err := executeCommand(t, ctx, server, "follow", "--interval", "100ms", "--level", "error")
	require.NoError(t, err)

	first := strings.Index(stdout, "first")
	second := strings.Index(stdout, "second")
	require.True(t, first >= 0 && second >= 0, "output: %q", stdout)
	assert.Less(t, first, second)
	assert.Equal(t, 1, strings.Count(stdout, "second"))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(sinces), 2)
	assert.Empty(t, sinces[0])
	assert.Equal(t, "t1", sinces[1])
}

func TestRunFollow_InvalidOutput(t *testing.T) {
	server := newAPIServer(t, nil)

	_, _, err := executeCommand(t, nil, server, "follow", "--output", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be lines or jsonl")
}

func TestTailCommandFlags(t *testing.T) {
	tests := []struct {
		flag         string
		defaultValue string
	}{
		{"interval", "5s"},
		{"capacity", "100"},
		{"retry-attempts", "0"},
		{"retry-base", "250ms"},
		{"profile", defaultProfilePath},
		{"time-format", "24h"},
		{"stats-interval", "0s"},
		{"refresh-per-second", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := tailCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultValue, flag.DefValue)
		})
	}
}

func TestRunTail_InvalidTimeFormat(t *testing.T) {
	server := newAPIServer(t, nil)

	_, _, err := executeCommand(t, nil, server, "tail", "--time-format", "invalid")
	require.Error(t, err)
	assert.Equal(t, "invalid time format 'invalid': must be either '12h' or '24h'", err.Error())
}

func TestBuildTailConfig_ProfileAndFlags(t *testing.T) {
	resetFlags(rootCmd)
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, profile.Save(path, profile.Profile{Level: model.FilterWarning, Module: "db", Search: "slow"}))

	require.NoError(t, tailCmd.Flags().Parse([]string{"--profile", path, "--search", "timeout", "--interval", "2s"}))
	config, err := buildTailConfig(tailCmd)
	require.NoError(t, err)

	assert.Equal(t, model.FilterWarning, config.Filter.Level)
	assert.Equal(t, "db", config.Filter.Module)
	assert.Equal(t, "timeout", config.Filter.Search)
	assert.Equal(t, 2*time.Second, config.Interval)
	assert.Equal(t, 2*time.Second, config.StatsInterval)
	assert.Equal(t, path, config.ProfilePath)
}

func TestBuildTailConfig_NoProfile(t *testing.T) {
	resetFlags(rootCmd)

	require.NoError(t, tailCmd.Flags().Parse([]string{"--profile", "", "--level", "error"}))
	config, err := buildTailConfig(tailCmd)
	require.NoError(t, err)

	assert.Empty(t, config.ProfilePath)
	assert.Equal(t, model.FilterError, config.Filter.Level)
}

func TestRunFollow_AgainstLogAPI(t *testing.T) {
	api := fixtures.NewLogAPI()
	defer api.Close()
	api.Emit(fixtures.GenerateRecords(5, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))...)

	ctx, cancel := context.WithTimeout(context.Background(), 450*time.Millisecond)
	defer cancel()
	go func() {
		time.Sleep(200 * time.Millisecond)
		api.Emit(model.LogRecord{Timestamp: time.Now(), Level: model.LevelError, Module: "db", Message: "late arrival"})
	}()

	stdout, _, err := executeCommand(t, ctx, api.URL(), "follow", "--interval", "100ms", "--output", "jsonl", "--level", "ERROR")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2, "output: %q", stdout)
	assert.Contains(t, lines[0], `"message":"message 5"`)
	assert.Contains(t, lines[1], `"message":"late arrival"`)
}

func TestRunStats_AgainstLogAPI(t *testing.T) {
	api := fixtures.NewLogAPI()
	defer api.Close()
	api.Emit(fixtures.GenerateRecords(10, time.Now())...)

	stdout, _, err := executeCommand(t, nil, api.URL(), "stats", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"total_logs": 10`)
	assert.Contains(t, stdout, `"error_count": 2`)
}
