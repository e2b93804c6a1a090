// Package fixtures provides an in-memory log API for tests. It honours the
// stream cursor contract: next_since is the sequence number of the newest
// stored record and a request with since=N returns only records after N.
package fixtures

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

// StreamLimit caps a /logs/stream response that carries no limit
const StreamLimit = 100

// LogAPI is a fake log API server backed by an append-only record list
type LogAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	records  []model.LogRecord // oldest first; sequence number is index+1
	failNext int
	requests map[string][]url.Values
}

// NewLogAPI starts the server. Call Close when done.
func NewLogAPI() *LogAPI {
	a := &LogAPI{requests: make(map[string][]url.Values)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/logs/stream", a.handleStream)
	mux.HandleFunc("/api/logs", a.handleList)
	mux.HandleFunc("/api/stats", a.handleStats)
	mux.HandleFunc("/api/live-metrics", a.handleLiveMetrics)
	mux.HandleFunc("/api/health", a.handleHealth)
	mux.HandleFunc("/api/export/csv", a.handleExport)

	a.server = httptest.NewServer(a.track(mux))
	return a
}

// URL returns the API base URL, including the /api prefix
func (a *LogAPI) URL() string {
	return a.server.URL + "/api"
}

// Close shuts the server down
func (a *LogAPI) Close() {
	a.server.Close()
}

// Emit appends records, oldest first
func (a *LogAPI) Emit(records ...model.LogRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, records...)
}

// Fail answers the next n requests with HTTP 500
func (a *LogAPI) Fail(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext = n
}

// Requests returns the query of every request made to path (without /api)
func (a *LogAPI) Requests(path string) []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.requests[path]...)
}

func (a *LogAPI) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		path := strings.TrimPrefix(r.URL.Path, "/api")
		a.requests[path] = append(a.requests[path], r.URL.Query())
		fail := a.failNext > 0
		if fail {
			a.failNext--
		}
		a.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "injected failure",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// matching returns sequence numbers of records after since that pass the
// filters in q, newest first
func (a *LogAPI) matching(q url.Values, since int) []int {
	level := strings.ToUpper(q.Get("level"))
	module := q.Get("module")
	search := strings.ToLower(q.Get("search"))

	var seqs []int
	for i := len(a.records) - 1; i >= since; i-- {
		r := a.records[i]
		if level != "" && level != string(model.FilterAll) && !strings.EqualFold(r.Level, level) {
			continue
		}
		if module != "" && r.Module != module {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Message), search) {
			continue
		}
		seqs = append(seqs, i+1)
	}
	return seqs
}

func (a *LogAPI) pick(seqs []int, limit int) []model.LogRecord {
	if len(seqs) > limit {
		seqs = seqs[:limit]
	}
	out := make([]model.LogRecord, len(seqs))
	for i, seq := range seqs {
		out[i] = a.records[seq-1]
	}
	return out
}

func (a *LogAPI) handleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since := 0
	if s := q.Get("since"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "bad since"})
			return
		}
		since = n
	}
	limit := StreamLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
	}

	a.mu.Lock()
	since = min(max(since, 0), len(a.records))
	data := a.pick(a.matching(q, since), limit)
	next := strconv.Itoa(len(a.records))
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       data,
		"next_since": next,
	})
}

func (a *LogAPI) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	a.mu.Lock()
	data := a.pick(a.matching(q, 0), limit)
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

func (a *LogAPI) counts() (total, errors int) {
	for _, r := range a.records {
		if r.Class() == model.ClassError {
			errors++
		}
	}
	return len(a.records), errors
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func (a *LogAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	total, errors := a.counts()
	requests := len(a.requests["/logs/stream"]) + len(a.requests["/logs"])
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": model.Stats{
			TotalRequests: requests,
			TotalLogs:     total,
			TotalErrors:   errors,
			ErrorRate:     rate(errors, total),
		},
	})
}

func (a *LogAPI) handleLiveMetrics(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	total, errors := a.counts()
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": model.LiveMetrics{
			TotalOperations: total,
			ErrorCount:      errors,
			ErrorRate:       rate(errors, total),
			AvgDuration:     0.25,
			TimeRangeHours:  24,
		},
	})
}

func (a *LogAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"status":   "healthy",
		"postgres": "connected",
	})
}

func (a *LogAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	records := append([]model.LogRecord(nil), a.records...)
	a.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	cw.Write([]string{"timestamp", "level", "module", "message"})
	for _, rec := range records {
		cw.Write([]string{rec.Timestamp.Format(time.RFC3339), rec.Level, rec.Module, rec.Message})
	}
	cw.Flush()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// GenerateRecords returns n records one second apart starting at start,
// oldest first. Every fifth record is an ERROR and every third a WARNING.
func GenerateRecords(n int, start time.Time) []model.LogRecord {
	modules := []string{"api", "db", "scraper"}
	out := make([]model.LogRecord, n)
	for i := range out {
		level := model.LevelInfo
		switch {
		case (i+1)%5 == 0:
			level = model.LevelError
		case (i+1)%3 == 0:
			level = model.LevelWarning
		}
		line := 10 + i
		out[i] = model.LogRecord{
			Timestamp: start.Add(time.Duration(i) * time.Second).UTC(),
			Level:     level,
			Module:    modules[i%len(modules)],
			Function:  "handle",
			Line:      &line,
			Message:   fmt.Sprintf("message %d", i+1),
		}
	}
	return out
}
