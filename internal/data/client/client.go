// Package client talks to the log/analytics HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/util"
)

// Endpoint paths relative to the base URL
const (
	PathStream      = "/logs/stream"
	PathLogs        = "/logs"
	PathStats       = "/stats"
	PathLiveMetrics = "/live-metrics"
	PathExportCSV   = "/export/csv"
	PathHealth      = "/health"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4096
)

// Config configures a Client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin JSON client for the log API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// StreamPage is one incremental page from /logs/stream
type StreamPage struct {
	Records   []model.LogRecord
	NextSince model.Cursor
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	NextSince json.RawMessage `json:"next_since"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Status    string          `json:"status"`
	Postgres  string          `json:"postgres"`
}

// New creates a client; an empty BaseURL uses DefaultBaseURL
func New(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// StreamLogs fetches records newer than the cursor encoded in params.
// The returned cursor is the server's next_since, possibly empty.
func (c *Client) StreamLogs(ctx context.Context, params url.Values) (StreamPage, error) {
	env, err := c.getEnvelope(ctx, PathStream, params)
	if err != nil {
		return StreamPage{}, err
	}

	records, err := decodeRecords(PathStream, env.Data)
	if err != nil {
		return StreamPage{}, err
	}

	cursor, err := decodeCursor(env.NextSince)
	if err != nil {
		return StreamPage{}, &Error{Kind: KindDecode, Op: PathStream, Err: err}
	}

	return StreamPage{Records: records, NextSince: cursor}, nil
}

// FetchLogs performs a full listing from /logs
func (c *Client) FetchLogs(ctx context.Context, params url.Values) ([]model.LogRecord, error) {
	env, err := c.getEnvelope(ctx, PathLogs, params)
	if err != nil {
		return nil, err
	}
	return decodeRecords(PathLogs, env.Data)
}

// FetchStats returns the dashboard summary
func (c *Client) FetchStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := c.getData(ctx, PathStats, &stats)
	return stats, err
}

// FetchLiveMetrics returns the rolling-window metrics
func (c *Client) FetchLiveMetrics(ctx context.Context) (model.LiveMetrics, error) {
	var metrics model.LiveMetrics
	err := c.getData(ctx, PathLiveMetrics, &metrics)
	return metrics, err
}

// Health checks the API health endpoint. An unhealthy server answers with
// a non-2xx status and is reported as a KindServer error.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	env, err := c.getEnvelope(ctx, PathHealth, nil)
	if err != nil {
		return model.Health{}, err
	}
	return model.Health{Status: env.Status, Postgres: env.Postgres}, nil
}

// ExportCSV streams the server CSV export into w and returns the bytes written
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, PathExportCSV, nil, "text/csv")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Kind: KindNetwork, Op: PathExportCSV, Err: err}
	}
	return n, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do issues a GET and returns the response when the status is 2xx
func (c *Client) do(ctx context.Context, path string, params url.Values, accept string) (*http.Response, error) {
	endpoint := c.endpoint(path, params)
	util.LogDebugf("GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Kind:       KindServer,
			Op:         path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
		}
	}

	return resp, nil
}

func (c *Client) getEnvelope(ctx context.Context, path string, params url.Values) (*envelope, error) {
	resp, err := c.do(ctx, path, params, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindDecode, Op: path, Err: err}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "success=false"
		}
		return nil, &Error{Kind: KindServer, Op: path, Message: msg}
	}

	return &env, nil
}

func (c *Client) getData(ctx context.Context, path string, out interface{}) error {
	env, err := c.getEnvelope(ctx, path, nil)
	if err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return &Error{Kind: KindDecode, Op: path, Err: fmt.Errorf("missing data field")}
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindDecode, Op: path, Err: err}
	}
	return nil
}

func decodeRecords(path string, data json.RawMessage) ([]model.LogRecord, error) {
	if len(data) == 0 || string(data) == "null" {
		return []model.LogRecord{}, nil
	}
	var records []model.LogRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, &Error{Kind: KindDecode, Op: path, Err: err}
	}
	if records == nil {
		records = []model.LogRecord{}
	}
	return records, nil
}

// decodeCursor keeps the token opaque: strings are unquoted, any other JSON
// scalar is kept verbatim, null becomes the empty cursor.
func decodeCursor(raw json.RawMessage) (model.Cursor, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return "", nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := sonic.UnmarshalString(text, &s); err != nil {
			return "", fmt.Errorf("invalid next_since: %w", err)
		}
		return model.Cursor(s), nil
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return "", fmt.Errorf("invalid next_since: expected a scalar, got %s", text)
	}
	return model.Cursor(text), nil
}

func serverMessage(body []byte) string {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return strings.TrimSpace(string(body))
}
