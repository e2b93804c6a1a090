package tail

import (
	"fmt"
	"time"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/data/client"
)

// TailConfig contains configuration for the tail command
type TailConfig struct {
	// API settings
	APIURL  string
	Timeout time.Duration

	// Polling settings
	Interval      time.Duration
	Capacity      int
	RetryAttempts int
	RetryBase     time.Duration
	Filter        model.Filter

	// Refresh settings
	StatsInterval time.Duration
	UIRefreshRate float64

	// Display settings
	Timezone   string
	TimeFormat string

	// ProfilePath is the saved filter file; empty disables save and watch
	ProfilePath string
}

// Validate fills defaults and rejects impossible values
func (c *TailConfig) Validate() error {
	if c.APIURL == "" {
		c.APIURL = client.DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = client.DefaultTimeout
	}
	if c.Interval == 0 {
		c.Interval = poller.DefaultInterval
	}
	if c.Capacity == 0 {
		c.Capacity = poller.DefaultCapacity
	}
	if c.RetryBase == 0 {
		c.RetryBase = poller.DefaultRetryBase
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = c.Interval
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = 1
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "24h"
	}
	c.Filter = c.Filter.Normalized()

	switch {
	case c.Timeout < 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	case c.Interval < 100*time.Millisecond:
		return fmt.Errorf("interval must be at least 100ms, got %s", c.Interval)
	case c.Capacity < 1:
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	case c.RetryAttempts < 0:
		return fmt.Errorf("retry attempts must not be negative, got %d", c.RetryAttempts)
	case c.RetryBase < 0:
		return fmt.Errorf("retry base must be positive, got %s", c.RetryBase)
	case c.StatsInterval < 0:
		return fmt.Errorf("stats interval must be positive, got %s", c.StatsInterval)
	case c.UIRefreshRate < 0.1 || c.UIRefreshRate > 20:
		return fmt.Errorf("refresh rate must be between 0.1 and 20 per second, got %g", c.UIRefreshRate)
	case c.TimeFormat != "12h" && c.TimeFormat != "24h":
		return fmt.Errorf("time format must be 12h or 24h, got %q", c.TimeFormat)
	}
	return nil
}

// PollerConfig maps the polling settings onto the poller
func (c *TailConfig) PollerConfig() poller.Config {
	return poller.Config{
		Interval:       c.Interval,
		Capacity:       c.Capacity,
		RequestTimeout: c.Timeout,
		RetryAttempts:  c.RetryAttempts,
		RetryBase:      c.RetryBase,
		Filter:         c.Filter,
	}
}

// ClientConfig maps the API settings onto the HTTP client
func (c *TailConfig) ClientConfig() client.Config {
	return client.Config{
		BaseURL: c.APIURL,
		Timeout: c.Timeout,
	}
}
