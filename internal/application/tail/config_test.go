package tail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/data/client"
)

func TestTailConfig_ValidateDefaults(t *testing.T) {
	config := &TailConfig{}
	require.NoError(t, config.Validate())

	assert.Equal(t, client.DefaultBaseURL, config.APIURL)
	assert.Equal(t, client.DefaultTimeout, config.Timeout)
	assert.Equal(t, poller.DefaultInterval, config.Interval)
	assert.Equal(t, poller.DefaultCapacity, config.Capacity)
	assert.Equal(t, poller.DefaultInterval, config.StatsInterval)
	assert.Equal(t, 1.0, config.UIRefreshRate)
	assert.Equal(t, "Local", config.Timezone)
	assert.Equal(t, "24h", config.TimeFormat)
	assert.Equal(t, model.FilterAll, config.Filter.Level)
}

func TestTailConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		config TailConfig
	}{
		{"negative timeout", TailConfig{Timeout: -time.Second}},
		{"tiny interval", TailConfig{Interval: 10 * time.Millisecond}},
		{"negative capacity", TailConfig{Capacity: -1}},
		{"negative retries", TailConfig{RetryAttempts: -1}},
		{"negative retry base", TailConfig{RetryBase: -time.Second}},
		{"refresh too fast", TailConfig{UIRefreshRate: 50}},
		{"bad time format", TailConfig{TimeFormat: "15:04"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.config
			assert.Error(t, config.Validate())
		})
	}
}

func TestTailConfig_PollerConfig(t *testing.T) {
	config := &TailConfig{
		Interval:      2 * time.Second,
		Capacity:      10,
		Timeout:       3 * time.Second,
		RetryAttempts: 2,
		Filter:        model.Filter{Level: model.FilterError, Module: "db"},
	}
	require.NoError(t, config.Validate())

	pc := config.PollerConfig()
	assert.Equal(t, 2*time.Second, pc.Interval)
	assert.Equal(t, 10, pc.Capacity)
	assert.Equal(t, 3*time.Second, pc.RequestTimeout)
	assert.Equal(t, 2, pc.RetryAttempts)
	assert.Equal(t, poller.DefaultRetryBase, pc.RetryBase)
	assert.Equal(t, "db", pc.Filter.Module)

	cc := config.ClientConfig()
	assert.Equal(t, client.DefaultBaseURL, cc.BaseURL)
	assert.Equal(t, 3*time.Second, cc.Timeout)
}
