package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/testing/fixtures"
)

func newLogAPIPoller(t *testing.T, cfg Config) (*Poller, *fixtures.LogAPI) {
	t.Helper()
	api := fixtures.NewLogAPI()
	t.Cleanup(api.Close)

	c, err := client.New(client.Config{BaseURL: api.URL(), Timeout: 2 * time.Second})
	require.NoError(t, err)

	p, _ := newIdlePoller(t, c, cfg)
	return p, api
}

func assertUniqueMessages(t *testing.T, recs []model.LogRecord) {
	t.Helper()
	seen := make(map[string]int, len(recs))
	for _, r := range recs {
		seen[r.Message]++
	}
	for msg, n := range seen {
		assert.Equal(t, 1, n, "row %q appears %d times", msg, n)
	}
}

func TestPoller_ReloadThenTickAgainstLogAPI(t *testing.T) {
	p, api := newLogAPIPoller(t, Config{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	api.Emit(fixtures.GenerateRecords(3, start)...)
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx))
	snap := p.Snapshot()
	require.Len(t, snap.Records, 3)
	assert.Equal(t, model.Cursor("3"), snap.Cursor)

	require.NoError(t, p.Tick(ctx))
	snap = p.Snapshot()
	assert.Len(t, snap.Records, 3)
	assertUniqueMessages(t, snap.Records)

	api.Emit(fixtures.GenerateRecords(5, start)[3:]...)
	require.NoError(t, p.Tick(ctx))
	snap = p.Snapshot()
	assert.Equal(t, []string{"message 5", "message 4", "message 3", "message 2", "message 1"}, messages(snap.Records))
	assertUniqueMessages(t, snap.Records)
}

func TestPoller_FilterChangeThenReloadAgainstLogAPI(t *testing.T) {
	p, api := newLogAPIPoller(t, Config{Capacity: 10})
	api.Emit(fixtures.GenerateRecords(20, time.Now())...)
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx))
	assert.Len(t, p.Snapshot().Records, 10)

	p.SetLevel(model.FilterError)
	require.NoError(t, p.Reload(ctx))
	require.NoError(t, p.Tick(ctx))

	snap := p.Snapshot()
	require.Len(t, snap.Records, 4)
	for _, r := range snap.Records {
		assert.Equal(t, model.LevelError, r.Level)
	}
	assertUniqueMessages(t, snap.Records)
	assert.Equal(t, model.Cursor("20"), snap.Cursor)
}
