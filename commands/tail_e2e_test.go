//go:build e2e
// +build e2e

package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-log-monitor/internal/testing/e2e"
	"github.com/penwyp/go-log-monitor/internal/testing/fixtures"
)

func startTail(t *testing.T, api *fixtures.LogAPI, args ...string) *e2e.Session {
	t.Helper()

	bin, err := e2e.BuildBinary(t.TempDir(), "../cmd")
	require.NoError(t, err)

	home := t.TempDir()
	full := append([]string{
		"--api-url", api.URL(),
		"--timezone", "UTC",
		"tail",
		"--interval", "200ms",
		"--refresh-per-second", "10",
		"--profile", filepath.Join(home, "profile.json"),
	}, args...)

	session, err := e2e.Start(e2e.Options{
		Command: bin,
		Args:    full,
		Env:     []string{"HOME=" + home},
		Rows:    30,
		Cols:    120,
	})
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestTailE2E_ShowsNewRecords(t *testing.T) {
	api := fixtures.NewLogAPI()
	defer api.Close()
	records := fixtures.GenerateRecords(6, time.Now().Add(-time.Minute))
	api.Emit(records[:3]...)

	session := startTail(t, api)

	require.NoError(t, session.WaitFor("message 3", 5*time.Second))
	require.NoError(t, session.WaitFor("LIVE", 2*time.Second))

	api.Emit(records[3:]...)
	require.NoError(t, session.WaitFor("message 6", 5*time.Second))

	// later polls carry the cursor from the first one
	var sawCursor bool
	for _, q := range api.Requests("/logs/stream") {
		if q.Get("since") != "" {
			sawCursor = true
		}
	}
	assert.True(t, sawCursor)

	require.NoError(t, session.Send("q"))
	assert.NoError(t, session.Wait(3*time.Second))
}

func TestTailE2E_PauseAndLevelFilter(t *testing.T) {
	api := fixtures.NewLogAPI()
	defer api.Close()
	api.Emit(fixtures.GenerateRecords(10, time.Now().Add(-time.Minute))...)

	session := startTail(t, api)
	require.NoError(t, session.WaitFor("message 10", 5*time.Second))

	require.NoError(t, session.Send("p"))
	require.NoError(t, session.WaitFor("PAUSED", 2*time.Second))

	require.NoError(t, session.Send("e"))
	require.NoError(t, session.WaitFor("level=ERROR", 2*time.Second))
	require.Eventually(t, func() bool {
		screen := session.Screen()
		return screen.Contains("message 5") && !screen.Contains("message 4")
	}, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, session.Send("h"))
	require.NoError(t, session.WaitFor("Help", 2*time.Second))
	require.NoError(t, session.Send("q"))
	assert.NoError(t, session.Wait(3*time.Second))
}

func TestTailE2E_SurvivesServerFailures(t *testing.T) {
	api := fixtures.NewLogAPI()
	defer api.Close()
	records := fixtures.GenerateRecords(4, time.Now().Add(-time.Minute))
	api.Emit(records[:2]...)

	session := startTail(t, api)
	require.NoError(t, session.WaitFor("message 2", 5*time.Second))

	api.Fail(6)
	require.NoError(t, session.WaitFor("FAILING", 5*time.Second))

	api.Emit(records[2:]...)
	require.NoError(t, session.WaitFor("message 4", 5*time.Second))
	require.NoError(t, session.WaitFor("LIVE", 2*time.Second))

	require.NoError(t, session.Send("q"))
	assert.NoError(t, session.Wait(3*time.Second))
}
