package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

func TestLoad_MissingFileDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFilter(), p.Filter())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.json")
	want := model.Filter{Level: model.FilterError, Module: "scraper", Search: "timeout"}

	require.NoError(t, Save(path, FromFilter(want)))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got.Filter())
	assert.False(t, got.UpdatedAt.IsZero())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestLoad_NormalizesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"level":"warn","module":" api "}`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.Filter{Level: model.FilterWarning, Module: "api"}, p.Filter())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `{"level":`},
		{name: "unknown level", content: `{"level":"TRACE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	require.NoError(t, Save(path, FromFilter(model.DefaultFilter())))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, Save(path, FromFilter(model.Filter{Level: model.FilterError})))

	select {
	case ev := <-w.Events():
		assert.Equal(t, w.Path(), filepath.Clean(ev.Path))
		assert.NotEmpty(t, ev.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("expected profile change event")
	}
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "profile.json"))
	assert.Error(t, err)
}
