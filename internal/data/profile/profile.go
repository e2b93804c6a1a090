// Package profile persists the active filters to a JSON file so a tail
// session can be resumed, and edited from outside while it runs.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

// Profile is the on-disk filter profile
type Profile struct {
	Level     model.LevelFilter `json:"level"`
	Module    string            `json:"module,omitempty"`
	Search    string            `json:"search,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// FromFilter builds a profile from the active filters
func FromFilter(f model.Filter) Profile {
	f = f.Normalized()
	return Profile{
		Level:  f.Level,
		Module: f.Module,
		Search: f.Search,
	}
}

// Filter returns the profile as a normalized filter
func (p Profile) Filter() model.Filter {
	return model.Filter{
		Level:  p.Level,
		Module: p.Module,
		Search: p.Search,
	}.Normalized()
}

// Load reads the profile at path. A missing file yields the default
// filters; an unknown level is an error.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return FromFilter(model.DefaultFilter()), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var p Profile
	if err := sonic.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	level, err := model.ParseLevelFilter(string(p.Level))
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	p.Level = level
	return p, nil
}

// Save writes the profile atomically, creating the parent directory
func Save(path string, p Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	if p.Level == "" {
		p.Level = model.FilterAll
	}

	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
