package model

import (
	"fmt"
	"strings"
)

// LevelFilter selects which levels the server returns. ALL is sent to the
// server literally.
type LevelFilter string

const (
	FilterAll     LevelFilter = "ALL"
	FilterInfo    LevelFilter = "INFO"
	FilterWarning LevelFilter = "WARNING"
	FilterError   LevelFilter = "ERROR"
)

// LevelFilters lists the filters in keyboard cycling order
var LevelFilters = []LevelFilter{FilterAll, FilterInfo, FilterWarning, FilterError}

// ParseLevelFilter parses a level filter name case-insensitively. An empty
// string means ALL.
func ParseLevelFilter(s string) (LevelFilter, error) {
	switch LevelFilter(strings.ToUpper(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterInfo:
		return FilterInfo, nil
	case FilterWarning, "WARN":
		return FilterWarning, nil
	case FilterError:
		return FilterError, nil
	default:
		return "", fmt.Errorf("invalid level filter '%s': must be one of ALL, INFO, WARNING, ERROR", s)
	}
}

// Next returns the filter after f in cycling order
func (f LevelFilter) Next() LevelFilter {
	for i, lf := range LevelFilters {
		if lf == f {
			return LevelFilters[(i+1)%len(LevelFilters)]
		}
	}
	return FilterAll
}

// Filter is the set of active server-side filters. Empty Module and Search
// mean unfiltered.
type Filter struct {
	Level  LevelFilter `json:"level"`
	Module string      `json:"module,omitempty"`
	Search string      `json:"search,omitempty"`
}

// DefaultFilter returns the unfiltered state
func DefaultFilter() Filter {
	return Filter{Level: FilterAll}
}

// Normalized returns a copy with a defaulted level and trimmed text fields
func (f Filter) Normalized() Filter {
	if f.Level == "" {
		f.Level = FilterAll
	}
	f.Module = strings.TrimSpace(f.Module)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// String renders the filter for status lines
func (f Filter) String() string {
	f = f.Normalized()
	parts := []string{"level=" + string(f.Level)}
	if f.Module != "" {
		parts = append(parts, "module="+f.Module)
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	return strings.Join(parts, " ")
}

// Cursor is the opaque continuation token handed out by the server. The
// empty cursor means "no position yet".
type Cursor string

// IsNull reports whether no continuation token is held
func (c Cursor) IsNull() bool {
	return c == ""
}
