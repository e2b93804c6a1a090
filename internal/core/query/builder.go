// Package query encodes filter and cursor state into API query parameters.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/penwyp/go-log-monitor/internal/core/model"
)

// Parameter names understood by the log API
const (
	ParamLevel  = "level"
	ParamSince  = "since"
	ParamModule = "module"
	ParamSearch = "search"
	ParamLimit  = "limit"
)

// Builder accumulates query parameters. Unfiltered values are omitted,
// except the level which is always sent (ALL literally).
type Builder struct {
	values url.Values
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{values: url.Values{}}
}

// AddLevel sets the level filter, defaulting to ALL
func (qb *Builder) AddLevel(level model.LevelFilter) *Builder {
	if level == "" {
		level = model.FilterAll
	}
	qb.values.Set(ParamLevel, string(level))
	return qb
}

// AddModule sets the module filter when non-empty
func (qb *Builder) AddModule(module string) *Builder {
	if module != "" {
		qb.values.Set(ParamModule, module)
	}
	return qb
}

// AddSearch sets the trimmed free-text filter when non-empty
func (qb *Builder) AddSearch(search string) *Builder {
	if search = strings.TrimSpace(search); search != "" {
		qb.values.Set(ParamSearch, search)
	}
	return qb
}

// AddCursor sets since when a continuation token is held
func (qb *Builder) AddCursor(cursor model.Cursor) *Builder {
	if !cursor.IsNull() {
		qb.values.Set(ParamSince, string(cursor))
	}
	return qb
}

// AddLimit sets the limit when positive
func (qb *Builder) AddLimit(limit int) *Builder {
	if limit > 0 {
		qb.values.Set(ParamLimit, strconv.Itoa(limit))
	}
	return qb
}

// Build returns a copy of the accumulated parameters
func (qb *Builder) Build() url.Values {
	out := make(url.Values, len(qb.values))
	for k, v := range qb.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// StreamParams encodes the parameters of an incremental /logs/stream poll
func StreamParams(filter model.Filter, cursor model.Cursor) url.Values {
	return NewBuilder().
		AddLevel(filter.Level).
		AddModule(filter.Module).
		AddSearch(filter.Search).
		AddCursor(cursor).
		Build()
}

// ListParams encodes a full fetch of the newest limit records, either from
// /logs or as a cursorless /logs/stream request
func ListParams(filter model.Filter, limit int) url.Values {
	return NewBuilder().
		AddLevel(filter.Level).
		AddModule(filter.Module).
		AddSearch(filter.Search).
		AddLimit(limit).
		Build()
}
