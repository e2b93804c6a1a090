package poller

import "github.com/penwyp/go-log-monitor/internal/core/model"

// Buffer is the bounded, newest-first display buffer. It is not safe for
// concurrent use; the Poller guards it.
type Buffer struct {
	capacity int
	records  []model.LogRecord
}

// NewBuffer creates a buffer holding at most capacity records
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		records:  make([]model.LogRecord, 0, capacity),
	}
}

// Prepend puts batch (newest first) in front of the held records and drops
// the oldest records beyond capacity. It returns how many were dropped.
func (b *Buffer) Prepend(batch []model.LogRecord) int {
	if len(batch) == 0 {
		return 0
	}

	total := len(batch) + len(b.records)
	merged := make([]model.LogRecord, 0, min(total, b.capacity))
	merged = append(merged, batch[:min(len(batch), b.capacity)]...)
	if room := b.capacity - len(merged); room > 0 {
		merged = append(merged, b.records[:min(len(b.records), room)]...)
	}

	evicted := total - len(merged)
	b.records = merged
	return evicted
}

// Replace discards the held records and keeps the newest capacity records
// of records.
func (b *Buffer) Replace(records []model.LogRecord) {
	n := min(len(records), b.capacity)
	b.records = append(make([]model.LogRecord, 0, n), records[:n]...)
}

// Records returns a copy of the held records, newest first
func (b *Buffer) Records() []model.LogRecord {
	out := make([]model.LogRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of held records
func (b *Buffer) Len() int {
	return len(b.records)
}

// Capacity returns the configured capacity
func (b *Buffer) Capacity() int {
	return b.capacity
}
