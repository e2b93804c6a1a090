package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateToWidth("hello", 10))
	assert.Equal(t, "hel…", TruncateToWidth("hello world", 4))
	assert.Equal(t, "", TruncateToWidth("hello", 0))
	assert.Equal(t, "…", TruncateToWidth("hello", 1))

	// wide runes take two cells each
	truncated := TruncateToWidth("日本語テキスト", 6)
	assert.LessOrEqual(t, GetDisplayWidth(truncated), 6)
}

func TestPadToWidth(t *testing.T) {
	assert.Equal(t, "ab   ", PadToWidth("ab", 5))
	assert.Equal(t, 6, GetDisplayWidth(PadToWidth("日本", 6)))
}

func TestSanitizeLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "request ok", "request ok"},
		{"newlines", "line1\nline2\r\n", "line1 line2  "},
		{"escape sequence", "\033[31mred\033[0m", "[31mred[0m"},
		{"tabs", "a\tb", "a b"},
		{"bell", "ding\a", "ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeLine(tt.input))
		})
	}
}
