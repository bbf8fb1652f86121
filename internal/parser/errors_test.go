package parser

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimitError_DefaultRetry(t *testing.T) {
	err := NewRateLimitError("claude", errors.New("429"), 0)

	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "claude rate limited")
}

func TestAsRateLimit_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("extract: %w", NewRateLimitError("openai", errors.New("429"), 5))

	rl, ok := AsRateLimit(wrapped)

	assert.True(t, ok)
	assert.Equal(t, "openai", rl.Provider)

	_, ok = AsRateLimit(errors.New("other"))
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"30", 30},
		{" 12 ", 12},
		{"-4", 0},
		{"soon", 0},
		{"Sat, 01 Jun 2024 12:00:45 GMT", 45},
		{"Sat, 01 Jun 2024 11:00:00 GMT", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.in, now), "input %q", tt.in)
	}
}
