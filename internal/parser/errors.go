package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultRetryAfterSecs applies when a provider gives no usable Retry-After.
const defaultRetryAfterSecs = 60

// RateLimitError indicates a parser provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = defaultRetryAfterSecs
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// AsRateLimit returns the RateLimitError wrapped in err, if any.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Both delta-seconds and HTTP-date forms are accepted. Returns 0 if the value
// is empty or invalid.
func ParseRetryAfterHeader(val string) int {
	return parseRetryAfter(val, time.Now())
}

func parseRetryAfter(val string, now time.Time) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := at.Sub(now); d > 0 {
			return int(d.Round(time.Second).Seconds())
		}
	}
	return 0
}
