package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/port"
)

// circuitState tracks rate-limit backoff for a single parser.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackParser tries parsers in order, skipping those with open circuits.
// It implements port.DocumentParser.
type FallbackParser struct {
	parsers  []port.DocumentParser
	circuits []*circuitState
	names    []string
	now      func() time.Time
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.DocumentParser, names []string) *FallbackParser {
	circuits := make([]*circuitState, len(parsers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackParser{
		parsers:  parsers,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for circuit timing.
func (f *FallbackParser) WithClock(now func() time.Time) *FallbackParser {
	f.now = now
	return f
}

func (f *FallbackParser) name(i int) string {
	if i < len(f.names) {
		return f.names[i]
	}
	return fmt.Sprintf("parser[%d]", i)
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	noteReset := func(resetAt time.Time) {
		if earliestReset.IsZero() || resetAt.Before(earliestReset) {
			earliestReset = resetAt
		}
	}

	for i, p := range f.parsers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			logrus.WithField("parser", f.name(i)).
				Debugf("parser.FallbackParser: skipping (circuit open until %s)", resetAt.Format(time.RFC3339))
			noteReset(resetAt)
			continue
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			return out, nil
		}

		logrus.WithField("parser", f.name(i)).WithError(err).Warn("parser.FallbackParser: provider failed")
		lastErr = err

		if rlErr, ok := AsRateLimit(err); ok {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			noteReset(resetAt)
		} else {
			allRateLimited = false
		}
	}

	// Either every circuit was open or every provider answered 429.
	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("all parsers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all parsers failed: %w", lastErr)
}
