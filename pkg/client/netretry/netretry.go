// Package netretry provides shared retry utilities for transient network
// errors across deployment client packages (Docker, Caddy, endpoint
// verification).
package netretry

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// httpStatusCodePattern matches HTTP 5xx status codes at word boundaries
// to avoid false positives on port numbers like ":5000".
var httpStatusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

// IsRetryable returns true if the error indicates a transient network error
// that should be retried. This covers HTTP 5xx status codes and TCP-level
// errors such as connection resets, timeouts, and unexpected EOF.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	// HTTP 5xx status text patterns and TCP-level transient network errors.
	textPatterns := []string{
		"Internal Server Error", "Bad Gateway",
		"Service Unavailable", "Gateway Timeout",
		"connection reset by peer", "connection refused",
		"i/o timeout", "TLS handshake timeout",
		"unexpected EOF", "no such host",
		"context deadline exceeded",
	}

	for _, pattern := range textPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	// Match HTTP 5xx numeric codes at word boundaries to avoid false positives
	// on port numbers like ":5000". Uses regexp for precise matching.
	return httpStatusCodePattern.MatchString(errMsg)
}

// ExponentialDelay returns the delay for the given retry attempt
// using exponential backoff.
// Uses the formula: min(baseWait * 2^(attempt-1), maxWait).
func ExponentialDelay(
	attempt int,
	baseWait, maxWait time.Duration,
) time.Duration {
	return min(baseWait*time.Duration(1<<(attempt-1)), maxWait)
}

// Do runs op until it succeeds, returns a non-retryable error, or exhausts
// maxAttempts, sleeping an exponential backoff between attempts. The wait is
// interruptible via ctx.
func Do(
	ctx context.Context,
	maxAttempts int,
	baseWait, maxWait time.Duration,
	op func(ctx context.Context) error,
) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) || attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(ExponentialDelay(attempt, baseWait, maxWait))
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return lastErr
}
