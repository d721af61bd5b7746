package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"time"
)

// Bounded retry policy for transient store failures on read paths.
// Writes are never retried here; their idempotence is handled per-statement.
const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// isTransient reports whether err looks like a recoverable store failure
// (dropped connection, unreachable host) rather than a terminal outcome.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// withRetry runs op, retrying transient failures with exponential backoff.
// Terminal errors (not found, conflicts, bad input) surface immediately.
func withRetry(ctx context.Context, op func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
