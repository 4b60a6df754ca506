package store

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	maxRetries    = 3
	baseDelay     = 1 * time.Second
	maxJitter     = 500 * time.Millisecond
	authErrorCode = "28P01" // invalid_password
	noDBErrorCode = "3D000" // invalid_catalog_name
)

// connectWithRetry wraps openOnce with exponential backoff.
// Retries on transient errors (connection refused, timeout).
// Fails fast on auth and configuration errors.
func connectWithRetry(ctx context.Context, url string) (*Store, error) {
	var lastErr error

	for attempt := range maxRetries {
		s, err := openOnce(ctx, url)
		if err == nil {
			if attempt > 0 {
				slog.Info("connected after retry", "attempt", attempt+1)
			}
			return s, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}
		delay := backoffDelay(attempt)

		slog.Warn("connection failed, retrying",
			"attempt", attempt+1,
			"error", err,
			"retry_in", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// isRetryable classifies errors as retryable or fail-fast.
func isRetryable(err error) bool {
	// Malformed connection strings never succeed
	var parseErr *pgconn.ParseConfigError
	if errors.As(err, &parseErr) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == authErrorCode || pgErr.Code == noDBErrorCode {
			return false
		}
	}

	// Some drivers wrap auth failures differently
	msg := err.Error()
	if strings.Contains(msg, "password authentication failed") ||
		strings.Contains(msg, "no pg_hba.conf entry") {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound
	}
	if strings.Contains(msg, "no such host") {
		return false
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "i/o timeout") ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Unknown errors may be transient
	return true
}

// backoffDelay returns exponential backoff with jitter.
func backoffDelay(attempt int) time.Duration {
	delay := baseDelay << uint(attempt) // 1s, 2s, 4s
	jitter := time.Duration(rand.Int64N(int64(maxJitter)))
	return delay + jitter
}
