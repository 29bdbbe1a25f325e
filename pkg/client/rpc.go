package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/libnfs/internal/logger"
	"github.com/example/libnfs/pkg/api"
)

// callWithRetry executes an RPC call with retry logic. Each attempt gets its
// own timeout; retryable failures back off exponentially.
func (c *Client) callWithRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	attempts := 0

	attempt := func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		err := fn(callCtx)
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logger.Debug("%s attempt %d failed, retrying in %v: %v", operation, attempts, delay, err)
	}

	err := backoff.RetryNotify(attempt, c.retryPolicy(ctx), notify)
	c.stats.record(time.Since(start), err != nil)

	if err != nil && attempts > 1 {
		return fmt.Errorf("operation %s failed after %d attempts: %w", operation, attempts, err)
	}
	return err
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.RetryDelay
	if c.config.BackoffFactor >= 1 {
		b.Multiplier = c.config.BackoffFactor
	}
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Reset()

	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	// If it's a context error, it's not retryable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Check gRPC error codes
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
			// Server is unavailable, resource exhausted, or transaction aborted
			return true
		case codes.Internal, codes.Unknown:
			// Internal server error or unknown error
			return true
		default:
			return false
		}
	}

	return false
}

// checkStatus counts a protocol failure and converts it to an error.
func (c *Client) checkStatus(op string, st api.Status) error {
	if st == api.Status_OK {
		return nil
	}
	c.stats.protocolError()
	if st == api.Status_ERR_STALE {
		// any cached directory may be the one that went away
		c.handleCache.Clear()
	}
	return StatusToError(op, st)
}

type statsCollector struct {
	mu           sync.Mutex
	operations   uint64
	errors       uint64
	bytesRead    uint64
	bytesWritten uint64
	totalTime    time.Duration
}

func (s *statsCollector) record(d time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations++
	s.totalTime += d
	if failed {
		s.errors++
	}
}

func (s *statsCollector) protocolError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

func (s *statsCollector) addRead(n int) {
	s.mu.Lock()
	s.bytesRead += uint64(n)
	s.mu.Unlock()
}

func (s *statsCollector) addWritten(n int) {
	s.mu.Lock()
	s.bytesWritten += uint64(n)
	s.mu.Unlock()
}

func (s *statsCollector) snapshot() ClientStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ClientStats{
		Operations:   s.operations,
		Errors:       s.errors,
		BytesRead:    s.bytesRead,
		BytesWritten: s.bytesWritten,
	}
	if s.operations > 0 {
		st.AvgResponseTime = s.totalTime / time.Duration(s.operations)
	}
	return st
}

// GetStatistics returns client operation statistics
func (c *Client) GetStatistics() ClientStats {
	return c.stats.snapshot()
}

// ClearCache clears all cached handles.
func (c *Client) ClearCache() error {
	c.handleCache.Clear()
	return nil
}

// SetCacheTTL sets the time-to-live for cache entries
func (c *Client) SetCacheTTL(duration time.Duration) {
	c.handleCache.SetTTL(duration)
}
