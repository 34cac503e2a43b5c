package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// StatusError carries the HTTP status of a failed vision backend call so the
// retry policy can tell throttling from hard failures.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision %s returned status %d", e.Op, e.StatusCode)
}

// ResilientAnalyzer wraps an Analyzer with request pacing, retry with
// exponential backoff, and a circuit breaker. Vision calls are slow and
// rate-limited upstream; pacing keeps a large batch from tripping provider
// limits, and the breaker stops hammering a provider that is down.
type ResilientAnalyzer struct {
	inner       Analyzer
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[any]
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

func NewResilientAnalyzer(inner Analyzer, rps float64, maxAttempts int, logger *slog.Logger) *ResilientAnalyzer {
	if rps <= 0 {
		rps = 0.5
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "vision",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})
	return &ResilientAnalyzer{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		breaker:     breaker,
		maxAttempts: maxAttempts,
		backoff:     500 * time.Millisecond,
		logger:      logger,
	}
}

func (r *ResilientAnalyzer) DetectRooms(ctx context.Context, images []Image) (*RoomDetection, error) {
	var result *RoomDetection
	err := r.do(ctx, "detect_rooms", func() error {
		var err error
		result, err = r.inner.DetectRooms(ctx, images)
		return err
	})
	return result, err
}

func (r *ResilientAnalyzer) ExtractItems(ctx context.Context, img Image, roomsForImage []string, alreadyFound []DetectedItem) ([]DetectedItem, error) {
	var result []DetectedItem
	err := r.do(ctx, "extract_items", func() error {
		var err error
		result, err = r.inner.ExtractItems(ctx, img, roomsForImage, alreadyFound)
		return err
	})
	return result, err
}

func (r *ResilientAnalyzer) do(ctx context.Context, op string, fn func() error) error {
	backoff := r.backoff
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := r.breaker.Execute(func() (any, error) {
			return nil, fn()
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		r.logger.Warn("vision call failed, retrying",
			"op", op, "attempt", attempt, "max_attempts", r.maxAttempts, "error", err)

		if attempt == r.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("vision %s failed after %d attempts: %w", op, r.maxAttempts, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		// 529 is Anthropic's overloaded status.
		switch statusErr.StatusCode {
		case 408, 429, 500, 502, 503, 504, 529:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
