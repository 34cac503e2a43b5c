package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyAnalyzer fails the first failures calls with err, then succeeds.
type flakyAnalyzer struct {
	failures int
	err      error
	calls    int
}

func (f *flakyAnalyzer) DetectRooms(ctx context.Context, images []Image) (*RoomDetection, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &RoomDetection{RoomsDetected: []string{"Kitchen"}, ImageRooms: map[int][]string{1: {"Kitchen"}}}, nil
}

func (f *flakyAnalyzer) ExtractItems(ctx context.Context, img Image, roomsForImage []string, alreadyFound []DetectedItem) ([]DetectedItem, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []DetectedItem{{Name: "Sofa", Quantity: 1}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResilient(inner Analyzer, maxAttempts int) *ResilientAnalyzer {
	r := NewResilientAnalyzer(inner, 1000, maxAttempts, testLogger())
	r.backoff = time.Millisecond
	return r
}

func TestResilientRetriesThrottling(t *testing.T) {
	inner := &flakyAnalyzer{failures: 2, err: &StatusError{Op: "generate", StatusCode: 503}}
	r := newTestResilient(inner, 3)

	det, err := r.DetectRooms(context.Background(), []Image{{Idx: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []string{"Kitchen"}, det.RoomsDetected)
}

func TestResilientGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: &StatusError{Op: "generate", StatusCode: 429}}
	r := newTestResilient(inner, 3)

	_, err := r.ExtractItems(context.Background(), Image{Idx: 1}, []string{"Kitchen"}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestResilientDoesNotRetryClientErrors(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: &StatusError{Op: "messages", StatusCode: 400}}
	r := newTestResilient(inner, 3)

	_, err := r.DetectRooms(context.Background(), []Image{{Idx: 1}})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestResilientDoesNotRetryCancellation(t *testing.T) {
	inner := &flakyAnalyzer{failures: 10, err: context.Canceled}
	r := newTestResilient(inner, 3)

	_, err := r.DetectRooms(context.Background(), []Image{{Idx: 1}})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttled", &StatusError{StatusCode: 429}, true},
		{"server error", &StatusError{StatusCode: 500}, true},
		{"bad gateway", &StatusError{StatusCode: 502}, true},
		{"overloaded", &StatusError{StatusCode: 529}, true},
		{"wrapped throttled", fmt.Errorf("call failed: %w", &StatusError{StatusCode: 429}), true},
		{"bad request", &StatusError{StatusCode: 400}, false},
		{"unauthorized", &StatusError{StatusCode: 401}, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"generic", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
