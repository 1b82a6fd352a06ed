package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, op *Operation) (*Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := op.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "operation %s never finished", op.URL())
	return resp, err
}

// blockingServer answers every request with a first chunk, then holds the body open until
// release is closed or the client goes away.
func blockingServer(t *testing.T) (*httptest.Server, chan struct{}, *atomic.Int32) {
	t.Helper()
	release := make(chan struct{})
	var inflight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflight.Add(1)
		defer inflight.Add(-1)
		w.Write([]byte("tile-header"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
			w.Write([]byte("-tile-body"))
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	return srv, release, &inflight
}

func TestRequestFetchesBody(t *testing.T) {
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte(strings.Repeat("x", 3*readChunkSize+7)))
	}))
	defer srv.Close()

	s := NewScheduler(WithUserAgent("globe-test"))
	defer s.Close()

	op, err := s.Request(context.Background(), srv.URL+"/tiles/0/0/0")
	require.NoError(t, err)
	resp, err := waitFor(t, op)
	require.NoError(t, err)

	assert.Equal(t, StateFinished, op.State())
	assert.False(t, op.Cancelled())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Body, 3*readChunkSize+7)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "globe-test", userAgent.Load())
	assert.Eventually(t, func() bool { return s.PendingRequests() == 0 }, time.Second, time.Millisecond)
}

func TestRequestReportsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewScheduler()
	defer s.Close()

	op, err := s.Request(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	resp, err := waitFor(t, op)
	assert.Nil(t, resp)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "/missing")
	assert.False(t, op.Cancelled())
}

func TestRequestBlocksAtConcurrencyLimit(t *testing.T) {
	srv, release, inflight := blockingServer(t)
	s := NewScheduler(WithMaxConcurrentRequests(2))
	defer s.Close()

	first, err := s.Request(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	second, err := s.Request(context.Background(), srv.URL+"/b")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return inflight.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, s.ActiveRequests())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Request(ctx, srv.URL+"/c")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "the requester waits while every slot is taken")

	close(release)
	for _, op := range []*Operation{first, second} {
		resp, err := waitFor(t, op)
		require.NoError(t, err)
		assert.Equal(t, "tile-header-tile-body", string(resp.Body))
	}

	third, err := s.Request(context.Background(), srv.URL+"/c")
	require.NoError(t, err)
	_, err = waitFor(t, third)
	assert.NoError(t, err)
}

func TestCancelFinishesExecutingOperation(t *testing.T) {
	srv, release, _ := blockingServer(t)
	defer close(release)
	s := NewScheduler()
	defer s.Close()

	op, err := s.Request(context.Background(), srv.URL+"/slow")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return op.State() == StateExecuting }, time.Second, time.Millisecond)

	op.Cancel()
	select {
	case <-op.Done():
	default:
		t.Fatal("a cancelled operation finishes immediately")
	}
	assert.Equal(t, StateFinished, op.State())
	assert.True(t, op.Cancelled())
	assert.ErrorIs(t, op.Err(), ErrCancelled)
	assert.Nil(t, op.Response())

	op.Cancel()
	assert.ErrorIs(t, op.Err(), ErrCancelled)
	assert.Eventually(t, func() bool { return s.ActiveRequests() == 0 }, time.Second, time.Millisecond,
		"the abandoned fetch gives its slot back")
}

func TestCloseCancelsUnfinishedOperations(t *testing.T) {
	srv, release, _ := blockingServer(t)
	defer close(release)
	s := NewScheduler(WithMaxConcurrentRequests(4))

	var ops []*Operation
	for _, path := range []string{"/1", "/2", "/3"} {
		op, err := s.Request(context.Background(), srv.URL+path)
		require.NoError(t, err)
		ops = append(ops, op)
	}

	s.Close()
	for _, op := range ops {
		assert.Equal(t, StateFinished, op.State())
		assert.ErrorIs(t, op.Err(), ErrCancelled)
	}
	assert.Equal(t, 0, s.PendingRequests())

	_, err := s.Request(context.Background(), srv.URL+"/4")
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}

func TestRequestRejectsMalformedURL(t *testing.T) {
	s := NewScheduler()
	defer s.Close()
	_, err := s.Request(context.Background(), "://tiles")
	assert.Error(t, err)
	assert.Equal(t, 0, s.PendingRequests())
}

func TestTransitions(t *testing.T) {
	t.Run("ready to cancelled ends finished", func(t *testing.T) {
		op := newOperation(context.Background(), "memory://a")
		op.Cancel()
		assert.Equal(t, StateFinished, op.State())
		assert.True(t, op.Cancelled())
		assert.False(t, op.transition(StateExecuting, nil, nil), "a finished operation never executes")
		assert.ErrorIs(t, op.ctx.Err(), context.Canceled)
	})

	t.Run("completion happens once", func(t *testing.T) {
		op := newOperation(context.Background(), "memory://b")
		require.True(t, op.transition(StateExecuting, nil, nil))
		assert.False(t, op.transition(StateExecuting, nil, nil))

		resp := &Response{StatusCode: http.StatusOK}
		require.True(t, op.transition(StateFinished, resp, nil))
		assert.False(t, op.transition(StateFinished, nil, errors.New("late")))
		op.Cancel()

		assert.Same(t, resp, op.Response())
		assert.NoError(t, op.Err())
		assert.False(t, op.Cancelled())
	})

	t.Run("cancelled is never observed", func(t *testing.T) {
		op := newOperation(context.Background(), "memory://c")
		require.True(t, op.transition(StateExecuting, nil, nil))
		require.True(t, op.transition(StateCancelled, nil, ErrCancelled))
		assert.Equal(t, StateFinished, op.State())
		assert.Equal(t, "cancelled", StateCancelled.String())
	})
}
