package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"golang.org/x/sync/semaphore"
)

// readChunkSize is the size of one data-received checkpoint.
const readChunkSize = 32 << 10

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	mu sync.Mutex
	wg sync.WaitGroup

	maxConcurrentRequests int
	client                *http.Client
	timeout               time.Duration
	userAgent             string

	slots   *semaphore.Weighted
	pending map[*Operation]struct{}
	active  int
	closed  bool
}

// Scheduler runs network fetches concurrently, at most maxConcurrentRequests at a time.
//
// The same counting semaphore paces requesters and bounds execution: Request blocks until a
// slot is free and hands it straight back, then each fetch holds a slot only while it executes.
type Scheduler interface {
	// Request starts fetching url with an HTTP GET. It blocks until the number of executing
	// requests is below the limit, then returns an operation that completes asynchronously.
	//
	// Parameters:
	//   - ctx: cancels the pacing wait and, afterwards, the operation itself
	//   - url: the resource to fetch
	//
	// Returns:
	//   - *Operation: the operation, in StateReady or later
	//   - error: ctx's error, ErrSchedulerClosed, or an error if url is malformed
	Request(ctx context.Context, url string) (*Operation, error)

	// ActiveRequests returns the number of operations holding a slot.
	//
	// Returns:
	//   - int: the executing operation count
	ActiveRequests() int

	// PendingRequests returns the number of operations that have not finished.
	//
	// Returns:
	//   - int: the unfinished operation count
	PendingRequests() int

	// MaxConcurrentRequests returns the concurrency limit.
	//
	// Returns:
	//   - int: the limit
	MaxConcurrentRequests() int

	// Close cancels every unfinished operation and waits for their fetches to return.
	Close()
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler.
//
// Parameters:
//   - options: variadic list of SchedulerBuilderOption
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &scheduler{
		maxConcurrentRequests: DefaultMaxConcurrentRequests,
		timeout:               DefaultTimeout,
		userAgent:             "oxy-globe",
		pending:               make(map[*Operation]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	common.Assert(s.maxConcurrentRequests > 0, "request: maxConcurrentRequests must be > 0, got %d", s.maxConcurrentRequests)
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	s.slots = semaphore.NewWeighted(int64(s.maxConcurrentRequests))
	return s
}

func (s *scheduler) Request(ctx context.Context, url string) (*Operation, error) {
	if s.isClosed() {
		return nil, ErrSchedulerClosed
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}

	// pacing gate
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	s.slots.Release(1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSchedulerClosed
	}
	op := newOperation(ctx, url)
	s.pending[op] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.execute(op, req)
	return op, nil
}

func (s *scheduler) execute(op *Operation, req *http.Request) {
	defer s.wg.Done()
	defer s.forget(op)

	if err := s.slots.Acquire(op.ctx, 1); err != nil {
		op.transition(StateFinished, nil, contextError(op, err))
		return
	}
	defer s.slots.Release(1)
	if !op.transition(StateExecuting, nil, nil) {
		return
	}
	s.setActive(1)
	defer s.setActive(-1)

	resp, err := s.fetch(op, req)
	if err != nil {
		op.transition(StateFinished, nil, contextError(op, err))
		return
	}
	// completion checkpoint: a no-op for an operation cancelled on the last chunk
	op.transition(StateFinished, resp, nil)
}

// fetch performs req and reads its body, abandoning the work at each checkpoint once the
// operation has finished.
func (s *scheduler) fetch(op *Operation, req *http.Request) (*Response, error) {
	req = req.WithContext(op.ctx)
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	// response-received checkpoint
	if op.finished() {
		return nil, ErrCancelled
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: op.url, StatusCode: res.StatusCode, Status: res.Status}
	}

	var body []byte
	if res.ContentLength > 0 {
		body = make([]byte, 0, res.ContentLength)
	}
	chunk := make([]byte, readChunkSize)
	for {
		n, err := res.Body.Read(chunk)
		body = append(body, chunk[:n]...)
		// data-received checkpoint
		if op.finished() {
			return nil, ErrCancelled
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("request: reading %s: %w", op.url, err)
		}
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
}

// contextError reports the caller's context error rather than the transport error that wraps it.
func contextError(op *Operation, err error) error {
	if ctxErr := op.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (s *scheduler) forget(op *Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, op)
}

func (s *scheduler) setActive(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active += delta
}

func (s *scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *scheduler) ActiveRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scheduler) PendingRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *scheduler) MaxConcurrentRequests() int {
	return s.maxConcurrentRequests
}

func (s *scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ops := make([]*Operation, 0, len(s.pending))
	for op := range s.pending {
		ops = append(ops, op)
	}
	s.mu.Unlock()

	if len(ops) > 0 {
		common.Logger().Warn("request scheduler closed with unfinished requests", "cancelled", len(ops))
	}
	for _, op := range ops {
		op.Cancel()
	}
	s.wg.Wait()
}
