// Package request fetches remote resources on a bounded concurrent queue with cooperative
// cancellation.
package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
)

var (
	// ErrCancelled is the error of an operation that was cancelled before it completed.
	ErrCancelled = errors.New("request: operation cancelled")

	// ErrSchedulerClosed is returned by Request after Close.
	ErrSchedulerClosed = errors.New("request: scheduler is closed")
)

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request: %s: %s", e.URL, e.Status)
}

// State is the lifecycle state of an Operation.
type State int

const (
	// StateReady is an operation queued for a network slot.
	StateReady State = iota
	// StateExecuting is an operation holding a slot.
	StateExecuting
	// StateCancelled is transient: a cancelled operation moves on to StateFinished in the same
	// transition and is never observed in this state.
	StateCancelled
	// StateFinished is terminal.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateCancelled:
		return "cancelled"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Operation is one network fetch. It is safe for concurrent use.
type Operation struct {
	mu sync.Mutex

	url       string
	state     State
	cancelled bool
	response  *Response
	err       error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newOperation(parent context.Context, url string) *Operation {
	ctx, cancel := context.WithCancel(parent)
	return &Operation{
		url:    url,
		state:  StateReady,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// URL returns the requested URL.
func (o *Operation) URL() string {
	return o.url
}

// State returns the current lifecycle state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancelled reports whether the operation finished through Cancel.
func (o *Operation) Cancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Done returns a channel closed when the operation reaches StateFinished.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Response returns the response of a successful operation, nil otherwise.
func (o *Operation) Response() *Response {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.response
}

// Err returns ErrCancelled, a *StatusError, the transport error, or nil.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Cancel stops the operation. It finishes at once with ErrCancelled; work already in progress
// is abandoned at its next checkpoint. Cancelling a finished operation does nothing.
func (o *Operation) Cancel() {
	if o.transition(StateCancelled, nil, ErrCancelled) {
		common.Logger().Debug("request cancelled", "url", o.url)
	}
}

// Wait blocks until the operation finishes or ctx is done.
//
// Parameters:
//   - ctx: bounds the wait; it does not cancel the operation
//
// Returns:
//   - *Response: the response of a successful operation
//   - error: the operation error, or ctx's error
func (o *Operation) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-o.done:
		return o.Response(), o.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// finished reports whether the operation has reached its terminal state. The fetch checks it
// at every checkpoint.
func (o *Operation) finished() bool {
	return o.State() == StateFinished
}

// transition is the only place the state changes. The legal moves are
//
//	ready     -> executing | cancelled | finished
//	executing -> cancelled | finished
//	cancelled -> finished
//
// Entering cancelled always continues to finished, so every operation closes its done channel
// exactly once whichever path ends it. It reports whether the move was made.
func (o *Operation) transition(to State, resp *Response, err error) bool {
	o.mu.Lock()
	from := o.state
	legal := false
	switch to {
	case StateExecuting:
		legal = from == StateReady
	case StateCancelled, StateFinished:
		legal = from == StateReady || from == StateExecuting
	}
	if !legal {
		o.mu.Unlock()
		return false
	}

	o.state = to
	if to == StateCancelled {
		o.cancelled = true
		o.state = StateFinished
	}
	if o.state == StateFinished {
		o.response = resp
		o.err = err
	}
	o.mu.Unlock()

	if to != StateExecuting {
		o.cancel()
		close(o.done)
	}
	return true
}
