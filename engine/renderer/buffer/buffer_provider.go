package buffer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// ErrProviderClosed is returned by NextBuffer once the provider has been closed.
var ErrProviderClosed = errors.New("buffer provider closed")

// bufferProvider is the implementation of the BufferProvider interface.
type bufferProvider struct {
	mu      sync.Mutex
	buffers []gpu.Buffer
	next    int
	closed  bool

	// slots holds one token per buffer that is free for the CPU to write.
	slots chan struct{}

	inflightBuffersCount int
	usage                gpu.BufferUsage
	label                string
}

// BufferProvider hands out a fixed ring of GPU buffers and never returns a buffer the GPU may
// still be reading: each NextBuffer consumes a slot that is only returned by Release, which the
// caller invokes once the GPU signals completion of the work that used the buffer.
type BufferProvider interface {
	// NextBuffer returns the next buffer in the ring, blocking while every buffer is in flight.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - gpu.Buffer: a buffer safe to write
	//   - error: ErrProviderClosed after Close, or the context error
	NextBuffer(ctx context.Context) (gpu.Buffer, error)

	// Release returns one in-flight slot. It may be called from any goroutine, typically from a
	// frame completion callback. Extra releases beyond the buffer count are ignored.
	Release()

	// InflightBuffersCount returns the number of buffers in the ring.
	//
	// Returns:
	//   - int: the buffer count
	InflightBuffersCount() int

	// Close unblocks every waiter with ErrProviderClosed and then frees the buffers.
	Close()
}

var _ BufferProvider = &bufferProvider{}

// NewBufferProvider allocates the buffer ring.
//
// Parameters:
//   - device: the device that allocates the buffers
//   - size: the size of each buffer in bytes
//   - options: variadic list of BufferProviderBuilderOption functions
//
// Returns:
//   - BufferProvider: the new provider
//   - error: an error if a buffer could not be allocated
func NewBufferProvider(device gpu.Device, size int, options ...BufferProviderBuilderOption) (BufferProvider, error) {
	p := &bufferProvider{
		inflightBuffersCount: BufferSyncStateCount,
		usage:                gpu.BufferUsageUniform,
		label:                "buffer provider",
	}
	for _, opt := range options {
		opt(p)
	}
	common.Assert(p.inflightBuffersCount > 0, "buffer: inflight buffer count must be > 0, got %d", p.inflightBuffersCount)

	p.buffers = make([]gpu.Buffer, 0, p.inflightBuffersCount)
	for i := range p.inflightBuffersCount {
		b, err := device.CreateBuffer(p.usage, size, fmt.Sprintf("%s %d", p.label, i))
		if err != nil {
			for _, created := range p.buffers {
				created.Release()
			}
			return nil, fmt.Errorf("buffer: creating %s %d: %w", p.label, i, err)
		}
		p.buffers = append(p.buffers, b)
	}

	p.slots = make(chan struct{}, p.inflightBuffersCount)
	for range p.inflightBuffersCount {
		p.slots <- struct{}{}
	}
	return p, nil
}

func (p *bufferProvider) NextBuffer(ctx context.Context) (gpu.Buffer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case _, ok := <-p.slots:
		if !ok {
			return nil, ErrProviderClosed
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Tokens still buffered in a closed channel are delivered before the close is observed.
	if p.closed {
		return nil, ErrProviderClosed
	}
	b := p.buffers[p.next]
	p.next = (p.next + 1) % len(p.buffers)
	return b, nil
}

func (p *bufferProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.slots <- struct{}{}:
	default:
		common.Logger().Warn("buffer provider released more slots than it owns", "label", p.label)
	}
}

func (p *bufferProvider) InflightBuffersCount() int {
	return p.inflightBuffersCount
}

func (p *bufferProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.slots)
	for _, b := range p.buffers {
		b.Release()
	}
	p.buffers = nil
}
