package buffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// DefaultUniformOffsetAlignment satisfies the uniform-buffer offset alignment of every
// supported backend.
const DefaultUniformOffsetAlignment = 256

// uniformBufferProvider is the implementation of the UniformBufferProvider interface.
type uniformBufferProvider struct {
	buffers   [BufferSyncStateCount]gpu.Buffer
	blockSize int
	stride    int
	slotCount int
	alignment int
	label     string
	released  bool
}

// UniformBufferProvider owns exactly BufferSyncStateCount uniform buffers. The buffer for
// frame N is selected by the externally advanced BufferSyncState, which assumes the GPU lags
// the CPU by at most two frames. Each buffer holds SlotCount blocks at Stride intervals so a
// block can be written more than once per frame (one slot per frustum) without overwriting
// data an earlier draw of the same frame still reads.
type UniformBufferProvider interface {
	// CurrentBuffer returns the buffer for a synchronization slot.
	//
	// Parameters:
	//   - state: the current frame's sync slot
	//
	// Returns:
	//   - gpu.Buffer: the buffer the CPU may write this frame
	CurrentBuffer(state BufferSyncState) gpu.Buffer

	// BlockSize returns the size of one uniform block in bytes.
	//
	// Returns:
	//   - int: the block size
	BlockSize() int

	// Stride returns the distance in bytes between consecutive blocks.
	//
	// Returns:
	//   - int: the block stride, a multiple of the offset alignment
	Stride() int

	// SlotCount returns how many blocks each buffer holds.
	//
	// Returns:
	//   - int: the slot count
	SlotCount() int

	// Offset returns the byte offset of a block slot, panicking with a
	// *common.ResourceExhaustedError when the slot is out of range.
	//
	// Parameters:
	//   - slot: the slot index
	//
	// Returns:
	//   - int: the byte offset
	Offset(slot int) int

	// Release frees the buffers. Safe to call more than once.
	Release()
}

var _ UniformBufferProvider = &uniformBufferProvider{}

// NewUniformBufferProvider allocates BufferSyncStateCount buffers of SlotCount aligned blocks.
//
// Parameters:
//   - device: the device that allocates the buffers
//   - blockSize: the size of one uniform block in bytes
//   - options: variadic list of UniformBufferProviderBuilderOption functions
//
// Returns:
//   - UniformBufferProvider: the new provider
//   - error: an error if a buffer could not be allocated
func NewUniformBufferProvider(device gpu.Device, blockSize int, options ...UniformBufferProviderBuilderOption) (UniformBufferProvider, error) {
	p := &uniformBufferProvider{
		blockSize: blockSize,
		slotCount: 1,
		alignment: DefaultUniformOffsetAlignment,
		label:     "uniform buffer",
	}
	for _, opt := range options {
		opt(p)
	}
	common.Assert(blockSize > 0, "buffer: uniform block size must be > 0, got %d", blockSize)
	common.Assert(p.slotCount > 0, "buffer: uniform slot count must be > 0, got %d", p.slotCount)
	common.Assert(p.alignment > 0, "buffer: uniform alignment must be > 0, got %d", p.alignment)

	p.stride = (blockSize + p.alignment - 1) / p.alignment * p.alignment
	for i := range BufferSyncStateCount {
		b, err := device.CreateBuffer(gpu.BufferUsageUniform, p.stride*p.slotCount, fmt.Sprintf("%s %s", p.label, BufferSyncState(i)))
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("buffer: creating %s %d: %w", p.label, i, err)
		}
		p.buffers[i] = b
	}
	common.Logger().Debug("uniform buffer provider created", "label", p.label, "blockSize", blockSize, "slots", p.slotCount)
	return p, nil
}

func (p *uniformBufferProvider) CurrentBuffer(state BufferSyncState) gpu.Buffer {
	common.Assert(state >= 0 && int(state) < BufferSyncStateCount, "buffer: invalid sync state %d", state)
	return p.buffers[state]
}

func (p *uniformBufferProvider) BlockSize() int {
	return p.blockSize
}

func (p *uniformBufferProvider) Stride() int {
	return p.stride
}

func (p *uniformBufferProvider) SlotCount() int {
	return p.slotCount
}

func (p *uniformBufferProvider) Offset(slot int) int {
	if slot < 0 || slot >= p.slotCount {
		common.Exhausted(p.label+" slots", p.slotCount)
	}
	return slot * p.stride
}

func (p *uniformBufferProvider) Release() {
	if p.released {
		return
	}
	p.released = true
	for i, b := range p.buffers {
		if b != nil {
			b.Release()
			p.buffers[i] = nil
		}
	}
}
