// Package command holds the units of GPU work a renderer.Context executes: draws, clears and
// fragment-shader computes. Commands carry everything a draw needs except the automatic
// uniforms, which the Context supplies from its uniform state.
package command

import (
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// Executor runs commands. renderer.Context implements it; commands forward to it from Execute.
type Executor interface {
	// Draw encodes cmd into the current frame. A command whose program reads czm_DrawUniforms
	// owns one block per frustum, so it is drawn at most once per frustum per frame; a second
	// draw panics with a *common.PreconditionError.
	//
	// Parameters:
	//   - cmd: the draw command
	//   - passState: the pass the draw belongs to, nil for the default window pass
	//
	// Returns:
	//   - error: an error if a per-command GPU resource could not be created
	Draw(cmd DrawCommand, passState *gpu.PassState) error

	// Clear starts a new render pass that clears the selected attachments.
	//
	// Parameters:
	//   - cmd: the clear command
	//   - passState: the pass the clear belongs to, nil for the default window pass
	Clear(cmd ClearCommand, passState *gpu.PassState)

	// Compute renders a viewport quad with cmd's fragment shader into its output target. A
	// command with czm_DrawUniforms runs at most once per frame.
	//
	// Parameters:
	//   - cmd: the compute command
	//
	// Returns:
	//   - error: an error if a per-command GPU resource could not be created
	Compute(cmd ComputeCommand) error
}

// uniformBuffers lazily owns the czm_DrawUniforms buffers of one command. The provider is
// recreated when the program's block size or the requested slot count changes.
type uniformBuffers struct {
	provider buffer.UniformBufferProvider
}

func (u *uniformBuffers) get(device gpu.Device, blockSize, slots int, label string) (buffer.UniformBufferProvider, error) {
	if u.provider != nil && u.provider.BlockSize() == blockSize && u.provider.SlotCount() >= slots {
		return u.provider, nil
	}
	u.release()
	p, err := buffer.NewUniformBufferProvider(device, blockSize,
		buffer.WithSlotCount(slots),
		buffer.WithUniformLabel(label),
	)
	if err != nil {
		return nil, err
	}
	u.provider = p
	return p, nil
}

func (u *uniformBuffers) release() {
	if u.provider != nil {
		u.provider.Release()
		u.provider = nil
	}
}
