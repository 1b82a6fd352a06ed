package command

import "github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"

// clearCommand is the implementation of the ClearCommand interface.
type clearCommand struct {
	color   *gpu.Color
	depth   *float64
	stencil *int
	target  gpu.RenderTarget
}

// ClearCommand clears any of the color, depth and stencil attachments of a target. Attachments
// without a clear value keep their contents.
type ClearCommand interface {
	// Color returns the clear color, nil to keep the color attachment.
	Color() *gpu.Color

	// Depth returns the clear depth, nil to keep the depth attachment.
	Depth() *float64

	// Stencil returns the clear stencil value, nil to keep the stencil attachment.
	Stencil() *int

	// Target returns the render target to clear, nil for the pass target.
	Target() gpu.RenderTarget

	// Execute clears through executor.
	//
	// Parameters:
	//   - executor: the Context
	//   - passState: the pass the clear belongs to, may be nil
	Execute(executor Executor, passState *gpu.PassState)
}

var _ ClearCommand = &clearCommand{}

// NewClearCommand creates a ClearCommand. Without options it clears nothing.
//
// Parameters:
//   - options: variadic list of ClearCommandBuilderOption
//
// Returns:
//   - ClearCommand: the new command
func NewClearCommand(options ...ClearCommandBuilderOption) ClearCommand {
	c := &clearCommand{}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *clearCommand) Color() *gpu.Color        { return c.color }
func (c *clearCommand) Depth() *float64          { return c.depth }
func (c *clearCommand) Stencil() *int            { return c.stencil }
func (c *clearCommand) Target() gpu.RenderTarget { return c.target }

func (c *clearCommand) Execute(executor Executor, passState *gpu.PassState) {
	executor.Clear(c, passState)
}

// ClearCommandBuilderOption is a functional option used to configure a ClearCommand during construction.
type ClearCommandBuilderOption func(*clearCommand)

// WithClearColor clears the color attachment to color.
func WithClearColor(color gpu.Color) ClearCommandBuilderOption {
	return func(c *clearCommand) {
		c.color = &color
	}
}

// WithClearDepth clears the depth attachment to depth.
func WithClearDepth(depth float64) ClearCommandBuilderOption {
	return func(c *clearCommand) {
		c.depth = &depth
	}
}

// WithClearStencil clears the stencil attachment to stencil.
func WithClearStencil(stencil int) ClearCommandBuilderOption {
	return func(c *clearCommand) {
		c.stencil = &stencil
	}
}

// WithClearTarget clears target instead of the pass target.
func WithClearTarget(target gpu.RenderTarget) ClearCommandBuilderOption {
	return func(c *clearCommand) {
		c.target = target
	}
}
