package command

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
)

// drawCommand is the implementation of the DrawCommand interface.
type drawCommand struct {
	label         string
	vertexArray   gpu.VertexArray
	primitiveType gpu.PrimitiveType
	offset        int
	count         int
	instanceCount int
	modelMatrix   common.Matrix4
	pipeline      pipeline.RenderPipeline
	renderState   renderstate.RenderState
	uniformMap    shader.UniformMap
	uniformBlocks map[string]gpu.Buffer
	pass          int

	uniforms uniformBuffers
}

// DrawCommand is one draw call: geometry, a pipeline, a render state and the manual uniforms of
// its program. Draw commands are long-lived and re-executed every frame; the command owns the
// uniform buffers its czm_DrawUniforms block is written to, so Release must be called when the
// command is discarded.
type DrawCommand interface {
	// Label returns the debug label of the command.
	//
	// Returns:
	//   - string: the label
	Label() string

	// VertexArray returns the geometry, nil for attribute-less draws.
	//
	// Returns:
	//   - gpu.VertexArray: the vertex array
	VertexArray() gpu.VertexArray

	// PrimitiveType returns the topology of the draw.
	//
	// Returns:
	//   - gpu.PrimitiveType: the primitive type
	PrimitiveType() gpu.PrimitiveType

	// Offset returns the first vertex or index.
	//
	// Returns:
	//   - int: the offset
	Offset() int

	// Count returns the number of vertices or indices. Zero on an indexed draw means every index
	// in the index buffer.
	//
	// Returns:
	//   - int: the count
	Count() int

	// InstanceCount returns the number of instances, at least 1.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	// ModelMatrix returns the model-to-world transform that feeds the automatic uniforms.
	//
	// Returns:
	//   - common.Matrix4: the model matrix
	ModelMatrix() common.Matrix4

	// Pipeline returns the pipeline the command draws with.
	//
	// Returns:
	//   - pipeline.RenderPipeline: the pipeline
	Pipeline() pipeline.RenderPipeline

	// RenderState returns the fixed-function state, nil for the Context default.
	//
	// Returns:
	//   - renderstate.RenderState: the render state
	RenderState() renderstate.RenderState

	// UniformMap returns the providers of the program's manual uniforms.
	//
	// Returns:
	//   - shader.UniformMap: the uniform map
	UniformMap() shader.UniformMap

	// UniformBlocks returns caller-owned buffers for the program's custom uniform blocks, keyed by
	// block name.
	//
	// Returns:
	//   - map[string]gpu.Buffer: the block buffers
	UniformBlocks() map[string]gpu.Buffer

	// Pass returns the pass identifier exposed to shaders as czm_pass.
	//
	// Returns:
	//   - int: the pass
	Pass() int

	SetModelMatrix(m common.Matrix4)
	SetPipeline(p pipeline.RenderPipeline)
	SetRenderState(rs renderstate.RenderState)
	SetUniformMap(m shader.UniformMap)
	SetCount(count int)
	SetInstanceCount(count int)

	// UniformBufferProvider returns the command's czm_DrawUniforms buffers, creating them on first
	// use and recreating them when the block size or slot count grows.
	//
	// Parameters:
	//   - device: the device that allocates the buffers
	//   - blockSize: the program's draw block size in bytes
	//   - slots: the number of blocks the command may write per frame
	//
	// Returns:
	//   - buffer.UniformBufferProvider: the provider
	//   - error: an error if allocation fails
	UniformBufferProvider(device gpu.Device, blockSize, slots int) (buffer.UniformBufferProvider, error)

	// Execute draws the command through executor.
	//
	// Parameters:
	//   - executor: the Context
	//   - passState: the pass the draw belongs to, may be nil
	//
	// Returns:
	//   - error: the error returned by executor
	Execute(executor Executor, passState *gpu.PassState) error

	// Release frees the command's uniform buffers. The pipeline is not released; it belongs to
	// whoever acquired it from the PipelineCache.
	Release()
}

var _ DrawCommand = &drawCommand{}

// NewDrawCommand creates a DrawCommand with an identity model matrix and one instance.
//
// Parameters:
//   - options: variadic list of DrawCommandBuilderOption
//
// Returns:
//   - DrawCommand: the new command
func NewDrawCommand(options ...DrawCommandBuilderOption) DrawCommand {
	c := &drawCommand{
		label:         "draw command",
		primitiveType: gpu.PrimitiveTypeTriangles,
		instanceCount: 1,
		modelMatrix:   common.Identity4(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *drawCommand) Label() string                             { return c.label }
func (c *drawCommand) VertexArray() gpu.VertexArray              { return c.vertexArray }
func (c *drawCommand) PrimitiveType() gpu.PrimitiveType          { return c.primitiveType }
func (c *drawCommand) Offset() int                               { return c.offset }
func (c *drawCommand) Count() int                                { return c.count }
func (c *drawCommand) InstanceCount() int                        { return c.instanceCount }
func (c *drawCommand) ModelMatrix() common.Matrix4               { return c.modelMatrix }
func (c *drawCommand) Pipeline() pipeline.RenderPipeline         { return c.pipeline }
func (c *drawCommand) RenderState() renderstate.RenderState      { return c.renderState }
func (c *drawCommand) UniformMap() shader.UniformMap             { return c.uniformMap }
func (c *drawCommand) UniformBlocks() map[string]gpu.Buffer      { return c.uniformBlocks }
func (c *drawCommand) Pass() int                                 { return c.pass }
func (c *drawCommand) SetModelMatrix(m common.Matrix4)           { c.modelMatrix = m }
func (c *drawCommand) SetPipeline(p pipeline.RenderPipeline)     { c.pipeline = p }
func (c *drawCommand) SetRenderState(rs renderstate.RenderState) { c.renderState = rs }
func (c *drawCommand) SetUniformMap(m shader.UniformMap)         { c.uniformMap = m }
func (c *drawCommand) SetCount(count int)                        { c.count = count }
func (c *drawCommand) SetInstanceCount(count int)                { c.instanceCount = count }

func (c *drawCommand) UniformBufferProvider(device gpu.Device, blockSize, slots int) (buffer.UniformBufferProvider, error) {
	return c.uniforms.get(device, blockSize, slots, c.label+" uniforms")
}

func (c *drawCommand) Execute(executor Executor, passState *gpu.PassState) error {
	return executor.Draw(c, passState)
}

func (c *drawCommand) Release() {
	c.uniforms.release()
}

// DrawCount resolves the number of vertices or indices cmd submits, panicking with a
// *common.PreconditionError when it cannot be determined.
//
// Parameters:
//   - cmd: the draw command
//
// Returns:
//   - int: the element count
//   - bool: true when the draw is indexed
func DrawCount(cmd DrawCommand) (int, bool) {
	va := cmd.VertexArray()
	indexed := va != nil && va.Descriptor().IndexBuffer != nil
	count := cmd.Count()
	if count == 0 && indexed {
		desc := va.Descriptor()
		count = desc.IndexBuffer.Size()/desc.IndexType.Size() - cmd.Offset()
	}
	common.Assert(count > 0, "command: %s has no vertex count", cmd.Label())
	return count, indexed
}
