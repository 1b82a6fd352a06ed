package command

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
)

// DrawCommandBuilderOption is a functional option used to configure a DrawCommand during construction.
type DrawCommandBuilderOption func(*drawCommand)

// WithLabel sets the debug label, also used to name the command's uniform buffers.
func WithLabel(label string) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.label = label
	}
}

// WithVertexArray sets the geometry of the draw.
func WithVertexArray(va gpu.VertexArray) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.vertexArray = va
	}
}

// WithPrimitiveType sets the topology. The default is triangles.
func WithPrimitiveType(t gpu.PrimitiveType) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.primitiveType = t
	}
}

// WithRange sets the first element and the number of elements drawn.
//
// Parameters:
//   - offset: the first vertex or index
//   - count: the number of vertices or indices, 0 for the whole index buffer
//
// Returns:
//   - DrawCommandBuilderOption: a function that sets the draw range
func WithRange(offset, count int) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.offset = offset
		c.count = count
	}
}

// WithInstanceCount sets the number of instances.
func WithInstanceCount(count int) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.instanceCount = count
	}
}

// WithModelMatrix sets the model-to-world transform.
func WithModelMatrix(m common.Matrix4) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.modelMatrix = m
	}
}

// WithPipeline sets the pipeline.
func WithPipeline(p pipeline.RenderPipeline) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.pipeline = p
	}
}

// WithRenderState sets the fixed-function state.
func WithRenderState(rs renderstate.RenderState) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.renderState = rs
	}
}

// WithUniformMap sets the manual uniform providers.
func WithUniformMap(m shader.UniformMap) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.uniformMap = m
	}
}

// WithUniformBlock binds a caller-owned buffer to a custom uniform block of the program.
//
// Parameters:
//   - name: the block name as declared in the shader
//   - buffer: the uniform buffer holding the block
//
// Returns:
//   - DrawCommandBuilderOption: a function that adds the block buffer
func WithUniformBlock(name string, buffer gpu.Buffer) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		if c.uniformBlocks == nil {
			c.uniformBlocks = make(map[string]gpu.Buffer)
		}
		c.uniformBlocks[name] = buffer
	}
}

// WithPass sets the pass identifier.
func WithPass(pass int) DrawCommandBuilderOption {
	return func(c *drawCommand) {
		c.pass = pass
	}
}
