package command

import (
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
)

// ViewportQuadVertexSource draws a quad covering the viewport as a four-vertex triangle strip
// with no vertex inputs and passes texture coordinates to the fragment stage.
const ViewportQuadVertexSource = `out vec2 v_textureCoordinates;

void main()
{
    vec2 corner = vec2(float(gl_VertexID & 1), float(gl_VertexID >> 1));
    v_textureCoordinates = corner;
    gl_Position = vec4(corner * 2.0 - 1.0, 0.0, 1.0);
}`

// ViewportQuadVertexCount is the number of vertices of the viewport quad strip.
const ViewportQuadVertexCount = 4

// ViewportQuadVertexShader returns a ShaderSource for ViewportQuadVertexSource.
func ViewportQuadVertexShader() shader.ShaderSource {
	return shader.NewShaderSource(shader.WithSources(ViewportQuadVertexSource))
}

// computeCommand is the implementation of the ComputeCommand interface.
type computeCommand struct {
	label                string
	fragmentShaderSource shader.ShaderSource
	pipeline             pipeline.RenderPipeline
	ownsPipeline         bool
	uniformMap           shader.UniformMap
	outputTarget         gpu.RenderTarget
	preExecute           func(cmd ComputeCommand)
	postExecute          func(output gpu.RenderTarget)
	persists             bool

	uniforms uniformBuffers
}

// ComputeCommand is GPU work expressed as a fragment shader: the Context renders a viewport quad
// with the command's fragment shader into its output target. Without a pipeline one is acquired
// for the execution and released afterwards, unless Persists is set, in which case the command
// keeps it until Release.
type ComputeCommand interface {
	// Label returns the debug label of the command.
	//
	// Returns:
	//   - string: the label
	Label() string

	// FragmentShaderSource returns the fragment stage used when no pipeline is set.
	//
	// Returns:
	//   - shader.ShaderSource: the fragment source
	FragmentShaderSource() shader.ShaderSource

	// Pipeline returns the pipeline, nil until one is set or persisted.
	//
	// Returns:
	//   - pipeline.RenderPipeline: the pipeline
	Pipeline() pipeline.RenderPipeline

	// SetPipeline hands p to the command, which releases it on Release or when replaced.
	//
	// Parameters:
	//   - p: the pipeline
	SetPipeline(p pipeline.RenderPipeline)

	// UniformMap returns the providers of the program's manual uniforms.
	//
	// Returns:
	//   - shader.UniformMap: the uniform map
	UniformMap() shader.UniformMap

	// OutputTarget returns the render target the quad is rendered into.
	//
	// Returns:
	//   - gpu.RenderTarget: the output target
	OutputTarget() gpu.RenderTarget

	// Persists reports whether an acquired pipeline is kept across executions.
	//
	// Returns:
	//   - bool: true to keep the pipeline
	Persists() bool

	// PreExecute runs the pre-execute hook, if any, before the pass is encoded.
	PreExecute()

	// PostExecute runs the post-execute hook, if any, with the output target.
	PostExecute()

	// UniformBufferProvider returns the command's czm_DrawUniforms buffers, creating them on first
	// use.
	//
	// Parameters:
	//   - device: the device that allocates the buffers
	//   - blockSize: the program's draw block size in bytes
	//
	// Returns:
	//   - buffer.UniformBufferProvider: the provider
	//   - error: an error if allocation fails
	UniformBufferProvider(device gpu.Device, blockSize int) (buffer.UniformBufferProvider, error)

	// Execute runs the command through executor.
	//
	// Parameters:
	//   - executor: the Context
	//
	// Returns:
	//   - error: the error returned by executor
	Execute(executor Executor) error

	// Release frees the command's uniform buffers and its persisted pipeline.
	Release()
}

var _ ComputeCommand = &computeCommand{}

// NewComputeCommand creates a ComputeCommand.
//
// Parameters:
//   - output: the render target written by the command
//   - options: variadic list of ComputeCommandBuilderOption
//
// Returns:
//   - ComputeCommand: the new command
func NewComputeCommand(output gpu.RenderTarget, options ...ComputeCommandBuilderOption) ComputeCommand {
	c := &computeCommand{
		label:        "compute command",
		outputTarget: output,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *computeCommand) Label() string                             { return c.label }
func (c *computeCommand) FragmentShaderSource() shader.ShaderSource { return c.fragmentShaderSource }
func (c *computeCommand) Pipeline() pipeline.RenderPipeline         { return c.pipeline }
func (c *computeCommand) UniformMap() shader.UniformMap             { return c.uniformMap }
func (c *computeCommand) OutputTarget() gpu.RenderTarget            { return c.outputTarget }
func (c *computeCommand) Persists() bool                            { return c.persists }

func (c *computeCommand) SetPipeline(p pipeline.RenderPipeline) {
	if c.pipeline == p {
		return
	}
	if c.ownsPipeline && c.pipeline != nil {
		c.pipeline.Release()
	}
	c.pipeline = p
	c.ownsPipeline = p != nil
}

func (c *computeCommand) PreExecute() {
	if c.preExecute != nil {
		c.preExecute(c)
	}
}

func (c *computeCommand) PostExecute() {
	if c.postExecute != nil {
		c.postExecute(c.outputTarget)
	}
}

func (c *computeCommand) UniformBufferProvider(device gpu.Device, blockSize int) (buffer.UniformBufferProvider, error) {
	return c.uniforms.get(device, blockSize, 1, c.label+" uniforms")
}

func (c *computeCommand) Execute(executor Executor) error {
	return executor.Compute(c)
}

func (c *computeCommand) Release() {
	c.uniforms.release()
	c.SetPipeline(nil)
}

// ComputeCommandBuilderOption is a functional option used to configure a ComputeCommand during construction.
type ComputeCommandBuilderOption func(*computeCommand)

// WithComputeLabel sets the debug label.
func WithComputeLabel(label string) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.label = label
	}
}

// WithFragmentShaderSource sets the fragment stage rendered over the viewport quad.
func WithFragmentShaderSource(fs shader.ShaderSource) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.fragmentShaderSource = fs
	}
}

// WithComputePipeline sets a caller-owned pipeline. The command never releases it.
func WithComputePipeline(p pipeline.RenderPipeline) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.pipeline = p
		c.ownsPipeline = false
	}
}

// WithComputeUniformMap sets the manual uniform providers.
func WithComputeUniformMap(m shader.UniformMap) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.uniformMap = m
	}
}

// WithPreExecute sets a hook run before the command is encoded.
func WithPreExecute(fn func(cmd ComputeCommand)) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.preExecute = fn
	}
}

// WithPostExecute sets a hook run after the command is encoded, given the output target.
func WithPostExecute(fn func(output gpu.RenderTarget)) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.postExecute = fn
	}
}

// WithPersists keeps the acquired pipeline across executions.
func WithPersists(persists bool) ComputeCommandBuilderOption {
	return func(c *computeCommand) {
		c.persists = persists
	}
}
