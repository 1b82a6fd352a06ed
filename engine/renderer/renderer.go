package renderer

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

// graphicsContext is the implementation of the Context interface.
type graphicsContext struct {
	config Config
	device gpu.Device

	shaderCache   shader.ShaderCache
	pipelineCache pipeline.PipelineCache
	renderStates  renderstate.Cache
	uniformState  *uniform.State

	// frames gates the number of frames in flight and holds each frame's czm_FrameUniforms block.
	frames buffer.BufferProvider
	// frustums holds one czm_FrustumUniforms block per frustum per frame.
	frustums buffer.UniformBufferProvider

	syncState    buffer.BufferSyncState
	frameBuffer  gpu.Buffer
	frustumIndex int
	inFrame      bool
	// drawSlots records the czm_DrawUniforms blocks written this frame.
	drawSlots map[drawSlot]bool

	encoder    gpu.RenderEncoder
	passTarget gpu.RenderTarget

	defaultRenderState renderstate.RenderState
	viewportQuad       shader.ShaderSource
	width, height      int
}

// drawSlot is one command's czm_DrawUniforms block for a frustum. Compute commands use
// frustum -1.
type drawSlot struct {
	cmd     any
	frustum int
}

// Context owns a GPU device and everything derived from it: the shader, pipeline and render-state
// caches, the automatic uniform state and the per-frame uniform buffers. It executes commands
// between BeginFrame and EndFrame. A Context belongs to the render goroutine; none of its
// methods are safe for concurrent use.
//
// A frame runs as follows: BeginFrame waits for a free in-flight slot, updates the uniform state
// from the frame state and writes the frame and first frustum blocks; UpdateFrustum switches to
// the next frustum of a multi-frustum frame; Draw, Clear and Compute encode commands; EndFrame
// submits the frame, advances the sync state and destroys pipelines and programs released during
// the frame.
type Context interface {
	command.Executor

	// Device returns the GPU device.
	//
	// Returns:
	//   - gpu.Device: the device
	Device() gpu.Device

	// ShaderCache returns the program cache.
	//
	// Returns:
	//   - shader.ShaderCache: the cache
	ShaderCache() shader.ShaderCache

	// PipelineCache returns the pipeline cache.
	//
	// Returns:
	//   - pipeline.PipelineCache: the cache
	PipelineCache() pipeline.PipelineCache

	// UniformState returns the automatic uniform state.
	//
	// Returns:
	//   - *uniform.State: the uniform state
	UniformState() *uniform.State

	// SyncState returns the uniform buffer slot written this frame.
	//
	// Returns:
	//   - buffer.BufferSyncState: the sync slot
	SyncState() buffer.BufferSyncState

	// FrustumIndex returns the frustum slot of the current frame, -1 outside a frame.
	//
	// Returns:
	//   - int: the frustum slot
	FrustumIndex() int

	// RenderState returns the cached RenderState for the given options.
	//
	// Parameters:
	//   - options: variadic list of RenderStateBuilderOption
	//
	// Returns:
	//   - renderstate.RenderState: the shared render state
	RenderState(options ...renderstate.RenderStateBuilderOption) renderstate.RenderState

	// DefaultPassState returns the pass state of the window surface.
	//
	// Returns:
	//   - gpu.PassState: a pass state with a full-surface viewport
	DefaultPassState() gpu.PassState

	// BeginFrame starts a frame. It blocks while the configured number of frames is in flight.
	//
	// Parameters:
	//   - ctx: cancels the wait for an in-flight slot
	//   - frameState: the scene inputs of the frame
	//
	// Returns:
	//   - error: the context error, or an error if the surface could not be acquired
	BeginFrame(ctx context.Context, frameState uniform.FrameState) error

	// UpdateFrustum moves to the next frustum slot and writes its block. Exceeding the
	// configured number of frustums panics with a *common.ResourceExhaustedError.
	//
	// Parameters:
	//   - frustum: the frustum rendered next
	UpdateFrustum(frustum uniform.Frustum)

	// EndFrame ends the open pass, submits the frame and destroys released pipelines and
	// programs.
	EndFrame()

	// Resize reconfigures the surface.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release destroys the caches, the uniform buffers and the device.
	Release()
}

var _ Context = &graphicsContext{}

// NewContext creates a Context that takes ownership of device.
//
// Parameters:
//   - device: the GPU device
//   - options: variadic list of ContextBuilderOption
//
// Returns:
//   - Context: the new context
//   - error: an error if a uniform buffer could not be allocated
func NewContext(device gpu.Device, options ...ContextBuilderOption) (Context, error) {
	c := &graphicsContext{
		config:       DefaultConfig(),
		device:       device,
		frustumIndex: -1,
		drawSlots:    make(map[drawSlot]bool),
	}
	for _, opt := range options {
		opt(c)
	}
	cfg := c.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.width, c.height = cfg.Width, cfg.Height

	c.shaderCache = shader.NewShaderCache(device,
		shader.WithMaxPrograms(cfg.MaxPrograms),
		shader.WithGlobalDefines(cfg.GlobalDefines...),
	)
	c.pipelineCache = pipeline.NewPipelineCache(c.shaderCache, pipeline.WithMaxPipelines(cfg.MaxPipelines))
	c.renderStates = renderstate.NewCache(device)
	c.uniformState = uniform.NewState()
	c.defaultRenderState = c.renderStates.FromCache()
	c.viewportQuad = command.ViewportQuadVertexShader()

	frames, err := buffer.NewBufferProvider(device, uniform.FrameUniformsSize,
		buffer.WithInflightBuffersCount(cfg.InflightFrames),
		buffer.WithUsage(gpu.BufferUsageUniform),
		buffer.WithLabel("frame uniforms"),
	)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	frustums, err := buffer.NewUniformBufferProvider(device, uniform.FrustumUniformsSize,
		buffer.WithSlotCount(cfg.MaxFrustums),
		buffer.WithOffsetAlignment(cfg.UniformOffsetAlignment),
		buffer.WithUniformLabel("frustum uniforms"),
	)
	if err != nil {
		frames.Close()
		return nil, fmt.Errorf("renderer: %w", err)
	}
	c.frames = frames
	c.frustums = frustums
	device.SetInflightFrames(cfg.InflightFrames)

	common.Logger().Info("renderer context created",
		"device", device.Name(),
		"inflightFrames", cfg.InflightFrames,
		"maxFrustums", cfg.MaxFrustums,
	)
	return c, nil
}

func (c *graphicsContext) Device() gpu.Device                    { return c.device }
func (c *graphicsContext) ShaderCache() shader.ShaderCache       { return c.shaderCache }
func (c *graphicsContext) PipelineCache() pipeline.PipelineCache { return c.pipelineCache }
func (c *graphicsContext) UniformState() *uniform.State          { return c.uniformState }
func (c *graphicsContext) SyncState() buffer.BufferSyncState     { return c.syncState }
func (c *graphicsContext) FrustumIndex() int                     { return c.frustumIndex }

func (c *graphicsContext) RenderState(options ...renderstate.RenderStateBuilderOption) renderstate.RenderState {
	return c.renderStates.FromCache(options...)
}

func (c *graphicsContext) DefaultPassState() gpu.PassState {
	return gpu.PassState{Viewport: gpu.Viewport{Width: c.width, Height: c.height}}
}

func (c *graphicsContext) BeginFrame(ctx context.Context, frameState uniform.FrameState) error {
	common.Assert(!c.inFrame, "renderer: BeginFrame called while a frame is open")

	buf, err := c.frames.NextBuffer(ctx)
	if err != nil {
		return fmt.Errorf("renderer: waiting for an in-flight frame: %w", err)
	}
	if err := c.device.BeginFrame(); err != nil {
		c.frames.Release()
		return fmt.Errorf("renderer: beginning frame: %w", err)
	}
	c.frameBuffer = buf
	c.inFrame = true

	c.uniformState.Update(frameState)
	c.uniformState.SetAutomaticUniforms(buf)
	c.frustumIndex = -1
	c.UpdateFrustum(frameState.Camera().Frustum())
	return nil
}

func (c *graphicsContext) UpdateFrustum(frustum uniform.Frustum) {
	common.Assert(c.inFrame, "renderer: UpdateFrustum called outside a frame")
	offset := c.frustums.Offset(c.frustumIndex + 1)
	c.frustumIndex++
	c.uniformState.UpdateFrustum(frustum)
	c.uniformState.SetFrustumUniforms(c.frustums.CurrentBuffer(c.syncState), offset)
}

func (c *graphicsContext) Draw(cmd command.DrawCommand, passState *gpu.PassState) error {
	common.Assert(c.inFrame, "renderer: Draw called outside a frame")
	p := cmd.Pipeline()
	common.Assert(p != nil && !p.IsDestroyed(), "renderer: draw command %s has no pipeline", cmd.Label())
	count, indexed := command.DrawCount(cmd)

	ps := c.resolvePassState(passState)
	rs := cmd.RenderState()
	if rs == nil {
		rs = c.defaultRenderState
	}
	viewport := ps.Viewport
	if v := rs.Viewport(); v != nil {
		viewport = *v
	}

	encoder := c.beginPass(ps.Target, nil)
	c.uniformState.SetViewport(viewport)
	c.uniformState.SetModel(cmd.ModelMatrix())
	c.uniformState.UpdatePass(cmd.Pass())

	rs.Apply(encoder, ps)
	p.Bind(encoder)

	program := p.Program()
	err := c.bindUniforms(encoder, program, cmd.Label(), cmd.UniformMap(), cmd.UniformBlocks(), func(size int) (buffer.UniformBufferProvider, int, error) {
		c.claimDrawSlot(cmd, cmd.Label(), c.frustumIndex)
		provider, err := cmd.UniformBufferProvider(c.device, size, c.config.MaxFrustums)
		return provider, c.frustumIndex, err
	})
	if err != nil {
		return err
	}

	encoder.SetVertexArray(cmd.VertexArray())
	if indexed {
		encoder.DrawIndexed(cmd.PrimitiveType(), cmd.Offset(), count, cmd.InstanceCount())
	} else {
		encoder.Draw(cmd.PrimitiveType(), cmd.Offset(), count, cmd.InstanceCount())
	}
	return nil
}

func (c *graphicsContext) Clear(cmd command.ClearCommand, passState *gpu.PassState) {
	common.Assert(c.inFrame, "renderer: Clear called outside a frame")
	ps := c.resolvePassState(passState)
	target := cmd.Target()
	if target == nil {
		target = ps.Target
	}
	c.beginPass(target, &gpu.RenderPassDescriptor{
		Target:       target,
		ClearColor:   cmd.Color(),
		ClearDepth:   cmd.Depth(),
		ClearStencil: cmd.Stencil(),
	})
}

func (c *graphicsContext) Compute(cmd command.ComputeCommand) error {
	common.Assert(c.inFrame, "renderer: Compute called outside a frame")
	target := cmd.OutputTarget()
	common.Assert(target != nil, "renderer: compute command %s has no output target", cmd.Label())

	cmd.PreExecute()

	p := cmd.Pipeline()
	acquired := p == nil
	if acquired {
		fs := cmd.FragmentShaderSource()
		common.Assert(fs != nil, "renderer: compute command %s has neither a pipeline nor a fragment shader", cmd.Label())
		p = c.pipelineCache.GetRenderPipeline(c.viewportQuad, fs, nil, nil)
	}

	viewport := gpu.Viewport{Width: target.Width(), Height: target.Height()}
	rs := c.renderStates.FromCache(renderstate.WithViewport(viewport))
	ps := gpu.PassState{Target: target, Viewport: viewport}

	encoder := c.beginPass(target, &gpu.RenderPassDescriptor{Target: target, ClearColor: &gpu.Color{}})
	c.uniformState.SetViewport(viewport)
	c.uniformState.SetModel(common.Identity4())
	rs.Apply(encoder, ps)
	p.Bind(encoder)

	err := c.bindUniforms(encoder, p.Program(), cmd.Label(), cmd.UniformMap(), nil, func(size int) (buffer.UniformBufferProvider, int, error) {
		c.claimDrawSlot(cmd, cmd.Label(), -1)
		provider, err := cmd.UniformBufferProvider(c.device, size)
		return provider, 0, err
	})
	if err == nil {
		encoder.SetVertexArray(nil)
		encoder.Draw(gpu.PrimitiveTypeTriangleStrip, 0, command.ViewportQuadVertexCount, 1)
	}
	c.endPass()

	if acquired {
		if cmd.Persists() && err == nil {
			cmd.SetPipeline(p)
		} else {
			p.Release()
		}
	}
	if err != nil {
		return err
	}
	cmd.PostExecute()
	return nil
}

func (c *graphicsContext) EndFrame() {
	common.Assert(c.inFrame, "renderer: EndFrame called outside a frame")
	c.endPass()
	c.device.EndFrame(c.frames.Release)

	c.pipelineCache.DestroyReleasedPipelines()
	c.shaderCache.DestroyReleasedShaderPrograms()

	c.syncState = c.syncState.Advance()
	c.frameBuffer = nil
	c.frustumIndex = -1
	c.inFrame = false
	clear(c.drawSlots)
}

// claimDrawSlot marks cmd's uniform block for frustum as written. A block written twice in one
// frame would hand both draws the second write.
func (c *graphicsContext) claimDrawSlot(cmd any, label string, frustum int) {
	slot := drawSlot{cmd: cmd, frustum: frustum}
	common.Assert(!c.drawSlots[slot], "renderer: %s already wrote its draw uniforms for frustum %d this frame", label, frustum)
	c.drawSlots[slot] = true
}

func (c *graphicsContext) Resize(width, height int) {
	c.width, c.height = width, height
	c.device.Resize(width, height)
}

func (c *graphicsContext) Release() {
	c.endPass()
	c.pipelineCache.Release()
	c.shaderCache.Release()
	c.renderStates.Release()
	c.frames.Close()
	c.frustums.Release()
	c.device.Release()
	c.inFrame = false
}

// resolvePassState copies passState, filling the default surface pass and a target-sized viewport.
func (c *graphicsContext) resolvePassState(passState *gpu.PassState) gpu.PassState {
	if passState == nil {
		return c.DefaultPassState()
	}
	ps := *passState
	if ps.Viewport.Width == 0 && ps.Viewport.Height == 0 {
		if ps.Target != nil {
			ps.Viewport = gpu.Viewport{Width: ps.Target.Width(), Height: ps.Target.Height()}
		} else {
			ps.Viewport = c.DefaultPassState().Viewport
		}
	}
	return ps
}

// beginPass returns the open encoder when it targets target and no clear is requested;
// otherwise it ends the open pass and begins a new one.
func (c *graphicsContext) beginPass(target gpu.RenderTarget, desc *gpu.RenderPassDescriptor) gpu.RenderEncoder {
	if desc == nil && c.encoder != nil && c.passTarget == target {
		return c.encoder
	}
	c.endPass()
	if desc == nil {
		desc = &gpu.RenderPassDescriptor{Target: target}
	}
	c.encoder = c.device.BeginRenderPass(*desc)
	c.passTarget = target
	return c.encoder
}

func (c *graphicsContext) endPass() {
	if c.encoder != nil {
		c.encoder.End()
		c.encoder = nil
		c.passTarget = nil
	}
}

// bindUniforms binds every uniform block the program declares. The draw block is written into
// the slot returned by drawBuffers before it is bound, so the write precedes the draw that
// reads it.
func (c *graphicsContext) bindUniforms(
	encoder gpu.RenderEncoder,
	program shader.ShaderProgram,
	label string,
	uniformMap shader.UniformMap,
	custom map[string]gpu.Buffer,
	drawBuffers func(size int) (buffer.UniformBufferProvider, int, error),
) error {
	blocks := program.UniformBlocks()
	for _, name := range slices.Sorted(maps.Keys(blocks)) {
		binding := blocks[name]
		switch name {
		case uniform.FrameUniformsBlock:
			encoder.SetUniformBuffer(binding, c.frameBuffer, 0, uniform.FrameUniformsSize)
		case uniform.FrustumUniformsBlock:
			offset := c.frustums.Offset(max(c.frustumIndex, 0))
			encoder.SetUniformBuffer(binding, c.frustums.CurrentBuffer(c.syncState), offset, uniform.FrustumUniformsSize)
		case uniform.DrawUniformsBlock:
			size := program.DrawUniformsSize()
			provider, slot, err := drawBuffers(size)
			if err != nil {
				return fmt.Errorf("renderer: allocating uniforms of %s: %w", label, err)
			}
			buf := provider.CurrentBuffer(c.syncState)
			offset := provider.Offset(max(slot, 0))
			if err := program.SetUniforms(buf, offset, uniformMap, c.uniformState); err != nil {
				return fmt.Errorf("renderer: setting uniforms of %s: %w", label, err)
			}
			encoder.SetUniformBuffer(binding, buf, offset, size)
		default:
			buf := custom[name]
			common.Assert(buf != nil, "renderer: %s has no buffer for uniform block %s", label, name)
			encoder.SetUniformBuffer(binding, buf, 0, buf.Size())
		}
	}
	return nil
}
