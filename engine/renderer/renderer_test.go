package renderer

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFrustum struct {
	near, far float64
}

func (f testFrustum) Near() float64   { return f.near }
func (f testFrustum) Far() float64    { return f.far }
func (f testFrustum) Top() float64    { return 0.4 * f.near }
func (f testFrustum) Bottom() float64 { return -0.4 * f.near }
func (f testFrustum) Left() float64   { return -0.5 * f.near }
func (f testFrustum) Right() float64  { return 0.5 * f.near }

func (f testFrustum) ProjectionMatrix() common.Matrix4 {
	return common.PerspectiveOffCenter(f.Left(), f.Right(), f.Bottom(), f.Top(), f.near, f.far)
}

func (f testFrustum) InfiniteProjectionMatrix() (common.Matrix4, bool) {
	return common.Matrix4{}, false
}

type testCamera struct {
	frustum testFrustum
}

func (c testCamera) PositionWC() common.Cartesian3  { return common.Cartesian3{X: 2e7} }
func (c testCamera) DirectionWC() common.Cartesian3 { return common.Cartesian3{X: -1} }
func (c testCamera) RightWC() common.Cartesian3     { return common.Cartesian3{Y: 1} }
func (c testCamera) UpWC() common.Cartesian3        { return common.Cartesian3{Z: 1} }
func (c testCamera) Frustum() uniform.Frustum       { return c.frustum }

func (c testCamera) ViewMatrix() common.Matrix4 {
	r, u, d, p := c.RightWC(), c.UpWC(), c.DirectionWC(), c.PositionWC()
	return common.Matrix4{
		r.X, u.X, -d.X, 0,
		r.Y, u.Y, -d.Y, 0,
		r.Z, u.Z, -d.Z, 0,
		-r.Dot(p), -u.Dot(p), d.Dot(p), 1,
	}
}

func (c testCamera) InverseViewMatrix() common.Matrix4 {
	return c.ViewMatrix().InverseTransformation()
}

type testFrameState struct {
	frame int
}

func (f testFrameState) Mode() uniform.SceneMode { return uniform.SceneMode3D }
func (f testFrameState) MapProjection() common.MapProjection {
	return common.NewGeographicProjection(common.WGS84)
}
func (f testFrameState) Time() common.JulianDate { return common.NewJulianDate(common.J2000DayNumber, 0) }
func (f testFrameState) MorphTime() float64      { return 1 }
func (f testFrameState) FrameNumber() int        { return f.frame }
func (f testFrameState) FogDensity() float64     { return 2e-4 }
func (f testFrameState) Camera() uniform.Camera {
	return testCamera{frustum: testFrustum{near: 1, far: 1e4}}
}

const (
	globeVertex = `in vec4 position;
void main()
{
    gl_Position = czm_projection * czm_modelView * position;
}`
	globeFragment = `uniform vec4 u_color;
out vec4 fragColor;
void main()
{
    fragColor = u_color * czm_frameNumber;
}`
)

func newTestContext(t *testing.T, options ...ContextBuilderOption) (*gputest.Device, Context) {
	t.Helper()
	device := gputest.NewDevice()
	c, err := NewContext(device, append([]ContextBuilderOption{WithSurfaceSize(800, 600)}, options...)...)
	require.NoError(t, err)
	return device, c
}

func buffersLabelled(device *gputest.Device, prefix string) []*gputest.Buffer {
	var out []*gputest.Buffer
	for _, b := range device.Buffers {
		if strings.HasPrefix(b.Label, prefix) {
			out = append(out, b)
		}
	}
	return out
}

func floatAt(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		err, ok = r.(error)
		require.True(t, ok, "panic value is not an error: %v", r)
	}()
	f()
	return nil
}

func globeCommand(c Context, color gpu.Color) command.DrawCommand {
	p := c.PipelineCache().GetRenderPipeline(
		shader.NewShaderSource(shader.WithSources(globeVertex)),
		shader.NewShaderSource(shader.WithSources(globeFragment)),
		nil,
		c.RenderState(renderstate.WithDepthTest(gpu.CompareFunctionLess)),
	)
	return command.NewDrawCommand(
		command.WithLabel("globe"),
		command.WithPipeline(p),
		command.WithRange(0, 3),
		command.WithUniformMap(shader.UniformMap{"u_color": func() any { return color }}),
	)
}

func TestContextFrameLifecycle(t *testing.T) {
	device, c := newTestContext(t)

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{frame: 7}))
	assert.Equal(t, 0, c.FrustumIndex())

	frames := buffersLabelled(device, "frame uniforms")
	require.Len(t, frames, buffer.BufferSyncStateCount)
	assert.Equal(t, 1, frames[0].Writes)
	assert.Equal(t, float32(7), floatAt(frames[0].Data, 140), "czm_frameNumber")

	frustums := buffersLabelled(device, "frustum uniforms")
	require.Len(t, frustums, buffer.BufferSyncStateCount)
	assert.Equal(t, 1, frustums[0].Writes)
	assert.Equal(t, float32(1), floatAt(frustums[0].Data, 680), "current frustum near")

	c.EndFrame()
	assert.Equal(t, buffer.BufferSyncStateOne, c.SyncState())
	assert.Equal(t, -1, c.FrustumIndex())
	assert.Equal(t, 1, device.PendingFrames())

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{frame: 8}))
	assert.Equal(t, 1, frames[1].Writes, "the next frame uses the next ring buffer")
	assert.Equal(t, 1, frustums[1].Writes)
	c.EndFrame()
}

func TestBeginFrameWaitsForInflightFrames(t *testing.T) {
	device, c := newTestContext(t, WithInflightFrames(2))

	for i := range 2 {
		require.NoError(t, c.BeginFrame(context.Background(), testFrameState{frame: i}))
		c.EndFrame()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.BeginFrame(ctx, testFrameState{frame: 2})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	device.CompleteFrames()
	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{frame: 2}))
	c.EndFrame()
}

func TestContextInflightFramesOverrideDevice(t *testing.T) {
	device := gputest.NewDevice()
	device.WaitOnEndFrame = true
	device.SetInflightFrames(buffer.BufferSyncStateCount)
	c, err := NewContext(device, WithSurfaceSize(800, 600), WithInflightFrames(1))
	require.NoError(t, err)
	defer c.Release()
	assert.Equal(t, 1, device.InflightFrames())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := range 4 {
		require.NoError(t, c.BeginFrame(ctx, testFrameState{frame: i}), "frame %d", i)
		c.EndFrame()
		assert.Zero(t, device.PendingFrames())
	}
}

func TestDrawWritesUniformsBeforeDrawing(t *testing.T) {
	device, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{R: 0.25, G: 0.5, B: 0.75, A: 1})
	defer cmd.Release()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	device.Reset()
	require.NoError(t, cmd.Execute(c, nil))

	methods := device.Methods()
	require.Equal(t, "BeginRenderPass", methods[0])
	pipelineAt := slices.Index(methods, "SetPipeline")
	drawAt := slices.Index(methods, "Draw")
	require.Positive(t, pipelineAt)
	require.Greater(t, drawAt, pipelineAt)
	assert.Equal(t, []string{"SetFrontFacing", "SetCullMode", "SetDepthStencilState", "SetViewport", "SetTriangleFillMode", "SetDepthBias"},
		methods[1:pipelineAt], "render state is applied in full before the pipeline is bound")

	bindings := map[int]gpu.Buffer{}
	for _, call := range device.CallsTo("SetUniformBuffer") {
		bindings[call.Args[0].(int)] = call.Args[1].(gpu.Buffer)
	}
	assert.Len(t, bindings, 3)
	assert.Contains(t, bindings[uniform.FrameUniformsBinding].(*gputest.Buffer).Label, "frame uniforms")
	assert.Contains(t, bindings[uniform.FrustumUniformsBinding].(*gputest.Buffer).Label, "frustum uniforms")

	draw := bindings[uniform.DrawUniformsBinding].(*gputest.Buffer)
	assert.Contains(t, draw.Label, "globe uniforms")
	assert.Equal(t, 1, draw.Writes)
	assert.Equal(t, float32(0.5), floatAt(draw.Data, 64+4), "u_color follows czm_modelView")

	viewport := device.CallsTo("SetViewport")[0].Args[0].(gpu.Viewport)
	assert.Equal(t, gpu.Viewport{Width: 800, Height: 600}, viewport)
	assert.Equal(t, viewport, c.UniformState().Viewport())

	drawCall := device.CallsTo("Draw")[0]
	assert.Equal(t, []any{gpu.PrimitiveTypeTriangles, 0, 3, 1}, drawCall.Args)
	c.EndFrame()
}

func TestDrawReusesOpenPass(t *testing.T) {
	device, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{A: 1})
	defer cmd.Release()
	second := globeCommand(c, gpu.Color{R: 1, A: 1})
	defer second.Release()
	offscreen := globeCommand(c, gpu.Color{G: 1, A: 1})
	defer offscreen.Release()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	command.NewClearCommand(command.WithClearColor(gpu.Color{A: 1}), command.WithClearDepth(1)).Execute(c, nil)
	require.NoError(t, cmd.Execute(c, nil))
	require.NoError(t, second.Execute(c, nil))

	passes := device.CallsTo("BeginRenderPass")
	require.Len(t, passes, 1)
	desc := passes[0].Args[0].(gpu.RenderPassDescriptor)
	require.NotNil(t, desc.ClearColor)
	require.NotNil(t, desc.ClearDepth)
	assert.Nil(t, desc.ClearStencil)

	target, _ := device.CreateRenderTarget(64, 64)
	require.NoError(t, offscreen.Execute(c, &gpu.PassState{Target: target}))
	passes = device.CallsTo("BeginRenderPass")
	require.Len(t, passes, 2, "a different target starts a new pass")
	assert.Equal(t, gpu.Viewport{Width: 64, Height: 64}, c.UniformState().Viewport())
	c.EndFrame()
	assert.Len(t, device.CallsTo("End"), 2)
}

func TestDrawPreconditions(t *testing.T) {
	_, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{})

	err := recoverError(t, func() { _ = cmd.Execute(c, nil) })
	var pe *common.PreconditionError
	assert.True(t, errors.As(err, &pe), "draw outside a frame")

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	err = recoverError(t, func() { _ = command.NewDrawCommand(command.WithRange(0, 3)).Execute(c, nil) })
	assert.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "has no pipeline")

	cmd.SetUniformMap(nil)
	err = cmd.Execute(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u_color")
	c.EndFrame()
}

func TestDrawUniformSlotOncePerFrustum(t *testing.T) {
	_, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{A: 1})
	defer cmd.Release()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	require.NoError(t, cmd.Execute(c, nil))
	err := recoverError(t, func() { _ = cmd.Execute(c, nil) })
	var pe *common.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "globe already wrote its draw uniforms for frustum 0")

	c.UpdateFrustum(testFrustum{near: 1e4, far: 1e7})
	require.NoError(t, cmd.Execute(c, nil), "the next frustum has its own block")
	c.EndFrame()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	require.NoError(t, cmd.Execute(c, nil), "slots are free again in the next frame")
	c.EndFrame()
}

func TestUpdateFrustumUsesNextSlot(t *testing.T) {
	device, c := newTestContext(t, WithMaxFrustums(2))
	cmd := globeCommand(c, gpu.Color{A: 1})
	defer cmd.Release()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	require.NoError(t, cmd.Execute(c, nil))
	c.UpdateFrustum(testFrustum{near: 1e4, far: 1e7})
	assert.Equal(t, 1, c.FrustumIndex())
	require.NoError(t, cmd.Execute(c, nil))

	frustums := buffersLabelled(device, "frustum uniforms")
	stride := frustums[0].Size() / 2
	assert.Equal(t, float32(1e4), floatAt(frustums[0].Data, stride+680))

	var offsets []int
	for _, call := range device.CallsTo("SetUniformBuffer") {
		if call.Args[0].(int) == uniform.DrawUniformsBinding {
			offsets = append(offsets, call.Args[2].(int))
		}
	}
	assert.Equal(t, []int{0, buffer.DefaultUniformOffsetAlignment}, offsets, "one draw block slot per frustum")

	err := recoverError(t, func() { c.UpdateFrustum(testFrustum{near: 1e7, far: 1e9}) })
	var re *common.ResourceExhaustedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.Limit)
	assert.Equal(t, 1, c.FrustumIndex())
	c.EndFrame()
}

func TestComputeRendersViewportQuad(t *testing.T) {
	device, c := newTestContext(t)
	target, _ := device.CreateRenderTarget(256, 128)
	fs := shader.NewShaderSource(shader.WithSources(`in vec2 v_textureCoordinates;
uniform float u_scale;
out vec4 fragColor;
void main() { fragColor = vec4(v_textureCoordinates * u_scale, 0.0, 1.0); }`))

	var hooks []string
	cmd := command.NewComputeCommand(target,
		command.WithFragmentShaderSource(fs),
		command.WithComputeUniformMap(shader.UniformMap{"u_scale": func() any { return float32(2) }}),
		command.WithPreExecute(func(command.ComputeCommand) { hooks = append(hooks, "pre") }),
		command.WithPostExecute(func(gpu.RenderTarget) { hooks = append(hooks, "post") }),
	)
	defer cmd.Release()

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	device.Reset()
	require.NoError(t, cmd.Execute(c))

	pass := device.CallsTo("BeginRenderPass")[0].Args[0].(gpu.RenderPassDescriptor)
	assert.Same(t, target, pass.Target)
	require.NotNil(t, pass.ClearColor)
	assert.Equal(t, gpu.Color{}, *pass.ClearColor)
	assert.Equal(t, gpu.Viewport{Width: 256, Height: 128}, device.CallsTo("SetViewport")[0].Args[0])
	assert.Equal(t, []any{gpu.PrimitiveTypeTriangleStrip, 0, 4, 1}, device.CallsTo("Draw")[0].Args)
	assert.Len(t, device.CallsTo("End"), 1, "the compute pass is closed")
	assert.Equal(t, []string{"pre", "post"}, hooks)

	assert.Nil(t, cmd.Pipeline())
	assert.Equal(t, 0, c.PipelineCache().NumberOfPipelines())
	c.EndFrame()
	assert.Equal(t, 0, c.ShaderCache().NumberOfReleasedShaders(), "the transient program is destroyed at frame end")
	assert.Equal(t, 0, device.LivePrograms())
}

func TestComputePersistsPipeline(t *testing.T) {
	device, c := newTestContext(t)
	target, _ := device.CreateRenderTarget(16, 16)
	fs := shader.NewShaderSource(shader.WithSources("out vec4 fragColor;\nvoid main() { fragColor = vec4(1.0); }"))
	cmd := command.NewComputeCommand(target, command.WithFragmentShaderSource(fs), command.WithPersists(true))

	for range 2 {
		require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
		require.NoError(t, cmd.Execute(c))
		c.EndFrame()
		device.CompleteFrames()
	}
	require.NotNil(t, cmd.Pipeline())
	assert.Len(t, device.CallsTo("CreateProgram"), 1)
	assert.Equal(t, 1, cmd.Pipeline().Count())

	cmd.Release()
	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	c.EndFrame()
	assert.Equal(t, 0, device.LivePrograms())
}

func TestEndFrameDestroysReleasedPipelines(t *testing.T) {
	device, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{})

	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	cmd.Pipeline().Release()
	assert.Equal(t, 1, device.LivePrograms(), "destruction waits for the end of the frame")
	c.EndFrame()
	assert.True(t, cmd.Pipeline().IsDestroyed())
	assert.Equal(t, 0, device.LivePrograms())
}

func TestContextRelease(t *testing.T) {
	device, c := newTestContext(t)
	cmd := globeCommand(c, gpu.Color{})
	require.NoError(t, c.BeginFrame(context.Background(), testFrameState{}))
	require.NoError(t, cmd.Execute(c, nil))

	c.Release()
	assert.True(t, device.Released)
	assert.Equal(t, 0, device.LivePrograms())
	for _, b := range buffersLabelled(device, "fr") {
		assert.True(t, b.Released, b.Label)
	}
	for _, s := range device.DepthStencilStates {
		assert.True(t, s.Released)
	}
}
