package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stages(color string) (shader.ShaderSource, shader.ShaderSource) {
	return shader.NewShaderSource(shader.WithSources("in vec4 position;\nvoid main() { gl_Position = czm_modelViewProjection * position; }")),
		shader.NewShaderSource(shader.WithSources(fmt.Sprintf("out vec4 c;\nvoid main() { c = %s; }", color)))
}

func newCaches(t *testing.T, options ...PipelineCacheBuilderOption) (*gputest.Device, shader.ShaderCache, PipelineCache) {
	t.Helper()
	device := gputest.NewDevice()
	shaders := shader.NewShaderCache(device)
	return device, shaders, NewPipelineCache(shaders, options...)
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

func TestPipelineSharesProgramAcrossBlendStates(t *testing.T) {
	device, shaders, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")
	opaque := renderstate.NewRenderState(device)
	blended := renderstate.NewRenderState(device, renderstate.WithBlending(renderstate.BlendingAlpha))

	a := cache.GetRenderPipeline(vs, fs, nil, opaque)
	b := cache.GetRenderPipeline(vs, fs, nil, opaque)
	c := cache.GetRenderPipeline(vs, fs, nil, blended)

	assert.Same(t, a, b)
	assert.Equal(t, 2, a.Count())
	assert.NotSame(t, a, c)
	assert.Same(t, a.Program(), c.Program())
	assert.Equal(t, 2, a.Program().Count(), "one program reference per pipeline")
	assert.Equal(t, 2, cache.NumberOfPipelines())
	assert.Equal(t, 1, shaders.NumberOfShaders())
	assert.Len(t, device.CallsTo("CreateProgram"), 1)
	assert.True(t, c.Blend().Enabled)
}

func TestPipelineNilRenderStateIsOpaque(t *testing.T) {
	_, _, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")

	p := cache.GetRenderPipeline(vs, fs, nil, nil)
	assert.False(t, p.Blend().Enabled)
	assert.Equal(t, gpu.ColorMaskAll, p.Blend().ColorMask)
}

func TestPipelineBind(t *testing.T) {
	device, _, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")
	p := cache.GetRenderPipeline(vs, fs, nil, renderstate.NewRenderState(device))

	encoder := device.BeginRenderPass(gpu.RenderPassDescriptor{})
	device.Reset()
	p.Bind(encoder)

	calls := device.CallsTo("SetPipeline")
	require.Len(t, calls, 1)
	assert.Same(t, p.Program().Program(), calls[0].Args[0])
	assert.Equal(t, p.Blend(), calls[0].Args[1])
}

func TestPipelineReleaseCascadesToProgram(t *testing.T) {
	device, shaders, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")

	p := cache.GetRenderPipeline(vs, fs, nil, nil)
	program := p.Program()
	p.Release()
	assert.Equal(t, 0, cache.NumberOfPipelines())
	assert.Equal(t, 1, cache.NumberOfReleasedPipelines())
	assert.False(t, p.IsDestroyed())

	cache.DestroyReleasedPipelines()
	assert.True(t, p.IsDestroyed())
	assert.Equal(t, 0, program.Count())
	assert.Equal(t, 1, shaders.NumberOfReleasedShaders())

	shaders.DestroyReleasedShaderPrograms()
	assert.True(t, program.IsDestroyed())
	assert.Equal(t, 0, device.LivePrograms())
}

func TestPipelineRevivedBeforeDestroy(t *testing.T) {
	_, _, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")

	p := cache.GetRenderPipeline(vs, fs, nil, nil)
	cache.ReleaseRenderPipeline(p)
	again := cache.GetRenderPipeline(vs, fs, nil, nil)

	assert.Same(t, p, again)
	cache.DestroyReleasedPipelines()
	assert.False(t, again.IsDestroyed())
	assert.Equal(t, 1, again.Program().Count())
}

func TestPipelineReplace(t *testing.T) {
	_, shaders, cache := newCaches(t)
	vs, red := stages("vec4(1.0, 0.0, 0.0, 1.0)")
	_, blue := stages("vec4(0.0, 0.0, 1.0, 1.0)")

	old := cache.GetRenderPipeline(vs, red, nil, nil)
	replaced := cache.ReplaceRenderPipeline(old, vs, blue, nil, nil)

	assert.NotSame(t, old, replaced)
	assert.Equal(t, 0, old.Count())
	assert.Equal(t, 1, cache.NumberOfPipelines())
	cache.DestroyReleasedPipelines()
	shaders.DestroyReleasedShaderPrograms()
	assert.Equal(t, 1, shaders.NumberOfShaders())
}

func TestPipelineMaxPipelines(t *testing.T) {
	_, shaders, cache := newCaches(t, WithMaxPipelines(1))
	vs, a := stages("vec4(1.0)")
	_, b := stages("vec4(0.0)")

	cache.GetRenderPipeline(vs, a, nil, nil)
	err := recoverError(t, func() { cache.GetRenderPipeline(vs, b, nil, nil) })

	var re *common.ResourceExhaustedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Limit)
	assert.Equal(t, 1, shaders.NumberOfShaders(), "the rejected program reference is returned")
}

func TestPipelineCacheRelease(t *testing.T) {
	device, shaders, cache := newCaches(t)
	vs, fs := stages("vec4(1.0)")

	p := cache.GetRenderPipeline(vs, fs, nil, nil)
	cache.Release()
	assert.True(t, p.IsDestroyed())
	assert.Equal(t, 0, cache.NumberOfPipelines())

	shaders.DestroyReleasedShaderPrograms()
	assert.Equal(t, 0, device.LivePrograms())
	p.Release()
}
