package renderstate

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsPureFunctionOfFields(t *testing.T) {
	device := gputest.NewDevice()
	options := []RenderStateBuilderOption{
		WithCull(gpu.CullFaceFront),
		WithDepthTest(gpu.CompareFunctionLessEqual),
		WithDepthRange(0.25, 0.75),
		WithBlending(BlendingAlpha),
		WithViewport(gpu.Viewport{X: 1, Y: 2, Width: 3, Height: 4}),
		WithWireframe(true),
	}

	a := NewRenderState(device, options...)
	b := NewRenderState(device, options...)
	assert.Equal(t, a.Hash(), b.Hash())

	c := NewRenderState(device, append(options, WithDepthMask(false))...)
	assert.NotEqual(t, a.Hash(), c.Hash())

	assert.NotEqual(t, NewRenderState(device).Hash(), a.Hash())
}

func TestDefaults(t *testing.T) {
	rs := NewRenderState(gputest.NewDevice())

	assert.Equal(t, gpu.WindingOrderCounterClockwise, rs.FrontFace())
	assert.False(t, rs.Cull().Enabled)
	assert.False(t, rs.DepthTest().Enabled)
	assert.True(t, rs.DepthMask())
	assert.Equal(t, gpu.ColorMaskAll, rs.ColorMask())
	assert.Equal(t, gpu.DepthRange{Near: 0, Far: 1}, rs.DepthRange())
	assert.Nil(t, rs.Viewport())
	assert.False(t, rs.Wireframe())

	desc := rs.DepthStencilDescriptor()
	assert.Equal(t, gpu.CompareFunctionAlways, desc.DepthCompare)
	assert.False(t, desc.StencilEnabled)
}

func TestValidationPanicsWithPreconditionError(t *testing.T) {
	device := gputest.NewDevice()
	cases := map[string][]RenderStateBuilderOption{
		"negative width":  {WithViewport(gpu.Viewport{Width: -1, Height: 1})},
		"negative height": {WithViewport(gpu.Viewport{Width: 1, Height: -1})},
		"near after far":  {WithDepthRange(0.8, 0.2)},
		"near below zero": {WithDepthRange(-0.1, 0.5)},
		"far above one":   {WithDepthRange(0.1, 1.5)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				var pe *common.PreconditionError
				assert.True(t, errors.As(err, &pe))
			}()
			NewRenderState(device, opts...)
		})
	}
}

func TestApplySetsDepthCompareAndViewportInOneCall(t *testing.T) {
	device := gputest.NewDevice()
	rs := NewRenderState(device,
		WithDepthTest(gpu.CompareFunctionLess),
		WithViewport(gpu.Viewport{X: 0, Y: 0, Width: 800, Height: 600}),
	)
	device.Reset()

	rs.Apply(device.BeginRenderPass(gpu.RenderPassDescriptor{}), gpu.PassState{Viewport: gpu.Viewport{Width: 10, Height: 10}})

	assert.Equal(t, []string{
		"BeginRenderPass",
		"SetFrontFacing",
		"SetCullMode",
		"SetDepthStencilState",
		"SetViewport",
		"SetTriangleFillMode",
		"SetDepthBias",
	}, device.Methods())

	dss := device.CallsTo("SetDepthStencilState")
	require.Len(t, dss, 1)
	state := dss[0].Args[0].(gpu.DepthStencilState)
	assert.Equal(t, gpu.CompareFunctionLess, state.Descriptor().DepthCompare)

	vp := device.CallsTo("SetViewport")
	require.Len(t, vp, 1)
	assert.Equal(t, gpu.Viewport{X: 0, Y: 0, Width: 800, Height: 600}, vp[0].Args[0])
}

func TestApplyFallsBackToPassViewport(t *testing.T) {
	device := gputest.NewDevice()
	rs := NewRenderState(device, WithWireframe(true), WithCull(gpu.CullFaceBack))
	device.Reset()

	pass := gpu.PassState{Viewport: gpu.Viewport{Width: 320, Height: 200}}
	rs.Apply(device.BeginRenderPass(gpu.RenderPassDescriptor{}), pass)

	assert.Equal(t, pass.Viewport, device.CallsTo("SetViewport")[0].Args[0])
	assert.Equal(t, gpu.FillModeLines, device.CallsTo("SetTriangleFillMode")[0].Args[0])
	assert.Equal(t, gpu.CullModeBack, device.CallsTo("SetCullMode")[0].Args[0])
}

func TestViewportIsCopied(t *testing.T) {
	rs := NewRenderState(gputest.NewDevice(), WithViewport(gpu.Viewport{Width: 5, Height: 5}))
	v := rs.Viewport()
	v.Width = 99
	assert.Equal(t, 5, rs.Viewport().Width)
}

func TestCacheCollapsesIdenticalStates(t *testing.T) {
	device := gputest.NewDevice()
	c := NewCache(device)

	a := c.FromCache(WithDepthTest(gpu.CompareFunctionLess), WithDepthMask(true))
	b := c.FromCache(WithDepthMask(true), WithDepthTest(gpu.CompareFunctionLess))
	assert.Same(t, a, b)
	assert.Same(t, a.DepthStencilState(), b.DepthStencilState())
	assert.Len(t, device.CallsTo("CreateDepthStencilState"), 1)
	assert.Equal(t, 1, c.Len())

	c.FromCache(WithWireframe(true))
	assert.Equal(t, 2, c.Len())
	assert.Len(t, device.CallsTo("CreateDepthStencilState"), 2)

	c.Release()
	assert.Equal(t, 0, c.Len())
	for _, s := range device.DepthStencilStates {
		assert.True(t, s.Released)
	}
}
