package webgpu

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestEnumTablesCoverEveryValue(t *testing.T) {
	for f := gpu.CompareFunctionNever; f <= gpu.CompareFunctionAlways; f++ {
		assert.Contains(t, compareFunctions, f)
	}
	for op := gpu.StencilOperationKeep; op <= gpu.StencilOperationDecrementWrap; op++ {
		assert.Contains(t, stencilOperations, op)
	}
	for eq := gpu.BlendEquationAdd; eq <= gpu.BlendEquationMax; eq++ {
		assert.Contains(t, blendOperations, eq)
	}
	for f := gpu.BlendFunctionZero; f <= gpu.BlendFunctionSourceAlphaSaturate; f++ {
		assert.Contains(t, blendFactors, f)
	}
	for p := gpu.PrimitiveTypePoints; p <= gpu.PrimitiveTypeTriangleStrip; p++ {
		assert.Contains(t, topologies, p)
	}
}

func TestBlendState(t *testing.T) {
	assert.Nil(t, blendState(gpu.BlendDescriptor{}))

	state := blendState(gpu.BlendDescriptor{
		Enabled:          true,
		EquationRGB:      gpu.BlendEquationAdd,
		EquationAlpha:    gpu.BlendEquationMax,
		SourceRGB:        gpu.BlendFunctionSourceAlpha,
		SourceAlpha:      gpu.BlendFunctionZero,
		DestinationRGB:   gpu.BlendFunctionOneMinusSourceAlpha,
		DestinationAlpha: gpu.BlendFunctionZero,
	})
	assert.Equal(t, wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	}, state.Color)
	assert.Equal(t, wgpu.BlendFactorOne, state.Alpha.SrcFactor, "max forces unit factors")
	assert.Equal(t, wgpu.BlendFactorOne, state.Alpha.DstFactor)
}

func TestWriteMask(t *testing.T) {
	assert.Equal(t, wgpu.ColorWriteMaskAll, writeMask(gpu.ColorMaskAll))
	assert.Equal(t, wgpu.ColorWriteMaskNone, writeMask(gpu.ColorMask{}))
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskAlpha, writeMask(gpu.ColorMask{Red: true, Alpha: true}))
}

func TestStencilFace(t *testing.T) {
	face := gpu.StencilFaceDescriptor{
		Compare:   gpu.CompareFunctionEqual,
		Fail:      gpu.StencilOperationZero,
		DepthFail: gpu.StencilOperationInvert,
		Pass:      gpu.StencilOperationReplace,
	}
	assert.Equal(t, wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionEqual,
		FailOp:      wgpu.StencilOperationZero,
		DepthFailOp: wgpu.StencilOperationInvert,
		PassOp:      wgpu.StencilOperationReplace,
	}, stencilFace(face, true))
	assert.Equal(t, wgpu.CompareFunctionAlways, stencilFace(face, false).Compare)
	assert.Equal(t, wgpu.StencilOperationKeep, stencilFace(face, false).PassOp)
}

func TestBufferUsageAndAlignment(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(gpu.BufferUsageUniform))
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst,
		bufferUsage(gpu.BufferUsageVertex|gpu.BufferUsageIndex))
	assert.Equal(t, 0, align4(0))
	assert.Equal(t, 8, align4(5))
	assert.Equal(t, 8, align4(8))
}

func TestPrimitiveMapping(t *testing.T) {
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, topology(gpu.PrimitiveTypeTriangleStrip))
	assert.True(t, isStrip(gpu.PrimitiveTypeLineStrip))
	assert.False(t, isStrip(gpu.PrimitiveTypeTriangles))
	assert.Equal(t, wgpu.IndexFormatUint32, indexFormat(gpu.IndexTypeUint32))
	assert.Equal(t, wgpu.FrontFaceCW, frontFace(gpu.WindingOrderClockwise))
	assert.Equal(t, wgpu.CullModeNone, cullMode(gpu.CullModeNone))
	assert.Equal(t, wgpu.CullModeBack, cullMode(gpu.CullModeBack))
}
