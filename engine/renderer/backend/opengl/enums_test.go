package opengl

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
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
		assert.Contains(t, blendEquations, eq)
	}
	for f := gpu.BlendFunctionZero; f <= gpu.BlendFunctionSourceAlphaSaturate; f++ {
		assert.Contains(t, blendFunctions, f)
	}
	for p := gpu.PrimitiveTypePoints; p <= gpu.PrimitiveTypeTriangleStrip; p++ {
		assert.Contains(t, primitiveTypes, p)
	}
}

func TestEnumMapping(t *testing.T) {
	assert.Equal(t, uint32(gl.LEQUAL), compareFunction(gpu.CompareFunctionLessEqual))
	assert.Equal(t, uint32(gl.ALWAYS), compareFunction(gpu.CompareFunction(99)))
	assert.Equal(t, uint32(gl.INCR_WRAP), stencilOperation(gpu.StencilOperationIncrementWrap))
	assert.Equal(t, uint32(gl.FUNC_REVERSE_SUBTRACT), blendEquation(gpu.BlendEquationReverseSubtract))
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), blendFunction(gpu.BlendFunctionOneMinusSourceAlpha))
	assert.Equal(t, uint32(gl.TRIANGLE_STRIP), primitiveType(gpu.PrimitiveTypeTriangleStrip))
	assert.Equal(t, uint32(gl.UNSIGNED_SHORT), indexType(gpu.IndexTypeUint16))
	assert.Equal(t, uint32(gl.UNSIGNED_INT), indexType(gpu.IndexTypeUint32))
	assert.Equal(t, uint32(gl.CW), frontFace(gpu.WindingOrderClockwise))
	assert.Equal(t, uint32(gl.LINE), polygonMode(gpu.FillModeLines))
}

func TestCullFace(t *testing.T) {
	_, enabled := cullFace(gpu.CullModeNone)
	assert.False(t, enabled)

	face, enabled := cullFace(gpu.CullModeFront)
	assert.True(t, enabled)
	assert.Equal(t, uint32(gl.FRONT), face)

	face, enabled = cullFace(gpu.CullModeBack)
	assert.True(t, enabled)
	assert.Equal(t, uint32(gl.BACK), face)
}

func TestBufferTarget(t *testing.T) {
	assert.Equal(t, uint32(gl.UNIFORM_BUFFER), bufferTarget(gpu.BufferUsageUniform))
	assert.Equal(t, uint32(gl.ELEMENT_ARRAY_BUFFER), bufferTarget(gpu.BufferUsageIndex))
	assert.Equal(t, uint32(gl.ARRAY_BUFFER), bufferTarget(gpu.BufferUsageVertex))
}

func TestMappedNameFallsBack(t *testing.T) {
	vs := translatedStage{mapping: map[string]string{"position3DHigh": "_uposition3DHigh", "czm_FrameUniforms": "czm_FrameUniforms"}}
	fs := translatedStage{mapping: map[string]string{"u_tile": "_uu_tile"}}

	assert.Equal(t, "_uposition3DHigh", vs.mappedName("position3DHigh"))
	assert.Equal(t, "normal", vs.mappedName("normal"))
	assert.Equal(t, "czm_FrameUniforms", blockName(vs, fs, "czm_FrameUniforms"))
	assert.Equal(t, "_uu_tile", blockName(vs, fs, "u_tile"))
}
