package opengl

import (
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

var compareFunctions = map[gpu.CompareFunction]uint32{
	gpu.CompareFunctionNever:        gl.NEVER,
	gpu.CompareFunctionLess:         gl.LESS,
	gpu.CompareFunctionEqual:        gl.EQUAL,
	gpu.CompareFunctionLessEqual:    gl.LEQUAL,
	gpu.CompareFunctionGreater:      gl.GREATER,
	gpu.CompareFunctionNotEqual:     gl.NOTEQUAL,
	gpu.CompareFunctionGreaterEqual: gl.GEQUAL,
	gpu.CompareFunctionAlways:       gl.ALWAYS,
}

var stencilOperations = map[gpu.StencilOperation]uint32{
	gpu.StencilOperationKeep:           gl.KEEP,
	gpu.StencilOperationZero:           gl.ZERO,
	gpu.StencilOperationReplace:        gl.REPLACE,
	gpu.StencilOperationIncrementClamp: gl.INCR,
	gpu.StencilOperationDecrementClamp: gl.DECR,
	gpu.StencilOperationInvert:         gl.INVERT,
	gpu.StencilOperationIncrementWrap:  gl.INCR_WRAP,
	gpu.StencilOperationDecrementWrap:  gl.DECR_WRAP,
}

var blendEquations = map[gpu.BlendEquation]uint32{
	gpu.BlendEquationAdd:             gl.FUNC_ADD,
	gpu.BlendEquationSubtract:        gl.FUNC_SUBTRACT,
	gpu.BlendEquationReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
	gpu.BlendEquationMin:             gl.MIN,
	gpu.BlendEquationMax:             gl.MAX,
}

var blendFunctions = map[gpu.BlendFunction]uint32{
	gpu.BlendFunctionZero:                     gl.ZERO,
	gpu.BlendFunctionOne:                      gl.ONE,
	gpu.BlendFunctionSourceColor:              gl.SRC_COLOR,
	gpu.BlendFunctionOneMinusSourceColor:      gl.ONE_MINUS_SRC_COLOR,
	gpu.BlendFunctionSourceAlpha:              gl.SRC_ALPHA,
	gpu.BlendFunctionOneMinusSourceAlpha:      gl.ONE_MINUS_SRC_ALPHA,
	gpu.BlendFunctionDestinationColor:         gl.DST_COLOR,
	gpu.BlendFunctionOneMinusDestinationColor: gl.ONE_MINUS_DST_COLOR,
	gpu.BlendFunctionDestinationAlpha:         gl.DST_ALPHA,
	gpu.BlendFunctionOneMinusDestinationAlpha: gl.ONE_MINUS_DST_ALPHA,
	gpu.BlendFunctionConstantColor:            gl.CONSTANT_COLOR,
	gpu.BlendFunctionOneMinusConstantColor:    gl.ONE_MINUS_CONSTANT_COLOR,
	gpu.BlendFunctionSourceAlphaSaturate:      gl.SRC_ALPHA_SATURATE,
}

var primitiveTypes = map[gpu.PrimitiveType]uint32{
	gpu.PrimitiveTypePoints:        gl.POINTS,
	gpu.PrimitiveTypeLines:         gl.LINES,
	gpu.PrimitiveTypeLineStrip:     gl.LINE_STRIP,
	gpu.PrimitiveTypeTriangles:     gl.TRIANGLES,
	gpu.PrimitiveTypeTriangleStrip: gl.TRIANGLE_STRIP,
}

func compareFunction(f gpu.CompareFunction) uint32 {
	if v, ok := compareFunctions[f]; ok {
		return v
	}
	return gl.ALWAYS
}

func stencilOperation(op gpu.StencilOperation) uint32 {
	if v, ok := stencilOperations[op]; ok {
		return v
	}
	return gl.KEEP
}

func blendEquation(eq gpu.BlendEquation) uint32 {
	if v, ok := blendEquations[eq]; ok {
		return v
	}
	return gl.FUNC_ADD
}

func blendFunction(f gpu.BlendFunction) uint32 {
	if v, ok := blendFunctions[f]; ok {
		return v
	}
	return gl.ONE
}

func primitiveType(p gpu.PrimitiveType) uint32 {
	if v, ok := primitiveTypes[p]; ok {
		return v
	}
	return gl.TRIANGLES
}

func indexType(t gpu.IndexType) uint32 {
	if t == gpu.IndexTypeUint32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}

func frontFace(order gpu.WindingOrder) uint32 {
	if order == gpu.WindingOrderClockwise {
		return gl.CW
	}
	return gl.CCW
}

// cullFace returns the face to cull and whether culling is enabled at all.
func cullFace(mode gpu.CullMode) (uint32, bool) {
	switch mode {
	case gpu.CullModeFront:
		return gl.FRONT, true
	case gpu.CullModeBack:
		return gl.BACK, true
	default:
		return gl.BACK, false
	}
}

func polygonMode(mode gpu.FillMode) uint32 {
	if mode == gpu.FillModeLines {
		return gl.LINE
	}
	return gl.FILL
}

// bufferTarget picks the binding point a buffer is first bound to for uploads.
func bufferTarget(usage gpu.BufferUsage) uint32 {
	switch {
	case usage&gpu.BufferUsageIndex != 0:
		return gl.ELEMENT_ARRAY_BUFFER
	case usage&gpu.BufferUsageUniform != 0:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}
