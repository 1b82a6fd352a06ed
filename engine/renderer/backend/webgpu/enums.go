package webgpu

import (
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

var compareFunctions = map[gpu.CompareFunction]wgpu.CompareFunction{
	gpu.CompareFunctionNever:        wgpu.CompareFunctionNever,
	gpu.CompareFunctionLess:         wgpu.CompareFunctionLess,
	gpu.CompareFunctionEqual:        wgpu.CompareFunctionEqual,
	gpu.CompareFunctionLessEqual:    wgpu.CompareFunctionLessEqual,
	gpu.CompareFunctionGreater:      wgpu.CompareFunctionGreater,
	gpu.CompareFunctionNotEqual:     wgpu.CompareFunctionNotEqual,
	gpu.CompareFunctionGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	gpu.CompareFunctionAlways:       wgpu.CompareFunctionAlways,
}

var stencilOperations = map[gpu.StencilOperation]wgpu.StencilOperation{
	gpu.StencilOperationKeep:           wgpu.StencilOperationKeep,
	gpu.StencilOperationZero:           wgpu.StencilOperationZero,
	gpu.StencilOperationReplace:        wgpu.StencilOperationReplace,
	gpu.StencilOperationIncrementClamp: wgpu.StencilOperationIncrementClamp,
	gpu.StencilOperationDecrementClamp: wgpu.StencilOperationDecrementClamp,
	gpu.StencilOperationInvert:         wgpu.StencilOperationInvert,
	gpu.StencilOperationIncrementWrap:  wgpu.StencilOperationIncrementWrap,
	gpu.StencilOperationDecrementWrap:  wgpu.StencilOperationDecrementWrap,
}

var blendOperations = map[gpu.BlendEquation]wgpu.BlendOperation{
	gpu.BlendEquationAdd:             wgpu.BlendOperationAdd,
	gpu.BlendEquationSubtract:        wgpu.BlendOperationSubtract,
	gpu.BlendEquationReverseSubtract: wgpu.BlendOperationReverseSubtract,
	gpu.BlendEquationMin:             wgpu.BlendOperationMin,
	gpu.BlendEquationMax:             wgpu.BlendOperationMax,
}

var blendFactors = map[gpu.BlendFunction]wgpu.BlendFactor{
	gpu.BlendFunctionZero:                     wgpu.BlendFactorZero,
	gpu.BlendFunctionOne:                      wgpu.BlendFactorOne,
	gpu.BlendFunctionSourceColor:              wgpu.BlendFactorSrc,
	gpu.BlendFunctionOneMinusSourceColor:      wgpu.BlendFactorOneMinusSrc,
	gpu.BlendFunctionSourceAlpha:              wgpu.BlendFactorSrcAlpha,
	gpu.BlendFunctionOneMinusSourceAlpha:      wgpu.BlendFactorOneMinusSrcAlpha,
	gpu.BlendFunctionDestinationColor:         wgpu.BlendFactorDst,
	gpu.BlendFunctionOneMinusDestinationColor: wgpu.BlendFactorOneMinusDst,
	gpu.BlendFunctionDestinationAlpha:         wgpu.BlendFactorDstAlpha,
	gpu.BlendFunctionOneMinusDestinationAlpha: wgpu.BlendFactorOneMinusDstAlpha,
	gpu.BlendFunctionConstantColor:            wgpu.BlendFactorConstant,
	gpu.BlendFunctionOneMinusConstantColor:    wgpu.BlendFactorOneMinusConstant,
	gpu.BlendFunctionSourceAlphaSaturate:      wgpu.BlendFactorSrcAlphaSaturated,
}

var topologies = map[gpu.PrimitiveType]wgpu.PrimitiveTopology{
	gpu.PrimitiveTypePoints:        wgpu.PrimitiveTopologyPointList,
	gpu.PrimitiveTypeLines:         wgpu.PrimitiveTopologyLineList,
	gpu.PrimitiveTypeLineStrip:     wgpu.PrimitiveTopologyLineStrip,
	gpu.PrimitiveTypeTriangles:     wgpu.PrimitiveTopologyTriangleList,
	gpu.PrimitiveTypeTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

var vertexFormats = map[int]wgpu.VertexFormat{
	1: wgpu.VertexFormatFloat32,
	2: wgpu.VertexFormatFloat32x2,
	3: wgpu.VertexFormatFloat32x3,
	4: wgpu.VertexFormatFloat32x4,
}

func compareFunction(f gpu.CompareFunction) wgpu.CompareFunction {
	if v, ok := compareFunctions[f]; ok {
		return v
	}
	return wgpu.CompareFunctionAlways
}

func stencilOperation(op gpu.StencilOperation) wgpu.StencilOperation {
	if v, ok := stencilOperations[op]; ok {
		return v
	}
	return wgpu.StencilOperationKeep
}

func topology(p gpu.PrimitiveType) wgpu.PrimitiveTopology {
	if v, ok := topologies[p]; ok {
		return v
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// isStrip reports whether indexed draws of the topology need a strip index format.
func isStrip(p gpu.PrimitiveType) bool {
	return p == gpu.PrimitiveTypeLineStrip || p == gpu.PrimitiveTypeTriangleStrip
}

func indexFormat(t gpu.IndexType) wgpu.IndexFormat {
	if t == gpu.IndexTypeUint32 {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

func frontFace(order gpu.WindingOrder) wgpu.FrontFace {
	if order == gpu.WindingOrderClockwise {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func cullMode(mode gpu.CullMode) wgpu.CullMode {
	switch mode {
	case gpu.CullModeFront:
		return wgpu.CullModeFront
	case gpu.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func blendComponent(eq gpu.BlendEquation, src, dst gpu.BlendFunction) wgpu.BlendComponent {
	c := wgpu.BlendComponent{
		Operation: blendOperations[eq],
		SrcFactor: blendFactors[src],
		DstFactor: blendFactors[dst],
	}
	// min and max ignore the factors but the API requires them to be one
	if eq == gpu.BlendEquationMin || eq == gpu.BlendEquationMax {
		c.SrcFactor, c.DstFactor = wgpu.BlendFactorOne, wgpu.BlendFactorOne
	}
	return c
}

// blendState returns nil when blending is disabled.
func blendState(blend gpu.BlendDescriptor) *wgpu.BlendState {
	if !blend.Enabled {
		return nil
	}
	return &wgpu.BlendState{
		Color: blendComponent(blend.EquationRGB, blend.SourceRGB, blend.DestinationRGB),
		Alpha: blendComponent(blend.EquationAlpha, blend.SourceAlpha, blend.DestinationAlpha),
	}
}

func writeMask(mask gpu.ColorMask) wgpu.ColorWriteMask {
	var m wgpu.ColorWriteMask
	if mask.Red {
		m |= wgpu.ColorWriteMaskRed
	}
	if mask.Green {
		m |= wgpu.ColorWriteMaskGreen
	}
	if mask.Blue {
		m |= wgpu.ColorWriteMaskBlue
	}
	if mask.Alpha {
		m |= wgpu.ColorWriteMaskAlpha
	}
	return m
}

func bufferUsage(usage gpu.BufferUsage) wgpu.BufferUsage {
	u := wgpu.BufferUsageCopyDst
	if usage&gpu.BufferUsageVertex != 0 {
		u |= wgpu.BufferUsageVertex
	}
	if usage&gpu.BufferUsageIndex != 0 {
		u |= wgpu.BufferUsageIndex
	}
	if usage&gpu.BufferUsageUniform != 0 {
		u |= wgpu.BufferUsageUniform
	}
	return u
}

func stencilFace(face gpu.StencilFaceDescriptor, enabled bool) wgpu.StencilFaceState {
	if !enabled {
		return wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
	}
	return wgpu.StencilFaceState{
		Compare:     compareFunction(face.Compare),
		FailOp:      stencilOperation(face.Fail),
		DepthFailOp: stencilOperation(face.DepthFail),
		PassOp:      stencilOperation(face.Pass),
	}
}

// align4 rounds n up to the copy alignment of queue writes.
func align4(n int) int {
	return (n + 3) &^ 3
}
