package gpu

// WindingOrder identifies which vertex winding is considered front facing.
type WindingOrder int

const (
	// WindingOrderCounterClockwise treats counter-clockwise triangles as front facing.
	WindingOrderCounterClockwise WindingOrder = iota

	// WindingOrderClockwise treats clockwise triangles as front facing.
	WindingOrderClockwise
)

// CullFace selects which triangle faces are culled when culling is enabled.
type CullFace int

const (
	CullFaceBack CullFace = iota
	CullFaceFront
)

// CullMode is the cull setting pushed to an encoder. It folds the enabled flag and the face.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// CompareFunction is used by the depth and stencil tests.
type CompareFunction int

const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

// StencilOperation is the action taken on the stencil buffer after a stencil or depth test.
type StencilOperation int

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationInvert
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

// BlendEquation combines the weighted source and destination colors.
type BlendEquation int

const (
	BlendEquationAdd BlendEquation = iota
	BlendEquationSubtract
	BlendEquationReverseSubtract
	BlendEquationMin
	BlendEquationMax
)

// BlendFunction is a weight applied to a source or destination color during blending.
type BlendFunction int

const (
	BlendFunctionZero BlendFunction = iota
	BlendFunctionOne
	BlendFunctionSourceColor
	BlendFunctionOneMinusSourceColor
	BlendFunctionSourceAlpha
	BlendFunctionOneMinusSourceAlpha
	BlendFunctionDestinationColor
	BlendFunctionOneMinusDestinationColor
	BlendFunctionDestinationAlpha
	BlendFunctionOneMinusDestinationAlpha
	BlendFunctionConstantColor
	BlendFunctionOneMinusConstantColor
	BlendFunctionSourceAlphaSaturate
)

// FillMode controls whether triangles are rasterized filled or as outlines.
type FillMode int

const (
	FillModeFill FillMode = iota
	FillModeLines
)

// PrimitiveType is the topology of the vertices submitted by a draw call.
type PrimitiveType int

const (
	PrimitiveTypePoints PrimitiveType = iota
	PrimitiveTypeLines
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangles
	PrimitiveTypeTriangleStrip
)

// IndexType is the element size of an index buffer.
type IndexType int

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// Size returns the size of one index in bytes.
func (t IndexType) Size() int {
	if t == IndexTypeUint32 {
		return 4
	}
	return 2
}

// BufferUsage is a bit set describing how a Buffer is bound.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
)

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	if s == ShaderStageFragment {
		return "fragment"
	}
	return "vertex"
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// ColorMask enables writes to individual color channels.
type ColorMask struct {
	Red, Green, Blue, Alpha bool
}

// ColorMaskAll enables writes to every channel.
var ColorMaskAll = ColorMask{Red: true, Green: true, Blue: true, Alpha: true}

// Viewport is a window-space rectangle in pixels.
type Viewport struct {
	X, Y, Width, Height int
}

// DepthRange maps normalized device depth into window depth. Both ends lie in [0, 1].
type DepthRange struct {
	Near, Far float64
}

// StencilFaceDescriptor describes the stencil test for one triangle facing.
type StencilFaceDescriptor struct {
	Compare   CompareFunction
	Fail      StencilOperation
	DepthFail StencilOperation
	Pass      StencilOperation
}

// DepthStencilDescriptor is everything a backend needs to build a depth-stencil state object.
// A disabled depth test is expressed as CompareFunctionAlways.
type DepthStencilDescriptor struct {
	DepthCompare     CompareFunction
	DepthWrite       bool
	StencilEnabled   bool
	StencilFront     StencilFaceDescriptor
	StencilBack      StencilFaceDescriptor
	StencilReadMask  uint32
	StencilWriteMask uint32
}

// BlendDescriptor is the blend and color-write configuration bound alongside a program.
type BlendDescriptor struct {
	Enabled          bool
	EquationRGB      BlendEquation
	EquationAlpha    BlendEquation
	SourceRGB        BlendFunction
	SourceAlpha      BlendFunction
	DestinationRGB   BlendFunction
	DestinationAlpha BlendFunction
	Color            Color
	ColorMask        ColorMask
}

// VertexAttribute binds one shader attribute location to a region of a vertex buffer.
// Components are always 32-bit floats.
type VertexAttribute struct {
	Location       int
	Buffer         Buffer
	ComponentCount int
	Offset         int
	Stride         int
	// Divisor is the instance step rate; 0 advances per vertex.
	Divisor int
}

// VertexArrayDescriptor describes the vertex inputs of a draw.
type VertexArrayDescriptor struct {
	Label       string
	Attributes  []VertexAttribute
	IndexBuffer Buffer
	IndexType   IndexType
}

// ProgramDescriptor is the input to Device.CreateProgram. Sources are GLSL ES 3.00.
type ProgramDescriptor struct {
	Label              string
	VertexSource       string
	FragmentSource     string
	AttributeLocations map[string]int
	// UniformBlocks maps uniform block names to their binding index.
	UniformBlocks map[string]int
}

// RenderPassDescriptor begins a render pass. A nil Target renders to the window surface;
// nil clear values load the existing contents.
type RenderPassDescriptor struct {
	Target       RenderTarget
	ClearColor   *Color
	ClearDepth   *float64
	ClearStencil *int
}
