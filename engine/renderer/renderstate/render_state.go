package renderstate

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// Cull enables face culling for one face.
type Cull struct {
	Enabled bool
	Face    gpu.CullFace
}

// PolygonOffset pushes rasterized depth away from the camera.
type PolygonOffset struct {
	Enabled bool
	Factor  float32
	Units   float32
}

// DepthTest configures the depth comparison.
type DepthTest struct {
	Enabled bool
	Func    gpu.CompareFunction
}

// Blending configures color blending.
type Blending struct {
	Enabled                  bool
	Color                    gpu.Color
	EquationRGB              gpu.BlendEquation
	EquationAlpha            gpu.BlendEquation
	FunctionSourceRGB        gpu.BlendFunction
	FunctionSourceAlpha      gpu.BlendFunction
	FunctionDestinationRGB   gpu.BlendFunction
	FunctionDestinationAlpha gpu.BlendFunction
}

// StencilOperations are the actions for one face of the stencil test.
type StencilOperations struct {
	Fail  gpu.StencilOperation
	ZFail gpu.StencilOperation
	ZPass gpu.StencilOperation
}

// StencilTest configures the stencil test.
type StencilTest struct {
	Enabled        bool
	FrontFunction  gpu.CompareFunction
	BackFunction   gpu.CompareFunction
	Reference      uint32
	Mask           uint32
	FrontOperation StencilOperations
	BackOperation  StencilOperations
}

// BlendingAlpha is the conventional premultiplied-free alpha blend.
var BlendingAlpha = Blending{
	Enabled:                  true,
	EquationRGB:              gpu.BlendEquationAdd,
	EquationAlpha:            gpu.BlendEquationAdd,
	FunctionSourceRGB:        gpu.BlendFunctionSourceAlpha,
	FunctionSourceAlpha:      gpu.BlendFunctionOne,
	FunctionDestinationRGB:   gpu.BlendFunctionOneMinusSourceAlpha,
	FunctionDestinationAlpha: gpu.BlendFunctionOneMinusSourceAlpha,
}

// renderState is the implementation of the RenderState interface.
type renderState struct {
	frontFace     gpu.WindingOrder
	cull          Cull
	polygonOffset PolygonOffset
	depthRange    gpu.DepthRange
	depthTest     DepthTest
	colorMask     gpu.ColorMask
	depthMask     bool
	stencilMask   uint32
	blending      Blending
	stencilTest   StencilTest
	viewport      *gpu.Viewport
	wireframe     bool

	hash              string
	depthStencilState gpu.DepthStencilState
}

// RenderState is an immutable description of fixed-function pipeline state. Two render
// states built from identical fields share the same Hash and, when obtained through a Cache,
// the same backend depth-stencil object.
type RenderState interface {
	FrontFace() gpu.WindingOrder
	Cull() Cull
	PolygonOffset() PolygonOffset
	DepthRange() gpu.DepthRange
	DepthTest() DepthTest
	ColorMask() gpu.ColorMask
	DepthMask() bool
	StencilMask() uint32
	Blending() Blending
	StencilTest() StencilTest

	// Viewport returns the explicit viewport, or nil when the pass viewport is used.
	//
	// Returns:
	//   - *gpu.Viewport: a copy of the viewport, or nil
	Viewport() *gpu.Viewport

	Wireframe() bool

	// Hash returns the structural key of the state. It is a pure function of the fields.
	//
	// Returns:
	//   - string: the hash
	Hash() string

	// DepthStencilDescriptor derives the backend depth-stencil description from the state.
	//
	// Returns:
	//   - gpu.DepthStencilDescriptor: the description
	DepthStencilDescriptor() gpu.DepthStencilDescriptor

	// BlendDescriptor derives the blend configuration bound with the program.
	//
	// Returns:
	//   - gpu.BlendDescriptor: the blend description
	BlendDescriptor() gpu.BlendDescriptor

	// DepthStencilState returns the backend object created when the state was built.
	//
	// Returns:
	//   - gpu.DepthStencilState: the depth-stencil state
	DepthStencilState() gpu.DepthStencilState

	// Apply pushes winding order, cull mode, depth-stencil state, viewport, fill mode and
	// depth bias to the encoder, always all of them and in that order.
	//
	// Parameters:
	//   - encoder: the encoder of the current pass
	//   - passState: supplies the viewport when the state has none
	Apply(encoder gpu.RenderEncoder, passState gpu.PassState)
}

var _ RenderState = &renderState{}

// NewRenderState builds and validates a render state and creates its depth-stencil object on
// the device. Invalid fields panic with a *common.PreconditionError.
//
// Parameters:
//   - device: the device that owns the depth-stencil object
//   - options: variadic list of RenderStateBuilderOption functions
//
// Returns:
//   - RenderState: the new render state
func NewRenderState(device gpu.Device, options ...RenderStateBuilderOption) RenderState {
	rs := build(options...)
	rs.init(device)
	return rs
}

func build(options ...RenderStateBuilderOption) *renderState {
	rs := &renderState{
		frontFace:   gpu.WindingOrderCounterClockwise,
		cull:        Cull{Face: gpu.CullFaceBack},
		depthRange:  gpu.DepthRange{Near: 0, Far: 1},
		depthTest:   DepthTest{Func: gpu.CompareFunctionLess},
		colorMask:   gpu.ColorMaskAll,
		depthMask:   true,
		stencilMask: ^uint32(0),
		blending: Blending{
			EquationRGB:              gpu.BlendEquationAdd,
			EquationAlpha:            gpu.BlendEquationAdd,
			FunctionSourceRGB:        gpu.BlendFunctionOne,
			FunctionSourceAlpha:      gpu.BlendFunctionOne,
			FunctionDestinationRGB:   gpu.BlendFunctionZero,
			FunctionDestinationAlpha: gpu.BlendFunctionZero,
		},
		stencilTest: StencilTest{
			FrontFunction: gpu.CompareFunctionAlways,
			BackFunction:  gpu.CompareFunctionAlways,
			Mask:          ^uint32(0),
			FrontOperation: StencilOperations{
				Fail:  gpu.StencilOperationKeep,
				ZFail: gpu.StencilOperationKeep,
				ZPass: gpu.StencilOperationKeep,
			},
			BackOperation: StencilOperations{
				Fail:  gpu.StencilOperationKeep,
				ZFail: gpu.StencilOperationKeep,
				ZPass: gpu.StencilOperationKeep,
			},
		},
	}
	for _, opt := range options {
		opt(rs)
	}
	rs.validate()
	rs.hash = rs.computeHash()
	return rs
}

func (rs *renderState) validate() {
	if rs.viewport != nil {
		common.Assert(rs.viewport.Width >= 0, "renderstate: viewport width must be >= 0, got %d", rs.viewport.Width)
		common.Assert(rs.viewport.Height >= 0, "renderstate: viewport height must be >= 0, got %d", rs.viewport.Height)
	}
	near, far := rs.depthRange.Near, rs.depthRange.Far
	common.Assert(near <= far, "renderstate: depth range near (%g) must be <= far (%g)", near, far)
	common.Assert(near >= 0 && near <= 1, "renderstate: depth range near must be in [0, 1], got %g", near)
	common.Assert(far >= 0 && far <= 1, "renderstate: depth range far must be in [0, 1], got %g", far)
}

func (rs *renderState) init(device gpu.Device) {
	rs.depthStencilState = device.CreateDepthStencilState(rs.DepthStencilDescriptor())
}

func (rs *renderState) computeHash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ff%d;", rs.frontFace)
	fmt.Fprintf(&b, "cull%t,%d;", rs.cull.Enabled, rs.cull.Face)
	fmt.Fprintf(&b, "po%t,%g,%g;", rs.polygonOffset.Enabled, rs.polygonOffset.Factor, rs.polygonOffset.Units)
	fmt.Fprintf(&b, "dr%g,%g;", rs.depthRange.Near, rs.depthRange.Far)
	fmt.Fprintf(&b, "dt%t,%d;", rs.depthTest.Enabled, rs.depthTest.Func)
	fmt.Fprintf(&b, "cm%t,%t,%t,%t;", rs.colorMask.Red, rs.colorMask.Green, rs.colorMask.Blue, rs.colorMask.Alpha)
	fmt.Fprintf(&b, "dm%t;sm%d;", rs.depthMask, rs.stencilMask)
	bl := rs.blending
	fmt.Fprintf(&b, "bl%t,%g,%g,%g,%g,%d,%d,%d,%d,%d,%d;", bl.Enabled,
		bl.Color.R, bl.Color.G, bl.Color.B, bl.Color.A,
		bl.EquationRGB, bl.EquationAlpha,
		bl.FunctionSourceRGB, bl.FunctionSourceAlpha, bl.FunctionDestinationRGB, bl.FunctionDestinationAlpha)
	st := rs.stencilTest
	fmt.Fprintf(&b, "st%t,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d;", st.Enabled,
		st.FrontFunction, st.BackFunction, st.Reference, st.Mask,
		st.FrontOperation.Fail, st.FrontOperation.ZFail, st.FrontOperation.ZPass,
		st.BackOperation.Fail, st.BackOperation.ZFail, st.BackOperation.ZPass)
	if rs.viewport != nil {
		fmt.Fprintf(&b, "vp%d,%d,%d,%d;", rs.viewport.X, rs.viewport.Y, rs.viewport.Width, rs.viewport.Height)
	} else {
		b.WriteString("vp-;")
	}
	fmt.Fprintf(&b, "wf%t", rs.wireframe)
	return b.String()
}

func (rs *renderState) FrontFace() gpu.WindingOrder  { return rs.frontFace }
func (rs *renderState) Cull() Cull                   { return rs.cull }
func (rs *renderState) PolygonOffset() PolygonOffset { return rs.polygonOffset }
func (rs *renderState) DepthRange() gpu.DepthRange   { return rs.depthRange }
func (rs *renderState) DepthTest() DepthTest         { return rs.depthTest }
func (rs *renderState) ColorMask() gpu.ColorMask     { return rs.colorMask }
func (rs *renderState) DepthMask() bool              { return rs.depthMask }
func (rs *renderState) StencilMask() uint32          { return rs.stencilMask }
func (rs *renderState) Blending() Blending           { return rs.blending }
func (rs *renderState) StencilTest() StencilTest     { return rs.stencilTest }
func (rs *renderState) Wireframe() bool              { return rs.wireframe }
func (rs *renderState) Hash() string                 { return rs.hash }

func (rs *renderState) DepthStencilState() gpu.DepthStencilState {
	return rs.depthStencilState
}

func (rs *renderState) Viewport() *gpu.Viewport {
	if rs.viewport == nil {
		return nil
	}
	v := *rs.viewport
	return &v
}

func (rs *renderState) DepthStencilDescriptor() gpu.DepthStencilDescriptor {
	desc := gpu.DepthStencilDescriptor{
		DepthCompare:     gpu.CompareFunctionAlways,
		DepthWrite:       rs.depthMask,
		StencilEnabled:   rs.stencilTest.Enabled,
		StencilReadMask:  rs.stencilTest.Mask,
		StencilWriteMask: rs.stencilMask,
	}
	if rs.depthTest.Enabled {
		desc.DepthCompare = rs.depthTest.Func
	}
	if rs.stencilTest.Enabled {
		desc.StencilFront = gpu.StencilFaceDescriptor{
			Compare:   rs.stencilTest.FrontFunction,
			Fail:      rs.stencilTest.FrontOperation.Fail,
			DepthFail: rs.stencilTest.FrontOperation.ZFail,
			Pass:      rs.stencilTest.FrontOperation.ZPass,
		}
		desc.StencilBack = gpu.StencilFaceDescriptor{
			Compare:   rs.stencilTest.BackFunction,
			Fail:      rs.stencilTest.BackOperation.Fail,
			DepthFail: rs.stencilTest.BackOperation.ZFail,
			Pass:      rs.stencilTest.BackOperation.ZPass,
		}
	} else {
		keep := gpu.StencilFaceDescriptor{
			Compare:   gpu.CompareFunctionAlways,
			Fail:      gpu.StencilOperationKeep,
			DepthFail: gpu.StencilOperationKeep,
			Pass:      gpu.StencilOperationKeep,
		}
		desc.StencilFront = keep
		desc.StencilBack = keep
	}
	return desc
}

func (rs *renderState) BlendDescriptor() gpu.BlendDescriptor {
	bl := rs.blending
	return gpu.BlendDescriptor{
		Enabled:          bl.Enabled,
		EquationRGB:      bl.EquationRGB,
		EquationAlpha:    bl.EquationAlpha,
		SourceRGB:        bl.FunctionSourceRGB,
		SourceAlpha:      bl.FunctionSourceAlpha,
		DestinationRGB:   bl.FunctionDestinationRGB,
		DestinationAlpha: bl.FunctionDestinationAlpha,
		Color:            bl.Color,
		ColorMask:        rs.colorMask,
	}
}

func (rs *renderState) Apply(encoder gpu.RenderEncoder, passState gpu.PassState) {
	encoder.SetFrontFacing(rs.frontFace)

	cullMode := gpu.CullModeNone
	if rs.cull.Enabled {
		cullMode = gpu.CullModeBack
		if rs.cull.Face == gpu.CullFaceFront {
			cullMode = gpu.CullModeFront
		}
	}
	encoder.SetCullMode(cullMode)

	encoder.SetDepthStencilState(rs.depthStencilState, rs.stencilTest.Reference)

	viewport := passState.Viewport
	if rs.viewport != nil {
		viewport = *rs.viewport
	}
	encoder.SetViewport(viewport, rs.depthRange)

	fillMode := gpu.FillModeFill
	if rs.wireframe {
		fillMode = gpu.FillModeLines
	}
	encoder.SetTriangleFillMode(fillMode)

	if rs.polygonOffset.Enabled {
		encoder.SetDepthBias(rs.polygonOffset.Units, rs.polygonOffset.Factor)
	} else {
		encoder.SetDepthBias(0, 0)
	}
}
