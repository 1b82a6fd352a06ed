package renderstate

import "github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"

// RenderStateBuilderOption is a functional option used to configure a RenderState during construction.
type RenderStateBuilderOption func(*renderState)

// WithFrontFace sets the winding order of front-facing triangles.
//
// Parameters:
//   - order: the front face winding
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the front face
func WithFrontFace(order gpu.WindingOrder) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.frontFace = order
	}
}

// WithCull enables culling of the given face.
//
// Parameters:
//   - face: the face to cull
//
// Returns:
//   - RenderStateBuilderOption: a function that enables culling
func WithCull(face gpu.CullFace) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.cull = Cull{Enabled: true, Face: face}
	}
}

// WithPolygonOffset enables a depth bias.
//
// Parameters:
//   - factor: the slope-scaled bias
//   - units: the constant bias
//
// Returns:
//   - RenderStateBuilderOption: a function that enables the polygon offset
func WithPolygonOffset(factor, units float32) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.polygonOffset = PolygonOffset{Enabled: true, Factor: factor, Units: units}
	}
}

// WithDepthRange sets the window depth range. Both values must lie in [0, 1] with near <= far.
//
// Parameters:
//   - near: the near end of the range
//   - far: the far end of the range
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the depth range
func WithDepthRange(near, far float64) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.depthRange = gpu.DepthRange{Near: near, Far: far}
	}
}

// WithDepthTest enables the depth test with the given comparison.
//
// Parameters:
//   - fn: the depth compare function
//
// Returns:
//   - RenderStateBuilderOption: a function that enables the depth test
func WithDepthTest(fn gpu.CompareFunction) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.depthTest = DepthTest{Enabled: true, Func: fn}
	}
}

// WithColorMask sets which color channels are written.
//
// Parameters:
//   - mask: the color write mask
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the color mask
func WithColorMask(mask gpu.ColorMask) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.colorMask = mask
	}
}

// WithDepthMask sets whether depth is written.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the depth mask
func WithDepthMask(enabled bool) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.depthMask = enabled
	}
}

// WithStencilMask sets the stencil write mask.
//
// Parameters:
//   - mask: the stencil write mask
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the stencil mask
func WithStencilMask(mask uint32) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.stencilMask = mask
	}
}

// WithBlending replaces the blending configuration.
//
// Parameters:
//   - b: the blending configuration, e.g. BlendingAlpha
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the blending
func WithBlending(b Blending) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.blending = b
	}
}

// WithStencilTest replaces the stencil test configuration.
//
// Parameters:
//   - st: the stencil test configuration
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the stencil test
func WithStencilTest(st StencilTest) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.stencilTest = st
	}
}

// WithViewport fixes the viewport instead of using the pass viewport.
//
// Parameters:
//   - v: the viewport; width and height must be >= 0
//
// Returns:
//   - RenderStateBuilderOption: a function that sets the viewport
func WithViewport(v gpu.Viewport) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.viewport = &v
	}
}

// WithWireframe selects wireframe rasterization.
//
// Parameters:
//   - enabled: true for wireframe
//
// Returns:
//   - RenderStateBuilderOption: a function that sets wireframe mode
func WithWireframe(enabled bool) RenderStateBuilderOption {
	return func(rs *renderState) {
		rs.wireframe = enabled
	}
}
