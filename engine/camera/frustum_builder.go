package camera

// FrustumBuilderOption is a functional option applied to a PerspectiveFrustum during
// construction via NewPerspectiveFrustum.
type FrustumBuilderOption func(*perspectiveFrustum)

// WithFovy sets the vertical field of view.
//
// Parameters:
//   - fovy: the field of view in radians
//
// Returns:
//   - FrustumBuilderOption: option function to apply
func WithFovy(fovy float64) FrustumBuilderOption {
	return func(f *perspectiveFrustum) {
		f.fovy = fovy
	}
}

// WithAspect sets the width over height ratio.
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - FrustumBuilderOption: option function to apply
func WithAspect(aspect float64) FrustumBuilderOption {
	return func(f *perspectiveFrustum) {
		f.aspect = aspect
	}
}

// WithNearFar sets the clip plane distances.
func WithNearFar(near, far float64) FrustumBuilderOption {
	return func(f *perspectiveFrustum) {
		f.near, f.far = near, far
	}
}

// WithOffset shifts the frustum off center, in near-plane units.
func WithOffset(x, y float64) FrustumBuilderOption {
	return func(f *perspectiveFrustum) {
		f.xOffset, f.yOffset = x, y
	}
}
