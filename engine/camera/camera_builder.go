package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithFrustum sets the camera frustum.
//
// Parameters:
//   - f: the frustum
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFrustum(f PerspectiveFrustum) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.frustum = f
	}
}

// WithController attaches a CameraController and places the camera from it.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
		c.position, c.direction, c.up, c.right = ctrl.Axes()
	}
}
