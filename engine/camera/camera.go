// Package camera provides a globe camera and perspective frustum for driving the renderer's
// automatic uniforms.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

type cameraImpl struct {
	mu *sync.Mutex

	position  common.Cartesian3
	direction common.Cartesian3
	up        common.Cartesian3
	right     common.Cartesian3

	viewMatrix        common.Matrix4
	inverseViewMatrix common.Matrix4

	frustum    PerspectiveFrustum
	controller CameraController
}

// Camera is the viewer of a globe scene. It reads its position from an attached
// CameraController on Update and fits the frustum clip planes to the camera height.
type Camera interface {
	uniform.Camera

	// PerspectiveFrustum returns the frustum with its setters.
	//
	// Returns:
	//   - PerspectiveFrustum: the frustum
	PerspectiveFrustum() PerspectiveFrustum

	// Controller returns the attached CameraController, nil if none is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// SetAspect sets the frustum aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)

	// Update reads the controller and recomputes the view matrices and clip planes. Call it
	// once per tick. Without a controller it does nothing.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera. A controller must be attached via SetController or
// WithController before Update moves it.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                &sync.Mutex{},
		position:          common.Cartesian3{Z: 1},
		direction:         common.Cartesian3{Z: -1},
		up:                common.Cartesian3{Y: 1},
		right:             common.Cartesian3{X: 1},
		viewMatrix:        common.Identity4(),
		inverseViewMatrix: common.Identity4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.frustum == nil {
		c.frustum = NewPerspectiveFrustum()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) PositionWC() common.Cartesian3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) DirectionWC() common.Cartesian3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *cameraImpl) RightWC() common.Cartesian3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) UpWC() common.Cartesian3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) ViewMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) InverseViewMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewMatrix
}

func (c *cameraImpl) Frustum() uniform.Frustum {
	return c.frustum
}

func (c *cameraImpl) PerspectiveFrustum() PerspectiveFrustum {
	return c.frustum
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) SetAspect(aspect float64) {
	if aspect > 0 && !math.IsInf(aspect, 0) {
		c.frustum.SetAspect(aspect)
	}
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.position, c.direction, c.up, c.right = c.controller.Axes()
	c.updateMatrices()

	// Keep depth precision near the surface: the near plane follows the height and the far
	// plane reaches past the horizon.
	height := c.controller.Cartographic().Height
	radius := c.controller.Ellipsoid().MaximumRadius()
	near := math.Max(1.0, 0.1*height)
	far := math.Sqrt(height*(height+2*radius)) + radius
	c.frustum.SetNearFar(near, math.Max(far, 2*near))
}

// updateMatrices rebuilds the view matrix from the camera axes. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	r, u, d, p := c.right, c.up, c.direction, c.position
	c.viewMatrix = common.Matrix4{
		r.X, u.X, -d.X, 0,
		r.Y, u.Y, -d.Y, 0,
		r.Z, u.Z, -d.Z, 0,
		-r.Dot(p), -u.Dot(p), d.Dot(p), 1,
	}
	c.inverseViewMatrix = c.viewMatrix.InverseTransformation()
}
