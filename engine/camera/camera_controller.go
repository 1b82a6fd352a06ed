package camera

import "github.com/Carmen-Shannon/oxy-globe/common"

// CameraController orbits the camera around an ellipsoid. The camera sits at a geodetic
// position above the surface and looks straight down with north up the screen.
type CameraController interface {
	// Cartographic returns the geodetic position of the camera.
	//
	// Returns:
	//   - common.Cartographic: longitude and latitude in radians, height in meters
	Cartographic() common.Cartographic

	// SetCartographic moves the camera, clamping latitude and height to the bounds.
	//
	// Parameters:
	//   - c: the new geodetic position
	SetCartographic(c common.Cartographic)

	// Ellipsoid returns the ellipsoid orbited.
	//
	// Returns:
	//   - common.Ellipsoid: the ellipsoid
	Ellipsoid() common.Ellipsoid

	// Axes returns the fixed-frame position and orthonormal view axes of the camera.
	//
	// Returns:
	//   - position: the camera position in meters
	//   - direction: the view direction
	//   - up: the screen up axis
	//   - right: the screen right axis
	Axes() (position, direction, up, right common.Cartesian3)

	// Zoom changes the height by a fraction of itself. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float64)

	// Rotate drags the globe under the camera by a screen distance. The angle covered per
	// pixel shrinks as the camera approaches the surface.
	//
	// Parameters:
	//   - dx: the horizontal drag in pixels, positive to the right
	//   - dy: the vertical drag in pixels, positive downward
	Rotate(dx, dy float64)

	// OrbitLeft moves the camera west by one orbit speed step.
	OrbitLeft()

	// OrbitRight moves the camera east by one orbit speed step.
	OrbitRight()

	// OrbitUp moves the camera north by one orbit speed step, clamped to the latitude bound.
	OrbitUp()

	// OrbitDown moves the camera south by one orbit speed step, clamped to the latitude bound.
	OrbitDown()

	// MinHeight returns the lowest allowed height.
	//
	// Returns:
	//   - float64: the height in meters
	MinHeight() float64

	// MaxHeight returns the highest allowed height.
	//
	// Returns:
	//   - float64: the height in meters
	MaxHeight() float64
}
