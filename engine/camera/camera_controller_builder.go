package camera

import "github.com/Carmen-Shannon/oxy-globe/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithEllipsoid sets the ellipsoid orbited.
//
// Parameters:
//   - e: the ellipsoid
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithEllipsoid(e common.Ellipsoid) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.ellipsoid = e
	}
}

// WithPosition sets the initial geodetic position.
//
// Parameters:
//   - longitude: the longitude in radians
//   - latitude: the latitude in radians
//   - height: the height above the ellipsoid in meters
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithPosition(longitude, latitude, height float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = common.Cartographic{Longitude: longitude, Latitude: latitude, Height: height}
	}
}

// WithHeightBounds sets the lowest and highest allowed heights.
//
// Parameters:
//   - min: the lowest height in meters
//   - max: the highest height in meters
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithHeightBounds(min, max float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minHeight = min
		cc.maxHeight = max
	}
}

// WithOrbitSpeed sets the keyboard orbit step in radians.
func WithOrbitSpeed(speed float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the drag multiplier.
func WithMouseSensitivity(sensitivity float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the fraction of the height covered by one unit of zoom.
func WithZoomSpeed(speed float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
