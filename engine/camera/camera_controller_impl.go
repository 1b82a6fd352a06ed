package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
)

// cameraControllerImpl is the implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	ellipsoid common.Ellipsoid
	position  common.Cartographic

	minHeight   float64
	maxHeight   float64
	maxLatitude float64

	orbitSpeed       float64
	mouseSensitivity float64
	zoomSpeed        float64
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller above the WGS84 ellipsoid looking down at
// longitude and latitude zero from 20,000 km.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		ellipsoid: common.WGS84,
		position:  common.Cartographic{Height: 2.0e7},

		minHeight:   100.0,
		maxHeight:   1.0e8,
		maxLatitude: math.Pi/2 - 0.01,

		orbitSpeed:       0.02,
		mouseSensitivity: 0.002,
		zoomSpeed:        0.1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.clamp()
	return cc
}

// clamp keeps the position inside the bounds and wraps longitude into [-pi, pi]. Caller
// must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	p := &cc.position
	p.Latitude = common.Clamp(p.Latitude, -cc.maxLatitude, cc.maxLatitude)
	p.Height = common.Clamp(p.Height, cc.minHeight, cc.maxHeight)
	p.Longitude = math.Remainder(p.Longitude, 2*math.Pi)
}

func (cc *cameraControllerImpl) Cartographic() common.Cartographic {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetCartographic(c common.Cartographic) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = c
	cc.clamp()
}

func (cc *cameraControllerImpl) Ellipsoid() common.Ellipsoid {
	return cc.ellipsoid
}

func (cc *cameraControllerImpl) Axes() (position, direction, up, right common.Cartesian3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	position = cc.ellipsoid.CartographicToCartesian(cc.position)
	normal := cc.ellipsoid.GeodeticSurfaceNormalCartographic(cc.position)
	// latitude never reaches the poles, so east is always defined
	east := common.Cartesian3{Z: 1}.Cross(normal).Normalize()
	north := normal.Cross(east)

	direction = normal.Negate()
	up = north
	right = direction.Cross(up)
	return position, direction, up, right
}

func (cc *cameraControllerImpl) Zoom(delta float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position.Height *= 1 - common.Clamp(delta*cc.zoomSpeed, -0.9, 0.9)
	cc.clamp()
}

func (cc *cameraControllerImpl) Rotate(dx, dy float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	scale := cc.mouseSensitivity * cc.position.Height / cc.ellipsoid.MaximumRadius()
	cc.position.Longitude -= dx * scale
	cc.position.Latitude += dy * scale
	cc.clamp()
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position.Longitude -= cc.orbitSpeed
	cc.clamp()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position.Longitude += cc.orbitSpeed
	cc.clamp()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position.Latitude += cc.orbitSpeed
	cc.clamp()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position.Latitude -= cc.orbitSpeed
	cc.clamp()
}

func (cc *cameraControllerImpl) MinHeight() float64 { return cc.minHeight }
func (cc *cameraControllerImpl) MaxHeight() float64 { return cc.maxHeight }
