package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

type perspectiveFrustum struct {
	mu *sync.Mutex

	fovy    float64
	aspect  float64
	near    float64
	far     float64
	xOffset float64
	yOffset float64
}

// PerspectiveFrustum is a symmetric perspective view volume, optionally shifted off center.
// It reports the off-center plane distances the uniform state consumes.
type PerspectiveFrustum interface {
	uniform.Frustum

	// Fovy returns the vertical field of view.
	//
	// Returns:
	//   - float64: the field of view in radians
	Fovy() float64

	// Aspect returns the width over height ratio.
	//
	// Returns:
	//   - float64: the aspect ratio
	Aspect() float64

	// SetFovy sets the vertical field of view.
	//
	// Parameters:
	//   - fovy: the field of view in radians, in (0, pi)
	SetFovy(fovy float64)

	// SetAspect sets the width over height ratio.
	//
	// Parameters:
	//   - aspect: the aspect ratio, greater than zero
	SetAspect(aspect float64)

	// SetNearFar sets the clip plane distances.
	//
	// Parameters:
	//   - near: the near plane distance, greater than zero
	//   - far: the far plane distance, greater than near
	SetNearFar(near, far float64)
}

var _ PerspectiveFrustum = &perspectiveFrustum{}

// NewPerspectiveFrustum creates a PerspectiveFrustum.
//
// Parameters:
//   - options: variadic list of FrustumBuilderOption
//
// Returns:
//   - PerspectiveFrustum: the frustum
func NewPerspectiveFrustum(options ...FrustumBuilderOption) PerspectiveFrustum {
	f := &perspectiveFrustum{
		mu:     &sync.Mutex{},
		fovy:   60.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   1.0,
		far:    5.0e8,
	}
	for _, opt := range options {
		opt(f)
	}
	f.validate()
	return f
}

func (f *perspectiveFrustum) validate() {
	common.Assert(f.fovy > 0 && f.fovy < math.Pi, "camera: fovy must be in (0, pi), got %g", f.fovy)
	common.Assert(f.aspect > 0, "camera: aspect must be > 0, got %g", f.aspect)
	common.Assert(f.near > 0 && f.near < f.far, "camera: need 0 < near < far, got near=%g far=%g", f.near, f.far)
}

// planes returns the off-center extents on the near plane. Caller must hold the mutex.
func (f *perspectiveFrustum) planes() (top, bottom, left, right float64) {
	top = f.near * math.Tan(0.5*f.fovy)
	bottom = -top
	right = f.aspect * top
	left = -right
	return top + f.yOffset, bottom + f.yOffset, left + f.xOffset, right + f.xOffset
}

func (f *perspectiveFrustum) Near() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.near
}

func (f *perspectiveFrustum) Far() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.far
}

func (f *perspectiveFrustum) Top() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	top, _, _, _ := f.planes()
	return top
}

func (f *perspectiveFrustum) Bottom() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, bottom, _, _ := f.planes()
	return bottom
}

func (f *perspectiveFrustum) Left() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _, left, _ := f.planes()
	return left
}

func (f *perspectiveFrustum) Right() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _, _, right := f.planes()
	return right
}

func (f *perspectiveFrustum) ProjectionMatrix() common.Matrix4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	top, bottom, left, right := f.planes()
	return common.PerspectiveOffCenter(left, right, bottom, top, f.near, f.far)
}

func (f *perspectiveFrustum) InfiniteProjectionMatrix() (common.Matrix4, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	top, bottom, left, right := f.planes()
	return common.InfinitePerspectiveOffCenter(left, right, bottom, top, f.near), true
}

func (f *perspectiveFrustum) Fovy() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fovy
}

func (f *perspectiveFrustum) Aspect() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aspect
}

func (f *perspectiveFrustum) SetFovy(fovy float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fovy = fovy
	f.validate()
}

func (f *perspectiveFrustum) SetAspect(aspect float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aspect = aspect
	f.validate()
}

func (f *perspectiveFrustum) SetNearFar(near, far float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.near, f.far = near, far
	f.validate()
}
