package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestControllerAxesAreOrthonormal(t *testing.T) {
	cc := NewCameraController(WithPosition(0.3, -0.7, 1.0e6))
	_, direction, up, right := cc.Axes()

	assert.InDelta(t, 1, direction.Magnitude(), epsilon)
	assert.InDelta(t, 1, up.Magnitude(), epsilon)
	assert.InDelta(t, 1, right.Magnitude(), epsilon)
	assert.InDelta(t, 0, direction.Dot(up), epsilon)
	assert.InDelta(t, 0, direction.Dot(right), epsilon)
	assert.True(t, direction.Cross(up).EqualsEpsilon(right, epsilon), "right-handed axes")
}

func TestControllerLooksDownNorthUp(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 1.0e6))
	position, direction, up, right := cc.Axes()

	assert.InDelta(t, common.WGS84.Radii.X+1.0e6, position.X, 1e-6)
	assert.True(t, direction.EqualsEpsilon(common.Cartesian3{X: -1}, epsilon))
	assert.True(t, up.EqualsEpsilon(common.Cartesian3{Z: 1}, epsilon))
	assert.True(t, right.EqualsEpsilon(common.Cartesian3{Y: 1}, epsilon), "east is screen right")
}

func TestControllerClampsBounds(t *testing.T) {
	cc := NewCameraController(WithHeightBounds(100, 1000), WithPosition(3*math.Pi, 2, 5000))
	c := cc.Cartographic()
	assert.Equal(t, 1000.0, c.Height)
	assert.InDelta(t, math.Pi/2-0.01, c.Latitude, epsilon)
	assert.InDelta(t, math.Pi, math.Abs(c.Longitude), epsilon)

	for range 100 {
		cc.Zoom(1)
	}
	assert.Equal(t, 100.0, cc.Cartographic().Height)

	for range 1000 {
		cc.OrbitDown()
	}
	assert.InDelta(t, -(math.Pi/2 - 0.01), cc.Cartographic().Latitude, epsilon)
}

func TestControllerRotateSlowsNearSurface(t *testing.T) {
	high := NewCameraController(WithPosition(0, 0, 1.0e7))
	low := NewCameraController(WithPosition(0, 0, 1.0e4))
	high.Rotate(10, 0)
	low.Rotate(10, 0)
	assert.Less(t, high.Cartographic().Longitude, 0.0, "dragging right moves the camera west")
	assert.Greater(t, math.Abs(high.Cartographic().Longitude), math.Abs(low.Cartographic().Longitude))
}

func TestCameraViewMatrix(t *testing.T) {
	cc := NewCameraController(WithPosition(1.1, 0.4, 2.0e6))
	cam := NewCamera(WithController(cc))
	cam.Update()

	view := cam.ViewMatrix()
	eye := view.MultiplyByPoint(cam.PositionWC())
	assert.True(t, eye.EqualsEpsilon(common.Cartesian3{}, 1e-6), "the camera sits at the eye-space origin")

	forward := view.MultiplyByPointAsVector(cam.DirectionWC())
	assert.True(t, forward.EqualsEpsilon(common.Cartesian3{Z: -1}, epsilon), "eye space looks down -Z")

	product := view.Multiply(cam.InverseViewMatrix())
	assert.True(t, product.EqualsEpsilon(common.Identity4(), 1e-6))
}

func TestCameraFitsClipPlanesToHeight(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 1.0e6))
	cam := NewCamera(WithController(cc))
	cam.Update()

	f := cam.Frustum()
	assert.InDelta(t, 1.0e5, f.Near(), epsilon)
	horizon := math.Sqrt(1.0e6 * (1.0e6 + 2*common.WGS84.MaximumRadius()))
	assert.InDelta(t, horizon+common.WGS84.MaximumRadius(), f.Far(), 1e-6)
}

func TestCameraWithoutControllerIgnoresUpdate(t *testing.T) {
	cam := NewCamera()
	before := cam.ViewMatrix()
	cam.Update()
	assert.Equal(t, before, cam.ViewMatrix())
	assert.Nil(t, cam.Controller())
}

func TestPerspectiveFrustum(t *testing.T) {
	f := NewPerspectiveFrustum(WithFovy(math.Pi/2), WithAspect(2), WithNearFar(1, 100))
	assert.InDelta(t, 1, f.Top(), epsilon)
	assert.InDelta(t, -1, f.Bottom(), epsilon)
	assert.InDelta(t, 2, f.Right(), epsilon)
	assert.InDelta(t, -2, f.Left(), epsilon)
	assert.True(t, common.PerspectiveOffCenter(-2, 2, -1, 1, 1, 100).EqualsEpsilon(f.ProjectionMatrix(), epsilon))

	infinite, ok := f.InfiniteProjectionMatrix()
	require.True(t, ok)
	assert.True(t, common.InfinitePerspectiveOffCenter(-2, 2, -1, 1, 1).EqualsEpsilon(infinite, epsilon))

	shifted := NewPerspectiveFrustum(WithFovy(math.Pi/2), WithNearFar(1, 100), WithOffset(0.5, 0))
	assert.InDelta(t, 1.5, shifted.Right(), epsilon)
	assert.InDelta(t, -0.5, shifted.Left(), epsilon)

	f.SetAspect(1)
	assert.InDelta(t, 1, f.Right(), epsilon)
}

func TestPerspectiveFrustumRejectsBadPlanes(t *testing.T) {
	f := NewPerspectiveFrustum()
	assert.Panics(t, func() { f.SetNearFar(10, 1) })
	assert.Panics(t, func() { NewPerspectiveFrustum(WithFovy(0)) })
}
