package uniform

import (
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
)

// view2Dto3D builds the 3D view matrix equivalent to a 2D or Columbus View camera.
//
// The camera vectors arrive in the 2D axis convention (X up out of the map, Y east, Z north)
// and are permuted into local east-north-up axes. The position is unprojected through the map
// projection to a point on the ellipsoid, and the ENU frame at that point rotates the
// directions into the fixed frame. The camera may travel outside the projection's domain,
// so the unprojected longitude and latitude are clamped to their valid ranges.
func view2Dto3D(position2D, direction2D, right2D, up2D common.Cartesian3, frustum2DWidth float64, mode SceneMode, projection common.MapProjection) common.Matrix4 {
	p := common.Cartesian3{X: position2D.Y, Y: position2D.Z, Z: position2D.X}
	r := common.Cartesian3{X: right2D.Y, Y: right2D.Z, Z: right2D.X}
	u := common.Cartesian3{X: up2D.Y, Y: up2D.Z, Z: up2D.X}
	d := common.Cartesian3{X: direction2D.Y, Y: direction2D.Z, Z: direction2D.X}

	// the 2D camera sits at a fixed height; its apparent height is half the frustum width
	if mode == SceneMode2D {
		p.Z = frustum2DWidth * 0.5
	}

	carto := projection.Unproject(p)
	carto.Longitude = common.Clamp(carto.Longitude, -math.Pi, math.Pi)
	carto.Latitude = common.Clamp(carto.Latitude, -common.PiOverTwo, common.PiOverTwo)
	ellipsoid := projection.Ellipsoid()
	position3D := ellipsoid.CartographicToCartesian(carto)

	enuToFixed := common.EastNorthUpToFixedFrame(position3D, ellipsoid)
	r = enuToFixed.MultiplyByPointAsVector(r)
	u = enuToFixed.MultiplyByPointAsVector(u)
	d = enuToFixed.MultiplyByPointAsVector(d)

	return common.Matrix4{
		r.X, u.X, -d.X, 0,
		r.Y, u.Y, -d.Y, 0,
		r.Z, u.Z, -d.Z, 0,
		-r.Dot(position3D), -u.Dot(position3D), d.Dot(position3D), 1,
	}
}
