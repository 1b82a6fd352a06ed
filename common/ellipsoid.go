package common

import "math"

// Cartographic is a position given by longitude and latitude in radians and height in meters
// above the ellipsoid surface.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// Ellipsoid is a triaxial ellipsoid centered at the origin of a fixed frame.
type Ellipsoid struct {
	Radii               Cartesian3
	RadiiSquared        Cartesian3
	OneOverRadii        Cartesian3
	OneOverRadiiSquared Cartesian3
	CenterToleranceSq   float64
}

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

// NewEllipsoid creates an Ellipsoid from its three radii in meters.
//
// Parameters:
//   - x, y, z: the radii along each axis
//
// Returns:
//   - Ellipsoid: the ellipsoid with its derived reciprocal terms populated
func NewEllipsoid(x, y, z float64) Ellipsoid {
	if x < 0 || y < 0 || z < 0 {
		panic(NewPreconditionError("ellipsoid radii must be non-negative, got (%g, %g, %g)", x, y, z))
	}
	inv := func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return 1 / v
	}
	return Ellipsoid{
		Radii:               Cartesian3{x, y, z},
		RadiiSquared:        Cartesian3{x * x, y * y, z * z},
		OneOverRadii:        Cartesian3{inv(x), inv(y), inv(z)},
		OneOverRadiiSquared: Cartesian3{inv(x * x), inv(y * y), inv(z * z)},
		CenterToleranceSq:   0.1,
	}
}

// MaximumRadius returns the largest of the three radii.
func (e Ellipsoid) MaximumRadius() float64 {
	return math.Max(e.Radii.X, math.Max(e.Radii.Y, e.Radii.Z))
}

// GeodeticSurfaceNormalCartographic returns the outward unit normal at the given longitude
// and latitude.
func (e Ellipsoid) GeodeticSurfaceNormalCartographic(c Cartographic) Cartesian3 {
	cosLat := math.Cos(c.Latitude)
	return Cartesian3{
		cosLat * math.Cos(c.Longitude),
		cosLat * math.Sin(c.Longitude),
		math.Sin(c.Latitude),
	}.Normalize()
}

// GeodeticSurfaceNormal returns the outward unit normal of the surface through p.
func (e Ellipsoid) GeodeticSurfaceNormal(p Cartesian3) Cartesian3 {
	return p.MultiplyComponents(e.OneOverRadiiSquared).Normalize()
}

// CartographicToCartesian converts a cartographic position into the fixed frame.
func (e Ellipsoid) CartographicToCartesian(c Cartographic) Cartesian3 {
	n := e.GeodeticSurfaceNormalCartographic(c)
	k := e.RadiiSquared.MultiplyComponents(n)
	gamma := math.Sqrt(n.Dot(k))
	k = k.MultiplyByScalar(1 / gamma)
	return k.Add(n.MultiplyByScalar(c.Height))
}

// ScaleToGeodeticSurface projects p along the geodetic normal onto the surface. The second
// return value is false when p is too close to the center for the projection to converge.
func (e Ellipsoid) ScaleToGeodeticSurface(p Cartesian3) (Cartesian3, bool) {
	x2 := p.X * p.X * e.OneOverRadiiSquared.X
	y2 := p.Y * p.Y * e.OneOverRadiiSquared.Y
	z2 := p.Z * p.Z * e.OneOverRadiiSquared.Z

	squaredNorm := x2 + y2 + z2
	ratio := math.Sqrt(1 / squaredNorm)
	intersection := p.MultiplyByScalar(ratio)

	if squaredNorm < e.CenterToleranceSq {
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			return Cartesian3{}, false
		}
		return intersection, true
	}

	gradient := Cartesian3{
		intersection.X * e.OneOverRadiiSquared.X * 2,
		intersection.Y * e.OneOverRadiiSquared.Y * 2,
		intersection.Z * e.OneOverRadiiSquared.Z * 2,
	}
	lambda := (1 - ratio) * p.Magnitude() / (0.5 * gradient.Magnitude())
	correction := 0.0

	var xMul, yMul, zMul float64
	for {
		lambda -= correction

		xMul = 1 / (1 + lambda*e.OneOverRadiiSquared.X)
		yMul = 1 / (1 + lambda*e.OneOverRadiiSquared.Y)
		zMul = 1 / (1 + lambda*e.OneOverRadiiSquared.Z)

		xMul2, yMul2, zMul2 := xMul*xMul, yMul*yMul, zMul*zMul
		xMul3, yMul3, zMul3 := xMul2*xMul, yMul2*yMul, zMul2*zMul

		fn := x2*xMul2 + y2*yMul2 + z2*zMul2 - 1
		denominator := x2*xMul3*e.OneOverRadiiSquared.X + y2*yMul3*e.OneOverRadiiSquared.Y + z2*zMul3*e.OneOverRadiiSquared.Z
		derivative := -2 * denominator
		correction = fn / derivative

		if math.Abs(fn) <= Epsilon12 {
			break
		}
	}
	return Cartesian3{p.X * xMul, p.Y * yMul, p.Z * zMul}, true
}

// CartesianToCartographic converts a fixed-frame position to cartographic coordinates. The
// second return value is false when p is at (or extremely near) the ellipsoid center.
func (e Ellipsoid) CartesianToCartographic(p Cartesian3) (Cartographic, bool) {
	surface, ok := e.ScaleToGeodeticSurface(p)
	if !ok {
		return Cartographic{}, false
	}
	n := e.GeodeticSurfaceNormal(surface)
	h := p.Subtract(surface)
	height := h.Magnitude()
	if h.Dot(p) < 0 {
		height = -height
	}
	return Cartographic{
		Longitude: math.Atan2(n.Y, n.X),
		Latitude:  math.Asin(Clamp(n.Z, -1, 1)),
		Height:    height,
	}, true
}
