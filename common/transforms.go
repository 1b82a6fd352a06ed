package common

import "math"

// EastNorthUpToFixedFrame returns the transform from a local east-north-up frame centered
// at origin into the ellipsoid's fixed frame. At the poles east is chosen as +Y.
//
// Parameters:
//   - origin: the local frame origin in the fixed frame
//   - e: the ellipsoid used to compute the surface normal
//
// Returns:
//   - Matrix4: columns east, north, up, origin
func EastNorthUpToFixedFrame(origin Cartesian3, e Ellipsoid) Matrix4 {
	var east, north, up Cartesian3
	if math.Abs(origin.X) < Epsilon12 && math.Abs(origin.Y) < Epsilon12 {
		sign := 1.0
		if origin.Z < 0 {
			sign = -1
		}
		east = Cartesian3{0, 1, 0}
		north = Cartesian3{-sign, 0, 0}
		up = Cartesian3{0, 0, sign}
	} else {
		up = e.GeodeticSurfaceNormal(origin)
		east = Cartesian3{-origin.Y, origin.X, 0}.Normalize()
		north = up.Cross(east)
	}
	return Matrix4{
		east.X, east.Y, east.Z, 0,
		north.X, north.Y, north.Z, 0,
		up.X, up.Y, up.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	}
}

// GMST polynomial terms (seconds) and Earth rotation rate used by
// ComputeTemeToPseudoFixedMatrix. UTC stands in for UT1.
const (
	gmstConstant0       = 6*3600 + 41*60 + 50.54841
	gmstConstant1       = 8640184.812866
	gmstConstant2       = 0.093104
	gmstConstant3       = -6.2e-6
	rateCoefficient     = 1.1772758384668e-19
	wgs84WRPrecessing   = 7.2921158553e-5
	twoPiOverSecondsDay = TwoPi / SecondsPerDay
)

// ComputeTemeToPseudoFixedMatrix returns the rotation from the True Equator Mean Equinox
// inertial frame to a pseudo-fixed frame that ignores polar motion. The rotation is about
// +Z by the Greenwich hour angle.
//
// Parameters:
//   - date: the instant
//
// Returns:
//   - Matrix3: the TEME to pseudo-fixed rotation
func ComputeTemeToPseudoFixedMatrix(date JulianDate) Matrix3 {
	dayNumber := date.DayNumber
	secondsIntoDay := date.SecondsOfDay

	diffDays := float64(dayNumber - J2000DayNumber)
	var t float64
	if secondsIntoDay >= 43200.0 {
		t = (diffDays + 0.5) / DaysPerJulianCentury
	} else {
		t = (diffDays - 0.5) / DaysPerJulianCentury
	}

	gmst0 := gmstConstant0 + t*(gmstConstant1+t*(gmstConstant2+t*gmstConstant3))
	angle := math.Mod(gmst0*twoPiOverSecondsDay, TwoPi)
	ratio := wgs84WRPrecessing + rateCoefficient*(float64(dayNumber)-2451545.5)
	secondsSinceMidnight := math.Mod(secondsIntoDay+SecondsPerDay*0.5, SecondsPerDay)
	gha := angle + ratio*secondsSinceMidnight

	cosGha := math.Cos(gha)
	sinGha := math.Sin(gha)

	// rows (cos, sin, 0), (-sin, cos, 0), (0, 0, 1)
	return Matrix3{
		cosGha, -sinGha, 0,
		sinGha, cosGha, 0,
		0, 0, 1,
	}
}
