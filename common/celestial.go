package common

import "math"

const (
	// AstronomicalUnit is the mean Earth-Sun distance in meters.
	AstronomicalUnit = 149597870700.0

	earthEquatorialRadiusMeters = 6378140.0
	degreesToRadians            = math.Pi / 180
)

// SunPositionInEarthInertialFrame returns the apparent position of the Sun relative to the
// Earth's center, in meters, in the mean equator-of-date inertial frame. The low-precision
// solar theory used here is accurate to about 0.01° for dates within a few centuries of J2000.
//
// Parameters:
//   - date: the instant
//
// Returns:
//   - Cartesian3: the Sun position in meters
func SunPositionInEarthInertialFrame(date JulianDate) Cartesian3 {
	n := date.TotalDays() - J2000DayNumber

	meanLongitude := 280.460 + 0.9856474*n
	meanAnomaly := (357.528 + 0.9856003*n) * degreesToRadians

	eclipticLongitude := (meanLongitude + 1.915*math.Sin(meanAnomaly) + 0.020*math.Sin(2*meanAnomaly)) * degreesToRadians
	obliquity := (23.439 - 0.0000004*n) * degreesToRadians
	distance := (1.00014 - 0.01671*math.Cos(meanAnomaly) - 0.00014*math.Cos(2*meanAnomaly)) * AstronomicalUnit

	return Cartesian3{
		X: distance * math.Cos(eclipticLongitude),
		Y: distance * math.Cos(obliquity) * math.Sin(eclipticLongitude),
		Z: distance * math.Sin(obliquity) * math.Sin(eclipticLongitude),
	}
}

// MoonPositionInEarthInertialFrame returns the position of the Moon relative to the Earth's
// center, in meters, in the mean equator-of-date inertial frame. Accuracy is about 0.3° in
// direction, enough for lighting.
//
// Parameters:
//   - date: the instant
//
// Returns:
//   - Cartesian3: the Moon position in meters
func MoonPositionInEarthInertialFrame(date JulianDate) Cartesian3 {
	t := date.CenturiesSinceJ2000()
	sinDeg := func(deg float64) float64 { return math.Sin(deg * degreesToRadians) }
	cosDeg := func(deg float64) float64 { return math.Cos(deg * degreesToRadians) }

	longitude := 218.32 + 481267.881*t +
		6.29*sinDeg(135.0+477198.87*t) -
		1.27*sinDeg(259.3-413335.36*t) +
		0.66*sinDeg(235.7+890534.22*t) +
		0.21*sinDeg(269.9+954397.74*t) -
		0.19*sinDeg(357.5+35999.05*t) -
		0.11*sinDeg(186.5+966404.03*t)
	latitude := 5.13*sinDeg(93.3+483202.02*t) +
		0.28*sinDeg(228.2+960400.89*t) -
		0.28*sinDeg(318.3+6003.15*t) -
		0.17*sinDeg(217.6-407332.21*t)
	parallax := 0.9508 +
		0.0518*cosDeg(135.0+477198.87*t) +
		0.0095*cosDeg(259.3-413335.36*t) +
		0.0078*cosDeg(235.7+890534.22*t) +
		0.0028*cosDeg(269.9+954397.74*t)

	distance := earthEquatorialRadiusMeters / sinDeg(parallax)
	lambda := longitude * degreesToRadians
	beta := latitude * degreesToRadians
	obliquity := (23.439 - 0.0130042*t) * degreesToRadians

	cosBeta := math.Cos(beta)
	return Cartesian3{
		X: distance * cosBeta * math.Cos(lambda),
		Y: distance * (math.Cos(obliquity)*cosBeta*math.Sin(lambda) - math.Sin(obliquity)*math.Sin(beta)),
		Z: distance * (math.Sin(obliquity)*cosBeta*math.Sin(lambda) + math.Cos(obliquity)*math.Sin(beta)),
	}
}
