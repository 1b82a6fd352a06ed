package common

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const j2000Gmst = 280.46061837 * degreesToRadians

func TestJulianDateFromTime(t *testing.T) {
	assert.Equal(t, JulianDate{DayNumber: J2000DayNumber}, JulianDateFromTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)))

	epoch := JulianDateFromTime(time.Unix(0, 0))
	assert.Equal(t, 2440587, epoch.DayNumber)
	assert.InDelta(t, 43200, epoch.SecondsOfDay, 1e-6)

	back := NewJulianDate(J2000DayNumber, 0).AddSeconds(-1)
	assert.Equal(t, J2000DayNumber-1, back.DayNumber)
	assert.InDelta(t, SecondsPerDay-1, back.SecondsOfDay, 1e-9)
	assert.InDelta(t, -1/DaysPerJulianCentury, NewJulianDate(J2000DayNumber-1, 0).CenturiesSinceJ2000(), 1e-15)
}

func TestTemeToPseudoFixedAtJ2000(t *testing.T) {
	m := ComputeTemeToPseudoFixedMatrix(NewJulianDate(J2000DayNumber, 0))

	// The inertial x axis points at the equinox, which sits at longitude -GMST.
	equinox := m.MultiplyByVector(Cartesian3{X: 1})
	assert.True(t, equinox.EqualsEpsilon(Cartesian3{X: math.Cos(j2000Gmst), Y: -math.Sin(j2000Gmst)}, 1e-9), "%+v", equinox)
	assert.Equal(t, Cartesian3{Z: 1}, m.MultiplyByVector(Cartesian3{Z: 1}))

	product := m.Multiply(m.Transpose())
	identity := Identity3()
	assert.InDeltaSlice(t, identity[:], product[:], 1e-12)
}

func TestTemeToPseudoFixedAdvancesWithSiderealRate(t *testing.T) {
	at := func(seconds float64) float64 {
		v := ComputeTemeToPseudoFixedMatrix(NewJulianDate(J2000DayNumber, seconds)).MultiplyByVector(Cartesian3{X: 1})
		return -math.Atan2(v.Y, v.X)
	}
	step := math.Mod(at(3600)-at(0)+TwoPi, TwoPi)
	assert.InDelta(t, 15.0410686*degreesToRadians, step, 1e-7)
}

func TestSunPositionAtSolsticesAndEquinox(t *testing.T) {
	tests := []struct {
		name        string
		when        time.Time
		declination float64
		ascension   float64
	}{
		{"june solstice", time.Date(2026, 6, 21, 8, 24, 0, 0, time.UTC), 23.44, 90},
		{"march equinox", time.Date(2026, 3, 20, 14, 46, 0, 0, time.UTC), 0, 0},
		{"december solstice", time.Date(2026, 12, 21, 20, 50, 0, 0, time.UTC), -23.44, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := SunPositionInEarthInertialFrame(JulianDateFromTime(tt.when))
			dir := sun.Normalize()
			assert.InDelta(t, tt.declination, math.Asin(dir.Z)/degreesToRadians, 0.05)
			assert.InDelta(t, tt.ascension, math.Atan2(dir.Y, dir.X)/degreesToRadians, 0.05)
			assert.InDelta(t, 1, sun.Magnitude()/AstronomicalUnit, 0.02)
		})
	}
}

func TestMoonPositionDistance(t *testing.T) {
	for day := range 30 {
		moon := MoonPositionInEarthInertialFrame(NewJulianDate(J2000DayNumber+day, 0))
		assert.InDelta(t, 384400e3, moon.Magnitude(), 30000e3, "day %d", day)
	}
}
