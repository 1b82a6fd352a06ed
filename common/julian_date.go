package common

import (
	"math"
	"time"
)

const (
	// SecondsPerDay is the number of seconds in a Julian day.
	SecondsPerDay = 86400.0
	// DaysPerJulianCentury is the number of days in a Julian century.
	DaysPerJulianCentury = 36525.0
	// J2000DayNumber is the Julian day number of the J2000 epoch (2000-01-01T12:00:00).
	J2000DayNumber = 2451545

	unixEpochJulianDay = 2440587.5
)

// JulianDate is an instant expressed as a whole Julian day number plus seconds into that
// day. Julian days start at noon. Leap seconds are not modeled; times are treated as UTC.
type JulianDate struct {
	DayNumber    int
	SecondsOfDay float64
}

// JulianDateFromTime converts a wall-clock time to a JulianDate.
//
// Parameters:
//   - t: the instant to convert
//
// Returns:
//   - JulianDate: the normalized Julian date
func JulianDateFromTime(t time.Time) JulianDate {
	t = t.UTC()
	seconds := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	days := seconds/SecondsPerDay + unixEpochJulianDay
	whole := math.Floor(days)
	return JulianDate{
		DayNumber:    int(whole),
		SecondsOfDay: (days - whole) * SecondsPerDay,
	}.normalize()
}

// NewJulianDate builds a normalized JulianDate from a day number and seconds of day.
func NewJulianDate(dayNumber int, secondsOfDay float64) JulianDate {
	return JulianDate{DayNumber: dayNumber, SecondsOfDay: secondsOfDay}.normalize()
}

// TotalDays returns the date as a fractional Julian day.
func (j JulianDate) TotalDays() float64 {
	return float64(j.DayNumber) + j.SecondsOfDay/SecondsPerDay
}

// CenturiesSinceJ2000 returns the number of Julian centuries elapsed since J2000.
func (j JulianDate) CenturiesSinceJ2000() float64 {
	return (j.TotalDays() - J2000DayNumber) / DaysPerJulianCentury
}

// AddSeconds returns j advanced by the given number of seconds.
func (j JulianDate) AddSeconds(seconds float64) JulianDate {
	return JulianDate{DayNumber: j.DayNumber, SecondsOfDay: j.SecondsOfDay + seconds}.normalize()
}

func (j JulianDate) normalize() JulianDate {
	extra := math.Floor(j.SecondsOfDay / SecondsPerDay)
	j.DayNumber += int(extra)
	j.SecondsOfDay -= extra * SecondsPerDay
	return j
}
