// Package kst implements civil-time arithmetic for a fixed UTC+9 offset.
//
// Every instant handled by the service is a UTC time.Time. Day, month and
// pay-cycle boundaries are civil (KST) boundaries and are derived by shifting
// by a constant nine hours; no DST rules apply.
package kst

import (
	"errors"
	"time"
)

const (
	Offset = 9 * time.Hour

	// DateLayout is the civil date format used in reports and exports.
	DateLayout = "2006-01-02"
)

// Location is the fixed KST zone used for rendering instants.
var Location = time.FixedZone("KST", int(Offset/time.Second))

var ErrInvalidCycleStartDay = errors.New("cycle start day must be between 1 and 28")

// FromCivil returns the instant of the given KST wall-clock time.
// Out-of-range values are normalised the way time.Date normalises them.
func FromCivil(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).Add(-Offset)
}

// ToCivil renders t in KST.
func ToCivil(t time.Time) time.Time {
	return t.In(Location)
}

// CivilDate returns the KST calendar date containing t.
func CivilDate(t time.Time) string {
	return ToCivil(t).Format(DateLayout)
}

// StartOfDay returns the instant of KST 00:00 on the civil day containing t.
func StartOfDay(t time.Time) time.Time {
	c := t.UTC().Add(Offset)
	return FromCivil(c.Year(), c.Month(), c.Day(), 0, 0)
}

// EndOfDay returns the last millisecond of the civil day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// MonthRange returns the inclusive bounds of a civil month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := FromCivil(year, month, 1, 0, 0)
	end := FromCivil(year, month+1, 1, 0, 0).Add(-time.Millisecond)
	return start, end
}

// CycleRange returns the inclusive bounds of the pay cycle that opens on
// startDay of the given month and closes the millisecond before startDay of
// the following month.
func CycleRange(year int, month time.Month, startDay int) (time.Time, time.Time, error) {
	if startDay < 1 || startDay > 28 {
		return time.Time{}, time.Time{}, ErrInvalidCycleStartDay
	}
	start := FromCivil(year, month, startDay, 0, 0)
	end := FromCivil(year, month+1, startDay, 0, 0).Add(-time.Millisecond)
	return start, end, nil
}

// PreviousMonth returns the year and month preceding the given one.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// IntersectMinutes returns the whole minutes shared by [aStart, aEnd] and
// [bStart, bEnd], or 0 when they do not intersect.
func IntersectMinutes(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return ElapsedMinutes(start, end)
}

// ElapsedMinutes returns the whole minutes from "from" to "to", clamped to 0.
func ElapsedMinutes(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / time.Minute)
}
