package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyClockedIn  = errors.New("you already have an open attendance record")
	ErrNotClockedIn      = errors.New("you have no open attendance record")
	ErrShiftNotClockable = errors.New("shift cannot accept a clock-in")
)
