package attendance

import (
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
)

const (
	// DailyThresholdMinutes is the worked time per civil day beyond which
	// minutes are reported as extra.
	DailyThresholdMinutes = 480
	ExtraBucketMinutes    = 30
)

// Policy holds the real-time attendance tolerances.
type Policy struct {
	Grace       time.Duration
	EarlyWindow time.Duration
}

// PayableMinutes returns the minutes of [in, out] that fall inside the
// planned window [start, end]. A clock-in up to Grace after start counts from
// start and a clock-out up to Grace before end counts to end.
func (p Policy) PayableMinutes(in, out, start, end time.Time) int {
	if p.Grace > 0 {
		if in.After(start) && !in.After(start.Add(p.Grace)) {
			in = start
		}
		if out.Before(end) && !out.Before(end.Add(-p.Grace)) {
			out = end
		}
	}
	return kst.IntersectMinutes(in, out, start, end)
}

// CalcExtraMinutes returns the minutes beyond the daily threshold, rounded
// down to 30-minute buckets. The value is informational and never paid.
func CalcExtraMinutes(workedMinutes int) int {
	extra := workedMinutes - DailyThresholdMinutes
	if extra <= 0 {
		return 0
	}
	return extra / ExtraBucketMinutes * ExtraBucketMinutes
}
