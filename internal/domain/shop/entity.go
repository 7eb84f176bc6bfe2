package shop

import "time"

const DefaultCycleStartDay = 1

type Shop struct {
	ID            string
	Name          string
	CycleStartDay *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PayCycleStartDay returns the configured pay day, falling back to the 1st.
func (s Shop) PayCycleStartDay() int {
	if s.CycleStartDay == nil || *s.CycleStartDay < 1 || *s.CycleStartDay > 28 {
		return DefaultCycleStartDay
	}
	return *s.CycleStartDay
}
