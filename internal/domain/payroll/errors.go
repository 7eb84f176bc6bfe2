package payroll

import "errors"

var (
	ErrSettlementNotFound   = errors.New("payroll settlement not found")
	ErrAlreadySettled       = errors.New("a settlement already exists for this employee and cycle")
	ErrNoConfirmedShifts    = errors.New("no completed hourly shifts to settle in this cycle")
	ErrNoPay                = errors.New("employee has no positive monthly pay configured")
	ErrNoPayUnit            = errors.New("employee has no pay unit configured")
	ErrInvalidCycle         = errors.New("invalid pay cycle")
	ErrConcurrentSettlement = errors.New("shifts were claimed by another settlement")
)

// SkipReasonFor classifies an error raised while settling one employee in a
// bulk run.
func SkipReasonFor(err error) SkipReason {
	switch {
	case errors.Is(err, ErrAlreadySettled):
		return SkipAlreadySettled
	case errors.Is(err, ErrNoConfirmedShifts):
		return SkipNoConfirmedShifts
	case errors.Is(err, ErrNoPay):
		return SkipNoPay
	case errors.Is(err, ErrNoPayUnit):
		return SkipNoPayUnit
	default:
		return SkipError
	}
}
