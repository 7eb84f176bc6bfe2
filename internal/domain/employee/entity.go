package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayUnit string

const (
	PayUnitHourly  PayUnit = "HOURLY"
	PayUnitMonthly PayUnit = "MONTHLY"
)

func (u PayUnit) IsValid() bool {
	switch u {
	case PayUnitHourly, PayUnitMonthly:
		return true
	}
	return false
}

type Employee struct {
	ID        string
	ShopID    string
	FullName  string
	PayUnit   *PayUnit
	Pay       *decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckActive rejects employees that can no longer be scheduled or clock in.
func (e Employee) CheckActive() error {
	if !e.IsActive {
		return ErrEmployeeInactive
	}
	return nil
}

// PayProfile is the read-only pay view consumed by payroll.
type PayProfile struct {
	EmployeeID string
	PayUnit    *PayUnit
	Pay        decimal.Decimal
}

func (e Employee) PayProfile() PayProfile {
	p := PayProfile{EmployeeID: e.ID, PayUnit: e.PayUnit, Pay: decimal.Zero}
	if e.Pay != nil {
		p.Pay = *e.Pay
	}
	return p
}

func (p PayProfile) IsHourly() bool {
	return p.PayUnit != nil && *p.PayUnit == PayUnitHourly
}

func (p PayProfile) IsMonthly() bool {
	return p.PayUnit != nil && *p.PayUnit == PayUnitMonthly
}

// PayForMinutes returns round(minutes / 60 * rate) in whole currency units.
func (p PayProfile) PayForMinutes(minutes int) int64 {
	return decimal.NewFromInt(int64(minutes)).
		Mul(p.Pay).
		Div(decimal.NewFromInt(60)).
		Round(0).
		IntPart()
}

// MonthlyPay returns the flat monthly amount rounded to whole units.
func (p PayProfile) MonthlyPay() int64 {
	return p.Pay.Round(0).IntPart()
}
