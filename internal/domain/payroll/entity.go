package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/shop"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/kst"
	"github.com/shopspring/decimal"
)

// Settlement is the write-once payroll snapshot of one employee for one
// cycle. Amounts are whole currency units.
type Settlement struct {
	ID             string
	ShopID         string
	EmployeeID     string
	CycleStart     time.Time
	CycleEnd       time.Time
	WorkedMinutes  int
	BasePay        int64
	TotalPay       int64
	IncomeTax      int64
	LocalIncomeTax int64
	OtherTax       int64
	NetPay         int64
	SettledAt      time.Time
	ProcessedBy    string
	Note           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Withheld returns the sum of the tax components.
func (s Settlement) Withheld() int64 {
	return s.IncomeTax + s.LocalIncomeTax + s.OtherTax
}

// Cycle is a pay period resolved to inclusive instants.
type Cycle struct {
	Year     int
	Month    time.Month
	StartDay int
	Start    time.Time
	End      time.Time
}

func NewCycle(year int, month time.Month, startDay int) (Cycle, error) {
	start, end, err := kst.CycleRange(year, month, startDay)
	if err != nil {
		return Cycle{}, ErrInvalidCycle
	}
	return Cycle{Year: year, Month: month, StartDay: startDay, Start: start, End: end}, nil
}

// ResolveCycle turns a requested period into cycle instants, falling back to
// the shop's pay day when no start day is given.
func ResolveCycle(ctx context.Context, shops shop.ShopRepository, shopID string, period CyclePeriod) (Cycle, error) {
	var startDay int
	if period.CycleStartDay != nil {
		startDay = *period.CycleStartDay
	} else {
		s, err := shops.GetByID(ctx, shopID)
		if err != nil {
			return Cycle{}, err
		}
		startDay = s.PayCycleStartDay()
	}
	return NewCycle(period.Year, time.Month(period.Month), startDay)
}

// Previous returns the cycle immediately before c with the same start day.
func (c Cycle) Previous() Cycle {
	y, m := kst.PreviousMonth(c.Year, c.Month)
	prev, _ := NewCycle(y, m, c.StartDay)
	return prev
}

// TaxRates configures freelancer withholding.
type TaxRates struct {
	IncomeRate        decimal.Decimal
	LocalRateOnIncome decimal.Decimal
	OtherRate         decimal.Decimal
}

func DefaultTaxRates() TaxRates {
	return TaxRates{
		IncomeRate:        decimal.RequireFromString("0.03"),
		LocalRateOnIncome: decimal.RequireFromString("0.10"),
		OtherRate:         decimal.Zero,
	}
}

type Withholding struct {
	Gross          int64
	IncomeTax      int64
	LocalIncomeTax int64
	OtherTax       int64
	NetPay         int64
}

func (w Withholding) Total() int64 {
	return w.IncomeTax + w.LocalIncomeTax + w.OtherTax
}

// Withhold floors every component to whole units before summing.
func (r TaxRates) Withhold(gross int64) Withholding {
	g := decimal.NewFromInt(gross)
	incomeTax := g.Mul(r.IncomeRate).Floor()
	localTax := incomeTax.Mul(r.LocalRateOnIncome).Floor()
	otherTax := g.Mul(r.OtherRate).Floor()

	w := Withholding{
		Gross:          gross,
		IncomeTax:      incomeTax.IntPart(),
		LocalIncomeTax: localTax.IntPart(),
		OtherTax:       otherTax.IntPart(),
	}
	w.NetPay = gross - w.Total()
	return w
}

// NoWithholding passes gross through untaxed.
func NoWithholding(gross int64) Withholding {
	return Withholding{Gross: gross, NetPay: gross}
}

type SkipReason string

const (
	SkipAlreadySettled    SkipReason = "ALREADY_SETTLED"
	SkipNoConfirmedShifts SkipReason = "NO_CONFIRMED_SHIFTS"
	SkipNoPay             SkipReason = "NO_PAY"
	SkipNoPayUnit         SkipReason = "NO_PAYUNIT"
	SkipError             SkipReason = "ERROR"
)
