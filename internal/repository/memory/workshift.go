package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/workshift"
	"github.com/google/uuid"
)

type ShiftRepository struct {
	store *Store
}

var _ workshift.WorkShiftRepository = (*ShiftRepository)(nil)

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneShift(s workshift.WorkShift) workshift.WorkShift {
	c := s
	c.EndAt = copyTime(s.EndAt)
	c.ActualInAt = copyTime(s.ActualInAt)
	c.ActualOutAt = copyTime(s.ActualOutAt)
	c.ReviewResolvedAt = copyTime(s.ReviewResolvedAt)
	c.ReviewedBy = copyString(s.ReviewedBy)
	c.Memo = copyString(s.Memo)
	c.SettlementID = copyString(s.SettlementID)
	if s.ReviewReason != nil {
		r := *s.ReviewReason
		c.ReviewReason = &r
	}
	if s.FinalPayAmount != nil {
		p := *s.FinalPayAmount
		c.FinalPayAmount = &p
	}
	return c
}

// violatesExclusion emulates the no_overlapping_work_shifts constraint.
func (r *ShiftRepository) violatesExclusion(shift workshift.WorkShift) bool {
	if shift.EndAt == nil || shift.Status == workshift.StatusCanceled {
		return false
	}
	for id, other := range r.store.shifts {
		if id == shift.ID || other.EmployeeID != shift.EmployeeID {
			continue
		}
		if other.Overlaps(shift.StartAt, *shift.EndAt) {
			return true
		}
	}
	return false
}

func (r *ShiftRepository) Create(ctx context.Context, shift workshift.WorkShift) (workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if shift.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return workshift.WorkShift{}, err
		}
		shift.ID = id.String()
	}
	if r.violatesExclusion(shift) {
		return workshift.WorkShift{}, workshift.ErrShiftOverlap
	}
	r.store.shifts[shift.ID] = cloneShift(shift)
	return cloneShift(shift), nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string, shopID string) (workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.shifts[id]
	if !ok || s.ShopID != shopID {
		return workshift.WorkShift{}, workshift.ErrShiftNotFound
	}
	return cloneShift(s), nil
}

func (r *ShiftRepository) FindOverlapping(ctx context.Context, employeeID, shopID string, start, end time.Time, excludeID *string) ([]workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []workshift.WorkShift
	for _, id := range sortedKeys(r.store.shifts) {
		s := r.store.shifts[id]
		if s.EmployeeID != employeeID || s.ShopID != shopID {
			continue
		}
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if s.Overlaps(start, end) {
			result = append(result, cloneShift(s))
		}
	}
	return result, nil
}

func matchesFilter(s workshift.WorkShift, f workshift.Filter) bool {
	if s.ShopID != f.ShopID {
		return false
	}
	if f.EmployeeID != nil && s.EmployeeID != *f.EmployeeID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if s.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && s.StartAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.StartAt.After(*f.To) {
		return false
	}
	if f.Settled != nil && s.IsSettled() != *f.Settled {
		return false
	}
	return true
}

func (r *ShiftRepository) List(ctx context.Context, filter workshift.Filter) ([]workshift.WorkShift, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []workshift.WorkShift
	for _, s := range r.store.shifts {
		if matchesFilter(s, filter) {
			matched = append(matched, cloneShift(s))
		}
	}

	less := func(a, b workshift.WorkShift) bool {
		switch filter.SortBy {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "status":
			return a.Status < b.Status
		case "end_at":
			if a.EndAt == nil || b.EndAt == nil {
				return a.EndAt != nil
			}
			return a.EndAt.Before(*b.EndAt)
		default:
			return a.StartAt.Before(b.StartAt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.SortOrder == "desc" {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *ShiftRepository) Update(ctx context.Context, shift workshift.WorkShift) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.shifts[shift.ID]
	if !ok || existing.ShopID != shift.ShopID {
		return workshift.ErrShiftNotFound
	}
	if r.violatesExclusion(shift) {
		return workshift.ErrShiftOverlap
	}
	r.store.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id string, shopID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.shifts[id]
	if !ok || s.ShopID != shopID {
		return workshift.ErrShiftNotFound
	}
	delete(r.store.shifts, id)
	return nil
}

func (r *ShiftRepository) GetOpenAttendance(ctx context.Context, employeeID string) (workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range sortedKeys(r.store.shifts) {
		s := r.store.shifts[id]
		if s.EmployeeID == employeeID && s.IsOpenAttendance() {
			return cloneShift(s), nil
		}
	}
	return workshift.WorkShift{}, workshift.ErrShiftNotFound
}

func (r *ShiftRepository) FindClockInCandidate(ctx context.Context, employeeID, shopID string, at time.Time, earlyWindow time.Duration) (workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var best *workshift.WorkShift
	for _, s := range r.store.shifts {
		if s.EmployeeID != employeeID || s.ShopID != shopID {
			continue
		}
		if s.Status != workshift.StatusScheduled || s.HasAttendance() || s.IsSettled() || s.EndAt == nil {
			continue
		}
		if at.Before(s.StartAt.Add(-earlyWindow)) || at.After(*s.EndAt) {
			continue
		}
		if best == nil || s.StartAt.Before(best.StartAt) {
			c := cloneShift(s)
			best = &c
		}
	}
	if best == nil {
		return workshift.WorkShift{}, workshift.ErrShiftNotFound
	}
	return *best, nil
}

func matchesSweep(s workshift.WorkShift, kind workshift.SweepKind, cutoff workshift.SweepCutoff) bool {
	if s.IsSettled() || !s.Status.IsOpen() || s.ActualOutAt != nil {
		return false
	}
	if kind == workshift.SweepMissingClockOut {
		if s.ActualInAt == nil {
			return false
		}
		if s.EndAt == nil {
			return s.ActualInAt.Before(cutoff.OpenedBefore)
		}
		return s.EndAt.Before(cutoff.EndedBefore)
	}
	return s.ActualInAt == nil && s.EndAt != nil && s.EndAt.Before(cutoff.EndedBefore)
}

func (r *ShiftRepository) ListStaleIDs(ctx context.Context, kind workshift.SweepKind, cutoff workshift.SweepCutoff, afterID string, limit int) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var ids []string
	for _, id := range sortedKeys(r.store.shifts) {
		if id <= afterID {
			continue
		}
		if matchesSweep(r.store.shifts[id], kind, cutoff) {
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (r *ShiftRepository) EscalateToReview(ctx context.Context, ids []string, kind workshift.SweepKind, cutoff workshift.SweepCutoff, at time.Time) ([]string, error) {
	if hook := r.store.EscalateHook; hook != nil {
		if err := hook(ids); err != nil {
			return nil, err
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var escalated []string
	reason := kind.Reason()
	for _, id := range ids {
		s, ok := r.store.shifts[id]
		if !ok || !matchesSweep(s, kind, cutoff) {
			continue
		}
		rr := reason
		s.Status = workshift.StatusReview
		s.ReviewReason = &rr
		s.ReviewResolvedAt = nil
		s.UpdatedAt = at
		r.store.shifts[id] = s
		escalated = append(escalated, id)
	}
	return escalated, nil
}

func (r *ShiftRepository) ListSettleable(ctx context.Context, employeeID, shopID string, start, end time.Time) ([]workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []workshift.WorkShift
	for _, s := range r.store.shifts {
		if s.EmployeeID != employeeID || s.ShopID != shopID {
			continue
		}
		if s.Status != workshift.StatusCompleted || s.IsSettled() {
			continue
		}
		if s.StartAt.Before(start) || s.StartAt.After(end) {
			continue
		}
		result = append(result, cloneShift(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (r *ShiftRepository) ListBySettlement(ctx context.Context, settlementID string) ([]workshift.WorkShift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []workshift.WorkShift
	for _, s := range r.store.shifts {
		if s.SettlementID != nil && *s.SettlementID == settlementID {
			result = append(result, cloneShift(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (r *ShiftRepository) LinkSettlement(ctx context.Context, ids []string, settlementID string, at time.Time) (int64, error) {
	if hook := r.store.LinkHook; hook != nil {
		if err := hook(ids); err != nil {
			return 0, err
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, id := range ids {
		s, ok := r.store.shifts[id]
		if !ok || s.IsSettled() {
			continue
		}
		sid := settlementID
		s.SettlementID = &sid
		s.UpdatedAt = at
		r.store.shifts[id] = s
		n++
	}
	return n, nil
}

func (r *ShiftRepository) SumByEmployee(ctx context.Context, shopID string, start, end time.Time) ([]workshift.EmployeeShiftTotals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	totals := make(map[string]*workshift.EmployeeShiftTotals)
	for _, s := range r.store.shifts {
		if s.ShopID != shopID || s.StartAt.Before(start) || s.StartAt.After(end) {
			continue
		}
		t, ok := totals[s.EmployeeID]
		if !ok {
			t = &workshift.EmployeeShiftTotals{EmployeeID: s.EmployeeID}
			totals[s.EmployeeID] = t
		}
		if s.Status != workshift.StatusCanceled {
			t.PlannedShifts++
		}
		if s.Status == workshift.StatusReview && s.ReviewReason != nil && *s.ReviewReason == workshift.ReviewReasonNoAttendance {
			t.NoAttendanceShifts++
		}
		if s.Status == workshift.StatusCompleted {
			t.CompletedShifts++
			t.WorkedMinutes += s.WorkedMinutes
			if s.FinalPayAmount != nil {
				t.GrossPay += *s.FinalPayAmount
			}
		}
	}

	result := make([]workshift.EmployeeShiftTotals, 0, len(totals))
	for _, id := range sortedKeys(totals) {
		result = append(result, *totals[id])
	}
	return result, nil
}
