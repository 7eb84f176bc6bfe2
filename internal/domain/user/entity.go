package user

// Actor is the authenticated caller of a service operation. Handlers build it
// from verified token claims; services never read request state directly.
type Actor struct {
	UserID     string
	ShopID     string
	EmployeeID *string
	IsAdmin    bool
}

// OwnsEmployee reports whether the actor is the given employee.
func (a Actor) OwnsEmployee(employeeID string) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}

// RequireEmployee returns the actor's employee id, or ErrEmployeeIDRequired
// when the caller is not linked to an employee record.
func (a Actor) RequireEmployee() (string, error) {
	if a.EmployeeID == nil || *a.EmployeeID == "" {
		return "", ErrEmployeeIDRequired
	}
	return *a.EmployeeID, nil
}

// RequireAdmin returns ErrAdminPrivilegeRequired for non-admin callers.
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin {
		return ErrAdminPrivilegeRequired
	}
	return nil
}
