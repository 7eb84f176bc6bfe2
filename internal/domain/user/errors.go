package user

import "errors"

var (
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrShopIDRequired         = errors.New("shop ID is required")
	ErrEmployeeIDRequired     = errors.New("employee ID is required")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenRevoked           = errors.New("token revoked")
)
