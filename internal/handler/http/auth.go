package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthHandler covers the token lifecycle this service owns. Tokens are issued
// elsewhere; this service only revokes them.
type AuthHandler interface {
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{jwtService: jwtService}
}

// Logout revokes the bearer token until it expires.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	if err := h.jwtService.RevokeToken(r.Context(), jwtauth.TokenFromHeader(r), token.Expiration()); err != nil {
		slog.Error("Failed to revoke token", "error", err)
		response.InternalServerError(w, "Failed to logout")
		return
	}

	response.SuccessWithMessage(w, "Logged out successfully", nil)
}

type meResponse struct {
	UserID     string  `json:"user_id"`
	ShopID     string  `json:"shop_id"`
	EmployeeID *string `json:"employee_id"`
	IsAdmin    bool    `json:"is_admin"`
}

// Me returns the caller resolved from the access token.
func (h *authHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	response.Success(w, meResponse{
		UserID:     actor.UserID,
		ShopID:     actor.ShopID,
		EmployeeID: actor.EmployeeID,
		IsAdmin:    actor.IsAdmin,
	})
}
