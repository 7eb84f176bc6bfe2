package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a valid, unrevoked access token and
// stores the caller's Actor in the request context. It runs after
// jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			claims, err := jwtService.ParseAccessClaims(token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			revoked, err := jwtService.IsTokenRevoked(r.Context(), jwtauth.TokenFromHeader(r))
			if err != nil {
				slog.Error("Failed to check token revocation", "error", err)
				response.InternalServerError(w, "Failed to verify token")
				return
			}
			if revoked {
				response.HandleError(w, user.ErrTokenRevoked)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}

// WithActor is used by tests that exercise handlers without a token.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}
