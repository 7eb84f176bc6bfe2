package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID     string
	ShopID     string
	EmployeeID *string
	IsAdmin    bool
}

// Actor converts verified claims into the service-layer caller.
func (c AccessClaims) Actor() user.Actor {
	return user.Actor{
		UserID:     c.UserID,
		ShopID:     c.ShopID,
		EmployeeID: c.EmployeeID,
		IsAdmin:    c.IsAdmin,
	}
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	// ParseAccessClaims validates the claim set of a decoded token.
	ParseAccessClaims(token jwt.Token) (AccessClaims, error)
	RevokeToken(ctx context.Context, token string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	store                 TokenStore
	now                   func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration, store TokenStore) *JWTService {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		store:                 store,
		now:                   time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"shop_id":     claims.ShopID,
		"employee_id": returnValueOrNil(claims.EmployeeID),
		"is_admin":    claims.IsAdmin,
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseAccessClaims(token jwt.Token) (AccessClaims, error) {
	if token == nil {
		return AccessClaims{}, user.ErrInvalidToken
	}
	claims := token.PrivateClaims()

	if t, _ := claims["type"].(string); t != TokenTypeAccess {
		return AccessClaims{}, fmt.Errorf("%w: unexpected token type %q", user.ErrInvalidToken, t)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return AccessClaims{}, fmt.Errorf("%w: missing user_id", user.ErrInvalidToken)
	}
	shopID, _ := claims["shop_id"].(string)
	if shopID == "" {
		return AccessClaims{}, user.ErrShopIDRequired
	}

	out := AccessClaims{UserID: userID, ShopID: shopID}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		out.EmployeeID = &employeeID
	}
	out.IsAdmin, _ = claims["is_admin"].(bool)
	return out, nil
}

// RevokeToken blacklists token until it would have expired anyway.
func (j *JWTService) RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(j.now())
	if ttl <= 0 {
		return nil
	}
	if err := j.store.Revoke(ctx, hashToken(token), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (j *JWTService) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := j.store.IsRevoked(ctx, hashToken(token))
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
