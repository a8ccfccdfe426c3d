package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/shared"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

type Middleware struct {
	validator *JWTValidator
}

func NewMiddleware(validator *JWTValidator) *Middleware {
	return &Middleware{validator: validator}
}

func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := m.validator.Validate(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return shared.Unauthorized("token_expired", "token has expired")
			}
			return shared.Unauthorized("invalid_token", "invalid or malformed token")
		}

		ctx := context.WithValue(c.Request().Context(), claimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// bearerToken reads the Authorization header, falling back to the access_token
// query parameter for websocket upgrades where browsers cannot set headers.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if q := c.QueryParam("access_token"); q != "" && c.IsWebSocket() {
			return q, nil
		}
		return "", shared.Unauthorized("missing_token", "authorization header required")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", shared.Unauthorized("invalid_token", "bearer token required")
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}

func GetClaims(c echo.Context) *Claims {
	claims, ok := c.Request().Context().Value(claimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func RequireAuth(c echo.Context) (string, error) {
	claims := GetClaims(c)
	if claims == nil {
		return "", shared.Unauthorized("auth_required", "authentication required")
	}
	return claims.UserID(), nil
}

func MiddlewareFunc(validator *JWTValidator) echo.MiddlewareFunc {
	return NewMiddleware(validator).Authenticate
}

func SetClaimsForTest(c echo.Context, claims *Claims) {
	ctx := context.WithValue(c.Request().Context(), claimsKey, claims)
	c.SetRequest(c.Request().WithContext(ctx))
}
