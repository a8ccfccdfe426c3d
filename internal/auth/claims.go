package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of an access token issued by the Supabase auth service.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c *Claims) UserID() string {
	return c.Subject
}
