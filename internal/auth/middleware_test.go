package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/shared"
)

func runAuthenticate(t *testing.T, v *JWTValidator, req *http.Request) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := NewMiddleware(v).Authenticate(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != status {
		t.Errorf("expected status %d, got %d", status, httpErr.Code)
	}
	apiErr, ok := httpErr.Message.(*shared.APIError)
	if !ok {
		t.Fatalf("expected *shared.APIError, got %T", httpErr.Message)
	}
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s", code, apiErr.Code)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	v := NewJWTValidator("secret")
	token, _ := v.Sign(newClaims("user-42", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	c, called, err := runAuthenticate(t, v, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected next handler to run")
	}

	userID, err := RequireAuth(c)
	if err != nil || userID != "user-42" {
		t.Errorf("expected user-42, got %q (%v)", userID, err)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	v := NewJWTValidator("secret")
	expired, _ := v.Sign(newClaims("user-42", -time.Hour))

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "missing_token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "invalid_token"},
		{"malformed", "Bearer abc.def", "invalid_token"},
		{"expired", "Bearer " + expired, "token_expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			_, called, err := runAuthenticate(t, v, req)
			if called {
				t.Error("next handler must not run")
			}
			assertAPIError(t, err, http.StatusUnauthorized, tt.code)
		})
	}
}

func TestAuthenticate_WebSocketQueryToken(t *testing.T) {
	v := NewJWTValidator("secret")
	token, _ := v.Sign(newClaims("user-7", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/scans/x/events?access_token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")

	c, called, err := runAuthenticate(t, v, req)
	if err != nil || !called {
		t.Fatalf("expected websocket query token accepted, err=%v", err)
	}
	if GetClaims(c).UserID() != "user-7" {
		t.Errorf("unexpected user %s", GetClaims(c).UserID())
	}

	plain := httptest.NewRequest(http.MethodGet, "/api/scans?access_token="+token, nil)
	_, called, err = runAuthenticate(t, v, plain)
	if called {
		t.Error("query token must be ignored outside websocket upgrades")
	}
	assertAPIError(t, err, http.StatusUnauthorized, "missing_token")
}

func TestRequireAuth_NoClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if _, err := RequireAuth(c); err == nil {
		t.Error("expected error without claims")
	}

	SetClaimsForTest(c, newClaims("user-1", time.Hour))
	if id, err := RequireAuth(c); err != nil || id != "user-1" {
		t.Errorf("expected user-1, got %q (%v)", id, err)
	}
}
