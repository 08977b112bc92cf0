package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func callWithAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/billing/credits", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	}
	err := Auth(testJWTSecret)(next)(c)
	return rec, err
}

func TestAuthValidToken(t *testing.T) {
	token := signToken(t, testJWTSecret, jwt.MapClaims{
		"sub":   "user-42",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec, err := callWithAuth(t, "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-42", rec.Body.String())
}

func TestAuthMissingHeader(t *testing.T) {
	_, err := callWithAuth(t, "")
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", jwt.MapClaims{"sub": "user-42"})

	_, err := callWithAuth(t, "Bearer "+token)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	token := signToken(t, testJWTSecret, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := callWithAuth(t, "Bearer "+token)
	require.Error(t, err)
}

func TestAuthTokenWithoutSubject(t *testing.T) {
	token := signToken(t, testJWTSecret, jwt.MapClaims{"email": "user@example.com"})

	_, err := callWithAuth(t, "Bearer "+token)
	require.Error(t, err)
}
