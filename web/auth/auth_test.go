package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveedm/natours/backend/web/auth"
)

const testSecret = "test-secret-which-is-long-enough"

func TestAuthenticator_TokenRoundtrip(t *testing.T) {
	a, err := auth.NewAuthenticator(testSecret, time.Minute, time.Hour, false)
	require.NoError(t, err)

	now := time.Now()
	token, err := a.GenerateToken("507f191e810c19729de860ea", now)
	require.NoError(t, err)

	parsed, err := a.ParseToken(token)
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*auth.Claims)
	require.True(t, ok)
	assert.Equal(t, "507f191e810c19729de860ea", claims.Subject)
	assert.WithinDuration(t, now, claims.IssuedAt.Time, time.Second)
	assert.WithinDuration(t, now.Add(time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	a, err := auth.NewAuthenticator(testSecret, time.Minute, time.Hour, false)
	require.NoError(t, err)

	token, err := a.GenerateToken("507f191e810c19729de860ea", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	parsed, err := a.ParseToken(token)
	assert.Nil(t, parsed)
	assert.Error(t, err)
}

func TestAuthenticator_WrongSecret(t *testing.T) {
	a, err := auth.NewAuthenticator(testSecret, time.Minute, time.Hour, false)
	require.NoError(t, err)
	other, err := auth.NewAuthenticator("another-secret-for-the-same-size", time.Minute, time.Hour, false)
	require.NoError(t, err)

	token, err := a.GenerateToken("507f191e810c19729de860ea", time.Now())
	require.NoError(t, err)

	parsed, err := other.ParseToken(token)
	assert.Nil(t, parsed)
	assert.Error(t, err)
}

func TestAuthenticator_EmptySecret(t *testing.T) {
	a, err := auth.NewAuthenticator("", time.Minute, time.Hour, false)
	assert.Nil(t, a)
	assert.Error(t, err)
}

func TestAuthenticator_Guard(t *testing.T) {
	a, err := auth.NewAuthenticator(testSecret, time.Minute, time.Hour, false)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		require.True(t, ok)
		claims, ok := token.Claims.(*auth.Claims)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Subject)
	}, echojwt.WithConfig(a.JWTConfig))

	signed, err := a.GenerateToken("507f191e810c19729de860ea", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(echo.GET, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "507f191e810c19729de860ea", rec.Body.String())

	req = httptest.NewRequest(echo.GET, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signed})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(echo.GET, "/protected", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not logged in! Please log in to get access")
}

func TestAuthenticator_Cookie(t *testing.T) {
	a, err := auth.NewAuthenticator(testSecret, time.Minute, 24*time.Hour, true)
	require.NoError(t, err)

	now := time.Now()
	cookie := a.Cookie("signed-token", now)

	assert.Equal(t, auth.CookieName, cookie.Name)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.Equal(t, now.Add(24*time.Hour), cookie.Expires)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
}
