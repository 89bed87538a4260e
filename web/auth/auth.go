package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/naveedm/natours/backend/domain"
)

// RoleUser, RoleGuide, RoleLeadGuide and RoleAdmin are the user roles
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// CookieName is the http-only cookie the session token is mirrored into
const CookieName = "jwt"

// Claims represents the authorization claims transmitted via a JWT. Only the
// user id travels in the token, roles are looked up fresh on every request.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims constructs a Claims value for the identified user
func NewClaims(subject string, now time.Time, expires time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expires)),
		},
	}
}

// Authenticator signs and verifies session tokens with an HMAC secret
type Authenticator struct {
	secret        []byte
	expires       time.Duration
	cookieExpires time.Duration
	secureCookie  bool

	// JWTConfig is ready to be passed to echojwt.WithConfig on protected
	// routes. It accepts the token from the Authorization header or the
	// jwt cookie.
	JWTConfig echojwt.Config
}

// NewAuthenticator creates Authenticator. cookieExpires is the lifetime of
// the mirrored cookie, secureCookie should be on in production.
func NewAuthenticator(secret string, expires, cookieExpires time.Duration, secureCookie bool) (*Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}

	a := &Authenticator{
		secret:        []byte(secret),
		expires:       expires,
		cookieExpires: cookieExpires,
		secureCookie:  secureCookie,
	}
	a.JWTConfig = echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:" + CookieName,
		ParseTokenFunc: func(_ echo.Context, signed string) (interface{}, error) {
			return a.ParseToken(signed)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			code := http.StatusUnauthorized
			return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
		},
	}

	return a, nil
}

// GenerateToken signs a token for the user id
func (a *Authenticator) GenerateToken(subject string, now time.Time) (string, error) {
	claims := NewClaims(subject, now, a.expires)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a signed token. The route guard stores the returned
// token on the echo context, claims are a *Claims.
func (a *Authenticator) ParseToken(signed string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(signed, new(Claims), func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't parse token: %w", err)
	}
	return token, nil
}

// Cookie builds the http-only session cookie carrying the token
func (a *Authenticator) Cookie(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  now.Add(a.cookieExpires),
		HttpOnly: true,
		Secure:   a.secureCookie,
		Path:     "/",
	}
}
