package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/web/auth"
)

// CurrentUserKey is the context key the authenticated user is stored under
const CurrentUserKey = "currentUser"

// GoMiddleware represent the data-struct for middleware
type GoMiddleware struct {
	logger *zap.Logger
}

// InitMiddleware initialize the middleware
func InitMiddleware(logger *zap.Logger) *GoMiddleware {
	return &GoMiddleware{
		logger: logger,
	}
}

// CORS will handle the CORS middleware
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		return next(c)
	}
}

// Logger is a middleware that logs requests
func (m *GoMiddleware) Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()

		id := req.Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = res.Header().Get(echo.HeaderXRequestID)
		}

		fields := []zapcore.Field{
			zap.Int("status", res.Status),
			zap.String("latency", time.Since(start).String()),
			zap.String("id", id),
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.String("host", req.Host),
			zap.String("remote_ip", c.RealIP()),
		}

		n := res.Status
		switch {
		case n >= 500:
			m.logger.Error("Server error", fields...)
		case n >= 400:
			m.logger.Warn("Client error", fields...)
		case n >= 300:
			m.logger.Info("Redirection", fields...)
		default:
			m.logger.Info("Success", fields...)
		}

		return nil
	}
}

// LoadUser runs after the jwt guard. It rejects tokens whose user no longer
// exists or was deactivated, and tokens issued before the user's last
// password change, then stores the user under CurrentUserKey.
func (m *GoMiddleware) LoadUser(users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok || token == nil {
				code := http.StatusUnauthorized
				return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				code := http.StatusInternalServerError
				return c.JSON(code, domain.NewResponseError(code, domain.ErrInternalServerError.Error()))
			}

			id, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				code := http.StatusUnauthorized
				return c.JSON(code, domain.NewResponseError(code, "The user belonging to the token no longer exists"))
			}

			u, err := users.GetByID(c.Request().Context(), id)
			if err != nil {
				code := http.StatusUnauthorized
				return c.JSON(code, domain.NewResponseError(code, "The user belonging to the token no longer exists"))
			}

			if claims.IssuedAt != nil && u.ChangedPasswordAfter(claims.IssuedAt.Time) {
				code := http.StatusUnauthorized
				return c.JSON(code, domain.NewResponseError(code, "User recently changed password! Please log in again"))
			}

			c.Set(CurrentUserKey, u)
			return next(c)
		}
	}
}

// RequireRoles validates that the loaded user has one of the given roles.
// It must run after LoadUser.
func (m *GoMiddleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := c.Get(CurrentUserKey).(*domain.User)
			if !ok {
				code := http.StatusUnauthorized
				return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
			}

			for _, role := range roles {
				if u.Role == role {
					return next(c)
				}
			}

			code := http.StatusForbidden
			return c.JSON(code, domain.NewResponseError(code, domain.ErrForbidden.Error()))
		}
	}
}

// CurrentUser pulls the authenticated user set by LoadUser out of the
// request context
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(CurrentUserKey).(*domain.User)
	return u, ok
}
