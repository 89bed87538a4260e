package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
	_MyMiddleware "github.com/naveedm/natours/backend/middleware"
	"github.com/naveedm/natours/backend/web"
	"github.com/naveedm/natours/backend/web/auth"
)

// UserHandler represent the http handler for user and auth endpoints
type UserHandler struct {
	userUsecase   domain.UserUsecase
	userRepo      domain.UserRepository
	authenticator *auth.Authenticator
	validator     *web.AppValidator
	logger        *zap.Logger
}

// NewUserHandler will initialize the users/ resources endpoint
func NewUserHandler(uu domain.UserUsecase, ur domain.UserRepository, authenticator *auth.Authenticator, v *web.AppValidator, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userUsecase:   uu,
		userRepo:      ur,
		authenticator: authenticator,
		validator:     v,
		logger:        logger,
	}
}

// RegisterRoutes registers routes for a path with matching handler
func (uh *UserHandler) RegisterRoutes(e *echo.Echo) {
	myMiddl := _MyMiddleware.InitMiddleware(uh.logger)
	protect := []echo.MiddlewareFunc{
		echojwt.WithConfig(uh.authenticator.JWTConfig),
		myMiddl.LoadUser(uh.userRepo),
	}

	g := e.Group("/api/v1/users")
	g.POST("/signup", uh.Signup)
	g.POST("/login", uh.Login)
	g.POST("/forgot-password", uh.ForgotPassword)
	g.PATCH("/reset-password/:token", uh.ResetPassword)
	g.PATCH("/update-my-password", uh.UpdatePassword, protect...)
	g.PATCH("/update-me", uh.UpdateMe, protect...)
	g.DELETE("/update-me", uh.DeleteMe, protect...)
	g.GET("", uh.Fetch)
	g.GET("/:id", uh.GetByID, append(protect, myMiddl.RequireRoles(auth.RoleAdmin))...)
	g.POST("", uh.NotYetDefined)
	g.PATCH("/:id", uh.NotYetDefined)
	g.DELETE("/:id", uh.NotYetDefined)
}

// sendToken issues a session token for the user, mirrors it into the jwt
// cookie and writes the auth envelope
func (uh *UserHandler) sendToken(c echo.Context, u *domain.User, code int) error {
	now := time.Now()
	token, err := uh.authenticator.GenerateToken(u.ID.Hex(), now)
	if err != nil {
		return c.JSON(domain.ErrorResponse(fmt.Errorf("can't generate token: %w: %s", domain.ErrInternalServerError, err.Error()), uh.logger))
	}

	c.SetCookie(uh.authenticator.Cookie(token, now))

	return c.JSON(code, domain.DataResponse{
		Status: domain.StatusSuccess,
		Token:  token,
		Data:   echo.Map{"user": u},
	})
}

func (uh *UserHandler) validationError(c echo.Context, err error) error {
	message, fields := uh.validator.Violations(err)
	code := http.StatusBadRequest
	resp := domain.NewResponseError(code, message)
	resp.Fields = fields
	return c.JSON(code, resp)
}

// Signup will create the User by given request body and log him in
func (uh *UserHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	newUser := new(domain.CreateUser)
	if err := web.BindStrict(c, newUser); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(newUser); err != nil {
		return uh.validationError(c, err)
	}

	u, err := uh.userUsecase.Signup(ctx, *newUser)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return uh.sendToken(c, u, http.StatusCreated)
}

// Login will issue a fresh token by given credentials
func (uh *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	creds := new(domain.LoginUser)
	if err := c.Bind(creds); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(creds); err != nil {
		return uh.validationError(c, err)
	}

	u, err := uh.userUsecase.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return uh.sendToken(c, u, http.StatusOK)
}

// ForgotPassword will start the password reset flow for the given email
func (uh *UserHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body := new(domain.ForgotPassword)
	if err := c.Bind(body); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(body); err != nil {
		return uh.validationError(c, err)
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/reset-password", c.Scheme(), c.Request().Host)
	if err := uh.userUsecase.ForgotPassword(ctx, body.Email, resetURL); err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return c.JSON(http.StatusOK, domain.DataResponse{
		Status: domain.StatusSuccess,
		Data:   echo.Map{"message": "Token sent to email!"},
	})
}

// ResetPassword will set a new password by given reset token and log the
// user in
func (uh *UserHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body := new(domain.ResetPassword)
	if err := c.Bind(body); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(body); err != nil {
		return uh.validationError(c, err)
	}

	u, err := uh.userUsecase.ResetPassword(ctx, token, *body)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return uh.sendToken(c, u, http.StatusOK)
}

// UpdatePassword will change the authenticated user's password
func (uh *UserHandler) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	current, ok := _MyMiddleware.CurrentUser(c)
	if !ok {
		code := http.StatusUnauthorized
		return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
	}

	body := new(domain.UpdatePassword)
	if err := c.Bind(body); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(body); err != nil {
		return uh.validationError(c, err)
	}

	u, err := uh.userUsecase.UpdatePassword(ctx, current.ID, *body)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return uh.sendToken(c, u, http.StatusOK)
}

// UpdateMe will update the authenticated user's profile. Password changes
// are rejected here, they belong to UpdatePassword.
func (uh *UserHandler) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	current, ok := _MyMiddleware.CurrentUser(c)
	if !ok {
		code := http.StatusUnauthorized
		return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
	}

	body := new(domain.UpdateMe)
	if err := web.BindStrict(c, body); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(body); err != nil {
		return uh.validationError(c, err)
	}

	u, err := uh.userUsecase.UpdateMe(ctx, current.ID, *body)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"user": u}))
}

// DeleteMe will deactivate the authenticated user
func (uh *UserHandler) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	current, ok := _MyMiddleware.CurrentUser(c)
	if !ok {
		code := http.StatusUnauthorized
		return c.JSON(code, domain.NewResponseError(code, "You are not logged in! Please log in to get access"))
	}

	if err := uh.userUsecase.DeactivateMe(ctx, current.ID); err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return c.JSON(http.StatusNoContent, nil)
}

// Fetch will list users, deactivated ones excluded
func (uh *UserHandler) Fetch(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	users, err := uh.userUsecase.Fetch(ctx)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return c.JSON(http.StatusOK, domain.NewListResponse(len(users), echo.Map{"users": users}))
}

// GetByID returns a single user for the admin console
func (uh *UserHandler) GetByID(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	u, err := uh.userUsecase.GetByID(ctx, id)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, uh.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"user": u}))
}

// NotYetDefined is the placeholder for the admin user CRUD endpoints
func (uh *UserHandler) NotYetDefined(c echo.Context) error {
	code := http.StatusInternalServerError
	return c.JSON(code, domain.NewResponseError(code, "This route is not yet defined!"))
}
