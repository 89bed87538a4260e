package http

import (
	"context"
	"net/http"
	"net/url"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
	_MyMiddleware "github.com/naveedm/natours/backend/middleware"
	"github.com/naveedm/natours/backend/web"
	"github.com/naveedm/natours/backend/web/auth"
)

// TourHandler represent the http handler for tour
type TourHandler struct {
	tourUsecase   domain.TourUsecase
	userRepo      domain.UserRepository
	authenticator *auth.Authenticator
	validator     *web.AppValidator
	logger        *zap.Logger
}

// NewTourHandler will initialize the tours/ resources endpoint
func NewTourHandler(tu domain.TourUsecase, ur domain.UserRepository, authenticator *auth.Authenticator, v *web.AppValidator, logger *zap.Logger) *TourHandler {
	return &TourHandler{
		tourUsecase:   tu,
		userRepo:      ur,
		authenticator: authenticator,
		validator:     v,
		logger:        logger,
	}
}

// RegisterRoutes registers routes for a path with matching handler
func (th *TourHandler) RegisterRoutes(e *echo.Echo) {
	myMiddl := _MyMiddleware.InitMiddleware(th.logger)
	protect := []echo.MiddlewareFunc{
		echojwt.WithConfig(th.authenticator.JWTConfig),
		myMiddl.LoadUser(th.userRepo),
	}

	g := e.Group("/api/v1/tours")
	g.GET("/top-5-cheap", th.FetchTopCheap)
	g.GET("/tour-stats", th.Stats)
	g.GET("/monthly-plan/:year", th.MonthlyPlan)
	g.GET("", th.Fetch, protect...)
	g.POST("", th.Create)
	g.GET("/:id", th.GetByID)
	g.PATCH("/:id", th.Update)
	g.DELETE("/:id", th.Delete, append(protect, myMiddl.RequireRoles(auth.RoleAdmin, auth.RoleLeadGuide))...)
}

func (th *TourHandler) fetch(c echo.Context, params url.Values) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tours, err := th.tourUsecase.Fetch(ctx, params)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusOK, domain.NewListResponse(len(tours), echo.Map{"tours": tours}))
}

// Fetch will list tours filtered, sorted and paginated by query parameters
func (th *TourHandler) Fetch(c echo.Context) error {
	return th.fetch(c, c.QueryParams())
}

// FetchTopCheap is the "top 5 cheap" preset over Fetch
func (th *TourHandler) FetchTopCheap(c echo.Context) error {
	params := url.Values{}
	for k, v := range c.QueryParams() {
		params[k] = v
	}
	params.Set("limit", "5")
	params.Set("sort", "-ratingsAverage,price")
	params.Set("fields", "name,price,ratingsAverage,difficulty")

	return th.fetch(c, params)
}

// GetByID will get tour by given id
func (th *TourHandler) GetByID(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	t, err := th.tourUsecase.GetByID(ctx, id)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"tour": t}))
}

// Create will store the Tour by given request body
func (th *TourHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	newTour := new(domain.CreateTour)
	if err := c.Bind(newTour); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(newTour); err != nil {
		message, fields := th.validator.Violations(err)
		code := http.StatusBadRequest
		resp := domain.NewResponseError(code, message)
		resp.Fields = fields
		return c.JSON(code, resp)
	}

	t, err := th.tourUsecase.Create(ctx, *newTour)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusCreated, domain.NewDataResponse(echo.Map{"tour": t}))
}

// Update will update the Tour by given request body
func (th *TourHandler) Update(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	upd := new(domain.UpdateTour)
	if err := c.Bind(upd); err != nil {
		code := http.StatusBadRequest
		return c.JSON(code, domain.NewResponseError(code, err.Error()))
	}

	if err := c.Validate(upd); err != nil {
		message, fields := th.validator.Violations(err)
		code := http.StatusBadRequest
		resp := domain.NewResponseError(code, message)
		resp.Fields = fields
		return c.JSON(code, resp)
	}

	t, err := th.tourUsecase.Update(ctx, id, *upd)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"tour": t}))
}

// Delete will delete Tour by given id
func (th *TourHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := th.tourUsecase.Delete(ctx, id); err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusNoContent, nil)
}

// Stats will report the per-difficulty aggregation summary
func (th *TourHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := th.tourUsecase.Stats(ctx)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"stats": stats}))
}

// MonthlyPlan will report tour starts grouped by month for the given year
func (th *TourHandler) MonthlyPlan(c echo.Context) error {
	year := c.Param("year")

	ctx := c.Request().Context()
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := th.tourUsecase.MonthlyPlan(ctx, year)
	if err != nil {
		return c.JSON(domain.ErrorResponse(err, th.logger))
	}

	return c.JSON(http.StatusOK, domain.NewDataResponse(echo.Map{"plan": plan}))
}
