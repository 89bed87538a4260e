package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/tests"
	tourHttp "github.com/naveedm/natours/backend/tour/delivery/http"
	"github.com/naveedm/natours/backend/tour/mock"
	"github.com/naveedm/natours/backend/web"
	"github.com/naveedm/natours/backend/web/auth"
)

func newTourHandler(t *testing.T, uc domain.TourUsecase) (*tourHttp.TourHandler, *echo.Echo) {
	t.Helper()

	v, err := web.NewAppValidator()
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator("test-secret-which-is-long-enough", time.Minute, time.Hour, false)
	require.NoError(t, err)

	handler := tourHttp.NewTourHandler(uc, nil, authenticator, v, zap.NewNop())

	e := echo.New()
	e.Validator = v
	return handler, e
}

func TestTourHandler_Fetch(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	tTour := tests.NewTour()

	t.Run("success", func(t *testing.T) {
		uc.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]*domain.Tour{tTour}, nil)

		req := httptest.NewRequest(echo.GET, "/api/v1/tours?difficulty=medium", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Fetch(c)
		require.NoError(t, err)

		body := new(domain.DataResponse)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.StatusSuccess, body.Status)
		require.NotNil(t, body.Results)
		assert.Equal(t, 1, *body.Results)
	})

	t.Run("bad query parameter", func(t *testing.T) {
		uc.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, domain.ErrBadParamInput)

		req := httptest.NewRequest(echo.GET, "/api/v1/tours?duration[near]=5", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Fetch(c)
		require.NoError(t, err)

		body := new(domain.ResponseError)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.StatusFail, body.Status)
	})
}

func TestTourHandler_FetchTopCheap(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	uc.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params url.Values) ([]*domain.Tour, error) {
			assert.Equal(t, "5", params.Get("limit"))
			assert.Equal(t, "-ratingsAverage,price", params.Get("sort"))
			assert.Equal(t, "name,price,ratingsAverage,difficulty", params.Get("fields"))
			return []*domain.Tour{}, nil
		})

	req := httptest.NewRequest(echo.GET, "/api/v1/tours/top-5-cheap", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.FetchTopCheap(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTourHandler_GetByID(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	tTour := tests.NewTour()

	t.Run("success", func(t *testing.T) {
		uc.EXPECT().GetByID(gomock.Any(), tTour.ID.Hex()).Return(tTour, nil)

		req := httptest.NewRequest(echo.GET, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/:id")
		c.SetParamNames("id")
		c.SetParamValues(tTour.ID.Hex())

		err := handler.GetByID(c)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, rec.Code)
		// the derived weeks field is serialized alongside the model
		assert.Contains(t, rec.Body.String(), `"durationWeeks":1`)
	})

	t.Run("not found", func(t *testing.T) {
		uc.EXPECT().GetByID(gomock.Any(), tTour.ID.Hex()).Return(nil, domain.ErrNotFound)

		req := httptest.NewRequest(echo.GET, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/:id")
		c.SetParamNames("id")
		c.SetParamValues(tTour.ID.Hex())

		err := handler.GetByID(c)
		require.NoError(t, err)

		body := new(domain.ResponseError)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), body))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.StatusFail, body.Status)
	})
}

func TestTourHandler_Create(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	tTour := tests.NewTour()
	tCreate := tests.NewCreateTour()
	createB, err := json.Marshal(tCreate)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		uc.EXPECT().Create(gomock.Any(), tCreate).Return(tTour, nil)

		req := httptest.NewRequest(echo.POST, "/api/v1/tours", bytes.NewBuffer(createB))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)
		require.NoError(t, err)

		body := new(domain.DataResponse)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), body))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, domain.StatusSuccess, body.Status)
	})

	t.Run("validation error reports every violation", func(t *testing.T) {
		bad := tests.NewCreateTour()
		bad.Name = "Short"
		bad.Difficulty = "extreme"
		badB, err := json.Marshal(bad)
		require.NoError(t, err)

		req := httptest.NewRequest(echo.POST, "/api/v1/tours", bytes.NewBuffer(badB))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err = handler.Create(c)
		require.NoError(t, err)

		body := new(domain.ResponseError)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body.Message, "Invalid input data. ")
		assert.Equal(t, "name must be at least 10 characters in length", body.Fields["CreateTour.name"])
		assert.Equal(t, "difficulty must be one of [easy medium difficult impossible]", body.Fields["CreateTour.difficulty"])
	})

	t.Run("duplicate name", func(t *testing.T) {
		uc.EXPECT().Create(gomock.Any(), tCreate).Return(nil, domain.ErrConflict)

		req := httptest.NewRequest(echo.POST, "/api/v1/tours", bytes.NewBuffer(createB))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTourHandler_Update(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	tTour := tests.NewTour()
	tUpdate := tests.NewUpdateTour()
	updateB, err := json.Marshal(tUpdate)
	require.NoError(t, err)

	uc.EXPECT().Update(gomock.Any(), tTour.ID.Hex(), tUpdate).Return(tTour, nil)

	req := httptest.NewRequest(echo.PATCH, "/", bytes.NewBuffer(updateB))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/tours/:id")
	c.SetParamNames("id")
	c.SetParamValues(tTour.ID.Hex())

	err = handler.Update(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTourHandler_Delete(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	tTour := tests.NewTour()

	t.Run("success", func(t *testing.T) {
		uc.EXPECT().Delete(gomock.Any(), tTour.ID.Hex()).Return(nil)

		req := httptest.NewRequest(echo.DELETE, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/:id")
		c.SetParamNames("id")
		c.SetParamValues(tTour.ID.Hex())

		err := handler.Delete(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		uc.EXPECT().Delete(gomock.Any(), tTour.ID.Hex()).Return(domain.ErrNoAffected)

		req := httptest.NewRequest(echo.DELETE, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/:id")
		c.SetParamNames("id")
		c.SetParamValues(tTour.ID.Hex())

		err := handler.Delete(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTourHandler_Stats(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	stats := []domain.TourStats{{Difficulty: "MEDIUM", NumTours: 3, AvgPrice: 497}}
	uc.EXPECT().Stats(gomock.Any()).Return(stats, nil)

	req := httptest.NewRequest(echo.GET, "/api/v1/tours/tour-stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Stats(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"MEDIUM"`)
}

func TestTourHandler_MonthlyPlan(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	uc := mock.NewMockTourUsecase(controller)
	handler, e := newTourHandler(t, uc)

	t.Run("success", func(t *testing.T) {
		plan := []domain.MonthlyPlanEntry{{Month: 7, NumTourStarts: 2, Tours: []string{"The Sea Explorer"}}}
		uc.EXPECT().MonthlyPlan(gomock.Any(), "2021").Return(plan, nil)

		req := httptest.NewRequest(echo.GET, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/monthly-plan/:year")
		c.SetParamNames("year")
		c.SetParamValues("2021")

		err := handler.MonthlyPlan(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("year is not a number", func(t *testing.T) {
		uc.EXPECT().MonthlyPlan(gomock.Any(), "abc").Return(nil, domain.ErrBadParamInput)

		req := httptest.NewRequest(echo.GET, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/tours/monthly-plan/:year")
		c.SetParamNames("year")
		c.SetParamValues("abc")

		err := handler.MonthlyPlan(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
