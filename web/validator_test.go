package web_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveedm/natours/backend/domain"
	"github.com/naveedm/natours/backend/tests"
	"github.com/naveedm/natours/backend/web"
)

func TestAppValidator_Tour(t *testing.T) {
	v, err := web.NewAppValidator()
	require.NoError(t, err)

	cases := []struct {
		description string
		fieldName   string
		mutate      func(*domain.CreateTour)
		want        string
	}{
		{
			description: "validate name too short",
			fieldName:   "CreateTour.name",
			mutate:      func(m *domain.CreateTour) { m.Name = "Short" },
			want:        "name must be at least 10 characters in length",
		},
		{
			description: "validate name too long",
			fieldName:   "CreateTour.name",
			mutate:      func(m *domain.CreateTour) { m.Name = strings.Repeat("a", 41) },
			want:        "name must be a maximum of 40 characters in length",
		},
		{
			description: "validate name with digits",
			fieldName:   "CreateTour.name",
			mutate:      func(m *domain.CreateTour) { m.Name = "The Tour Number 1" },
			want:        "name must only contain characters",
		},
		{
			description: "validate unknown difficulty",
			fieldName:   "CreateTour.difficulty",
			mutate:      func(m *domain.CreateTour) { m.Difficulty = "extreme" },
			want:        "difficulty must be one of [easy medium difficult impossible]",
		},
		{
			description: "validate rating above bound",
			fieldName:   "CreateTour.ratingsAverage",
			mutate:      func(m *domain.CreateTour) { m.RatingsAverage = tests.FloatPointer(5.5) },
			want:        "ratingsAverage must be 5 or less",
		},
		{
			description: "validate discount above price",
			fieldName:   "CreateTour.priceDiscount",
			mutate:      func(m *domain.CreateTour) { m.PriceDiscount = m.Price + 1 },
			want:        "priceDiscount must be less than Price",
		},
		{
			description: "validate summary not set",
			fieldName:   "CreateTour.summary",
			mutate:      func(m *domain.CreateTour) { m.Summary = "" },
			want:        "summary is a required field",
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			m := tests.NewCreateTour()
			tc.mutate(&m)

			err := v.V.Struct(m)
			require.Error(t, err)
			res := err.(validator.ValidationErrors).Translate(v.Translator)
			assert.Equal(t, tc.want, res[tc.fieldName])
		})
	}
}

func TestAppValidator_User(t *testing.T) {
	v, err := web.NewAppValidator()
	require.NoError(t, err)

	t.Run("validate password confirmation mismatch", func(t *testing.T) {
		m := tests.NewCreateUser()
		m.PasswordConfirm = "different1"

		err := v.V.Struct(m)
		require.Error(t, err)
		res := err.(validator.ValidationErrors).Translate(v.Translator)
		assert.Equal(t, "passwordConfirm must be equal to Password", res["CreateUser.passwordConfirm"])
	})

	t.Run("validate password too short", func(t *testing.T) {
		m := tests.NewCreateUser()
		m.Password = "short"
		m.PasswordConfirm = "short"

		err := v.V.Struct(m)
		require.Error(t, err)
		res := err.(validator.ValidationErrors).Translate(v.Translator)
		assert.Equal(t, "password must be at least 8 characters in length", res["CreateUser.password"])
	})

	t.Run("validate password in profile update", func(t *testing.T) {
		m := domain.UpdateMe{Password: "newpassword"}

		err := v.V.Struct(m)
		require.Error(t, err)
		res := err.(validator.ValidationErrors).Translate(v.Translator)
		assert.Equal(t, web.PasswordRouteMessage, res["UpdateMe.password"])
	})
}

func TestAppValidator_Violations(t *testing.T) {
	v, err := web.NewAppValidator()
	require.NoError(t, err)

	m := domain.CreateUser{Name: "John Doe", Email: "not an email"}
	err = v.V.Struct(m)
	require.Error(t, err)

	message, fields := v.Violations(err)
	assert.True(t, strings.HasPrefix(message, "Invalid input data. "))
	assert.Contains(t, message, "email must be a valid email address")
	assert.Contains(t, message, "password is a required field")
	assert.Equal(t, "email must be a valid email address", fields["CreateUser.email"])
}

func TestBindStrict(t *testing.T) {
	e := echo.New()

	t.Run("known fields pass", func(t *testing.T) {
		req := httptest.NewRequest(echo.PATCH, "/", strings.NewReader(`{"name":"Jane Doe"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		body := new(domain.UpdateMe)
		err := web.BindStrict(c, body)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", *body.Name)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		req := httptest.NewRequest(echo.PATCH, "/", strings.NewReader(`{"name":"Jane Doe","role":"admin"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		err := web.BindStrict(c, new(domain.UpdateMe))
		assert.ErrorIs(t, err, web.ErrQueryParam)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		req := httptest.NewRequest(echo.PATCH, "/", strings.NewReader(`{"name":"Jane Doe"}{"name":"x"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		err := web.BindStrict(c, new(domain.UpdateMe))
		assert.ErrorIs(t, err, web.ErrQueryParam)
	})
}
