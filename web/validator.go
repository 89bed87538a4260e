package web

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

// PasswordRouteMessage is reported when a password field is smuggled into a
// profile-update body.
const PasswordRouteMessage = "This route is not for password updates. Please use /update-my-password."

// AppValidator represents validation struct
type AppValidator struct {
	UniTrans   *ut.UniversalTranslator
	V          *validator.Validate
	Translator ut.Translator
}

// NewAppValidator will initialize validator with translator and the custom
// tags used by the tour and user request bodies
func NewAppValidator() (*AppValidator, error) {
	av := new(AppValidator)
	translator := en.New()
	av.UniTrans = ut.New(translator, translator)
	var found bool
	av.Translator, found = av.UniTrans.GetTranslator("en")
	if !found {
		av.Translator = av.UniTrans.GetFallback()
	}

	av.V = validator.New()

	err := enTranslations.RegisterDefaultTranslations(av.V, av.Translator)
	if err != nil {
		return nil, err
	}

	av.V.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err = av.registerAlphaSpace(); err != nil {
		return nil, err
	}
	if err = av.registerPwdForbidden(); err != nil {
		return nil, err
	}

	return av, nil
}

// Validate serving to be called by Echo to validate request bodies
func (av *AppValidator) Validate(i interface{}) error {
	return av.V.Struct(i)
}

// alphaspace passes strings made of letters and spaces only, the tour name
// rule
func (av *AppValidator) registerAlphaSpace() error {
	err := av.V.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !unicode.IsLetter(r) && r != ' ' {
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	return av.V.RegisterTranslation("alphaspace", av.Translator,
		func(ut ut.Translator) error {
			return ut.Add("alphaspace", "{0} must only contain characters", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("alphaspace", fe.Field())
			return t
		},
	)
}

// pwdforbidden fails on any non-empty value
func (av *AppValidator) registerPwdForbidden() error {
	err := av.V.RegisterValidation("pwdforbidden", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == ""
	})
	if err != nil {
		return err
	}

	return av.V.RegisterTranslation("pwdforbidden", av.Translator,
		func(ut ut.Translator) error {
			return ut.Add("pwdforbidden", PasswordRouteMessage, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("pwdforbidden")
			return t
		},
	)
}

// Violations turns a validation error into the joined one-line message and
// the per-field translation map. Every violation is reported, not just the
// first.
func (av *AppValidator) Violations(err error) (string, validator.ValidationErrorsTranslations) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error(), nil
	}

	fields := verrs.Translate(av.Translator)
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fields[fe.Namespace()])
	}
	return "Invalid input data. " + strings.Join(messages, ". "), fields
}

// BindStrict decodes a JSON request body into v, rejecting unknown fields
func BindStrict(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("can't parse request body: %s: %w", err.Error(), ErrQueryParam)
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after request body: %w", ErrQueryParam)
	}
	return nil
}
