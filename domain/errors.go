package domain

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("something went very wrong")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested item is not found")
	// ErrNoAffected will throw if no documents were affected
	ErrNoAffected = errors.New("no documents were affected")
	// ErrConflict will throw if a unique field value already exists
	ErrConflict = errors.New("duplicate field value, please use another value")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given param is not valid")
	// ErrAuthenticationFailure will throw if authentication goes wrong
	ErrAuthenticationFailure = errors.New("authentication failed")
	// ErrForbidden will throw if user tries to do something that he is not
	// authorized to do
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

const (
	// StatusSuccess marks a 2xx response envelope
	StatusSuccess = "success"
	// StatusFail marks a 4xx response envelope
	StatusFail = "fail"
	// StatusError marks a 5xx response envelope
	StatusError = "error"
)

// Debug controls whether unexpected errors are echoed back in responses.
// Set once at startup, outside production only.
var Debug bool

// ResponseError represent the response error struct
type ResponseError struct {
	Status  string                                 `json:"status"`
	Message string                                 `json:"message"`
	Fields  validator.ValidationErrorsTranslations `json:"fields,omitempty"`
	Debug   string                                 `json:"debug,omitempty"`
}

// DataResponse represent the success response envelope
type DataResponse struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewDataResponse wraps data in the success envelope
func NewDataResponse(data interface{}) DataResponse {
	return DataResponse{Status: StatusSuccess, Data: data}
}

// NewListResponse wraps a list in the success envelope with a results count
func NewListResponse(results int, data interface{}) DataResponse {
	return DataResponse{Status: StatusSuccess, Results: &results, Data: data}
}

// StatusLabel returns the envelope status for an http code: fail for client
// errors, error for everything else
func StatusLabel(code int) string {
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return StatusFail
	}
	return StatusError
}

// NewResponseError builds the error envelope for an http code
func NewResponseError(code int, message string) ResponseError {
	return ResponseError{Status: StatusLabel(code), Message: message}
}

// GetStatusCode gets http code from error. Errors outside the known set are
// treated as faults: logged with full detail and masked as 500.
func GetStatusCode(err error, logger *zap.Logger) int {
	switch {
	case errors.Is(err, ErrBadParamInput), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationFailure):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoAffected):
		return http.StatusNotFound
	}

	logger.Error("Server error: ", zap.Error(err))
	return http.StatusInternalServerError
}

// ErrorResponse maps an error to its http code and response envelope. The
// detail of an unrecognized error is never surfaced to the caller.
func ErrorResponse(err error, logger *zap.Logger) (int, ResponseError) {
	code := GetStatusCode(err, logger)
	message := err.Error()
	resp := NewResponseError(code, message)
	if code == http.StatusInternalServerError {
		resp.Message = ErrInternalServerError.Error()
		if Debug {
			resp.Debug = message
		}
	}
	return code, resp
}
