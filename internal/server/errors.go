package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/app"
	"github.com/jonathan/cv-architect/internal/history"
)

// ErrInvalidCredentials indicates a wrong operator password
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrAuthNotConfigured is returned by the token endpoint when no secret or
// password hash is set.
var ErrAuthNotConfigured = errors.New("authentication is not configured")

var kindStatus = map[analysis.Kind]int{
	analysis.KindInputValidation:     http.StatusBadRequest,
	analysis.KindMissingCredential:   http.StatusServiceUnavailable,
	analysis.KindPayloadRejected:     http.StatusUnprocessableEntity,
	analysis.KindQuotaExceeded:       http.StatusTooManyRequests,
	analysis.KindServiceUnavailable:  http.StatusServiceUnavailable,
	analysis.KindMalformedResponse:   http.StatusBadGateway,
	analysis.KindPresentationBlocked: http.StatusServiceUnavailable,
	analysis.KindUnknown:             http.StatusInternalServerError,
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrUnknownTab):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthNotConfigured):
		return http.StatusNotFound
	}

	var failure *analysis.Failure
	var invalidCreds *ErrInvalidCredentials
	var validation *ErrValidation
	switch {
	case errors.As(err, &failure):
		if status, ok := kindStatus[failure.Kind]; ok {
			return status
		}
	case errors.As(err, &invalidCreds):
		return http.StatusUnauthorized
	case errors.As(err, &validation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error string        `json:"error"`
	Kind  analysis.Kind `json:"kind,omitempty"`
}

// errorBody builds the response body for err. Analysis failures expose only
// their user-facing message.
func errorBody(err error) ErrorResponse {
	var failure *analysis.Failure
	if errors.As(err, &failure) {
		return ErrorResponse{Error: failure.Message, Kind: failure.Kind}
	}
	return ErrorResponse{Error: err.Error()}
}
