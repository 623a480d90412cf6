package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
)

// APIError is the error body every endpoint returns. It implements
// huma.StatusError.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// toAPIError maps err onto the response body. Internal failures keep their
// cause out of the response.
func toAPIError(err error) *APIError {
	var de *domainerrors.Error
	if !domainerrors.As(err, &de) {
		return &APIError{status: http.StatusInternalServerError, Code: string(domainerrors.CodeInternal), Message: "internal error"}
	}
	msg := de.Message
	if de.Code == domainerrors.CodeInternal || de.Code == domainerrors.CodeConfiguration {
		msg = "internal error"
	}
	return &APIError{status: de.HTTPStatus(), Code: string(de.Code), Message: msg, Details: de.Details}
}

// RegisterErrorHandler makes huma's own errors (malformed bodies, schema
// violations) use the APIError shape. Call it before creating the API.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var de *domainerrors.Error
			if domainerrors.As(err, &de) {
				return toAPIError(de)
			}
		}

		var details []string
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		e := &APIError{status: status, Code: statusToCode(status), Message: message}
		if len(details) > 0 {
			e.Details = details
		}
		return e
	}
}

func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
