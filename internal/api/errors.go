package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// APIError is the huma.StatusError every failed operation is turned into.
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

// RegisterErrorHandler replaces huma's error constructor so schema failures,
// auth failures and handler errors all share one shape. Schema failures are
// reported as 400 rather than 422. Call it before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr
			}
			if apiErr := fromKnownError(err); apiErr != nil {
				return apiErr
			}
		}

		if status == http.StatusUnprocessableEntity {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: message,
				Details: schemaErrorDetails(errs),
			}
		}

		if status >= http.StatusInternalServerError && logger != nil {
			logger.Error("request failed",
				slog.Int("status", status),
				slog.String("message", message),
				slog.Any("errors", errs),
			)
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// mapError converts a service error into the StatusError huma writes.
// Unknown errors become a 500 with a generic message.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if known := fromKnownError(err); known != nil {
		return known
	}
	return huma.NewError(http.StatusInternalServerError, "internal server error", err)
}

func fromKnownError(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    statusToCode(storeErr.HTTPCode()),
			Message: storeErr.Message,
		}
	}

	return nil
}

// schemaErrorDetails maps each failing location ("body.title") to its message,
// keyed by field name the same way service validation reports it.
func schemaErrorDetails(errs []error) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		field := strings.TrimPrefix(strings.TrimPrefix(detail.Location, "body"), ".")
		if field == "" {
			field = "body"
		}
		details[field] = detail.Message
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
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
	case http.StatusMethodNotAllowed:
		return string(domainerrors.CodeMethodNotAllowed)
	case http.StatusConflict:
		return string(domainerrors.CodeDuplicate)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
