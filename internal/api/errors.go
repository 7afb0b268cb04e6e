package api

import (
	"errors"
	"net/http"

	"gatecheck/internal/domain"
	"gatecheck/internal/service/token"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var googleAPI *domain.GoogleAPIError

	switch {
	case errors.Is(err, token.ErrInvalidSignature),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &googleAPI):
		return http.StatusBadGateway
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
