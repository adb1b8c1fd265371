package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carsale/marketplace-api/internal/api/metrics"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
)

const internalErrorMessage = "Internal Server Error"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps every
// domain error kind onto a status and renders the error envelope. Unknown
// errors are logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, fields, data := resolveError(err)
		if code == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}
		if code == http.StatusForbidden {
			metrics.PolicyDenialsTotal.WithLabelValues(c.Path()).Inc()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = response.Error(c, code, msg, fields, data)
	}
}

func resolveError(err error) (code int, msg string, fields map[string]string, data any) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation failed", ve.Fields, nil
	}

	var pe *domain.PermissionError
	if errors.As(err, &pe) {
		if len(pe.Required) > 0 {
			data = map[string]any{"required": pe.Required}
		}
		return http.StatusForbidden, pe.Error(), nil, data
	}

	// Echo's own errors: bind failures, unknown routes, rate limiting.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code == http.StatusBadRequest {
			return he.Code, "Invalid request body", nil, nil
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil, nil
	}

	// Services may wrap domain errors; the client sees the domain message only.
	msg = err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Error()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, msg, nil, nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, msg, nil, nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msg, nil, nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msg, nil, nil
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, msg, nil, nil
	}
	return http.StatusInternalServerError, internalErrorMessage, nil, nil
}
