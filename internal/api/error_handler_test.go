package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantData string
	}{
		{name: "validation", err: &domain.ValidationError{Fields: map[string]string{"title": "title is required"}}, wantCode: http.StatusBadRequest, wantMsg: "Validation failed"},
		{name: "permission", err: &domain.PermissionError{Reason: "insufficient permissions", Required: []domain.Role{domain.RoleAdmin}}, wantCode: http.StatusForbidden, wantMsg: "insufficient permissions", wantData: `{"required":["admin"]}`},
		{name: "wrapped not found", err: fmt.Errorf("get car: %w", domain.ErrCarNotFound), wantCode: http.StatusNotFound, wantMsg: domain.ErrCarNotFound.Error()},
		{name: "conflict", err: domain.ErrBrandExists, wantCode: http.StatusConflict, wantMsg: "brand with this name already exists"},
		{name: "token", err: domain.ErrTokenExpired, wantCode: http.StatusUnauthorized, wantMsg: "token expired"},
		{name: "inactive account", err: domain.ErrAccountInactive, wantCode: http.StatusForbidden, wantMsg: domain.ErrAccountInactive.Error()},
		{name: "bind", err: echo.NewHTTPError(http.StatusBadRequest, "syntax error").SetInternal(errors.New("unexpected EOF")), wantCode: http.StatusBadRequest, wantMsg: "Invalid request body"},
		{name: "echo not found", err: echo.ErrNotFound, wantCode: http.StatusNotFound, wantMsg: "Not Found"},
		{name: "unknown", err: errors.New("mongo: connection reset"), wantCode: http.StatusInternalServerError, wantMsg: "Internal Server Error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			require.Equal(t, tc.wantCode, rec.Code)
			var env struct {
				Code    string            `json:"code"`
				Message string            `json:"message"`
				Status  string            `json:"status"`
				Data    json.RawMessage   `json:"data"`
				Errors  map[string]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, fmt.Sprint(tc.wantCode), env.Code)
			assert.Equal(t, tc.wantMsg, env.Message)
			if tc.wantData != "" {
				assert.JSONEq(t, tc.wantData, string(env.Data))
			}
			if tc.name == "validation" {
				assert.Equal(t, "title is required", env.Errors["title"])
			}
		})
	}
}

func TestHTTPErrorHandler_InternalCauseNotLeaked(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("secret dsn mongodb://root:pw@db"), c)

	assert.NotContains(t, rec.Body.String(), "mongodb://")
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrCarNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
