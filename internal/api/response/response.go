// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Data      any               `json:"data,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// now is replaced in tests.
var now = time.Now

// Success writes a success envelope with data.
func Success(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{
		Code:      strconv.Itoa(code),
		Message:   message,
		Status:    StatusSuccess,
		Data:      data,
		Timestamp: now().UTC().Format(time.RFC3339Nano),
	})
}

// Error writes an error envelope. fields and data may be nil.
func Error(c echo.Context, code int, message string, fields map[string]string, data any) error {
	return c.JSON(code, Envelope{
		Code:    strconv.Itoa(code),
		Message: message,
		Status:  StatusError,
		Data:    data,
		Errors:  fields,
	})
}
