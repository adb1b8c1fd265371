package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every error returned by a service unwraps to exactly one of
// these, which is what the HTTP layer switches on.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is a domain error with a client-facing message and a kind.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the sentinel kind of the error.
func (e *Error) Kind() error { return e.kind }

// NotFound builds a not-found error for the named resource.
func NotFound(resource string) *Error {
	return newError(ErrNotFound, resource+" not found")
}

// Invalid builds an input error with a free-form message.
func Invalid(format string, args ...any) *Error {
	return newError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

var (
	ErrUserNotFound     = NotFound("user")
	ErrBrandNotFound    = NotFound("brand")
	ErrCategoryNotFound = NotFound("category")
	ErrCarNotFound      = NotFound("car")
	ErrFavoriteNotFound = NotFound("favorite")
	ErrSaleNotFound     = NotFound("sale")

	ErrEmailTaken     = newError(ErrConflict, "user with this email already exists")
	ErrPhoneTaken     = newError(ErrConflict, "user with this phone already exists")
	ErrBrandExists    = newError(ErrConflict, "brand with this name already exists")
	ErrCategoryExists = newError(ErrConflict, "category with this name already exists")
	ErrFavoriteExists = newError(ErrConflict, "car is already in favorites")

	ErrInvalidBrandRef    = newError(ErrInvalidInput, "invalid brand ID")
	ErrInvalidCategoryRef = newError(ErrInvalidInput, "invalid category ID")
	ErrInvalidCarRef      = newError(ErrInvalidInput, "invalid car ID")
	ErrInvalidBuyerRef    = newError(ErrInvalidInput, "invalid buyer ID")
	ErrSelfPurchase       = newError(ErrInvalidInput, "buyer and seller must differ")
	ErrCarNotAvailable    = newError(ErrInvalidInput, "car is not available for sale")

	ErrInvalidCredentials     = newError(ErrUnauthenticated, "invalid email or password")
	ErrAccountInactive        = newError(ErrForbidden, "account is deactivated, please contact support")
	ErrAuthenticationRequired = newError(ErrUnauthenticated, "authentication required")
	ErrTokenRequired          = newError(ErrUnauthenticated, "access token required")
	ErrRefreshTokenRequired   = newError(ErrUnauthenticated, "refresh token required")

	// Token failures intentionally share one message except for expiry so a
	// caller cannot tell a forged token from a revoked identity.
	ErrTokenExpired          = newError(ErrUnauthenticated, "token expired")
	ErrTokenMalformed        = newError(ErrUnauthenticated, "invalid token")
	ErrTokenSignatureInvalid = newError(ErrUnauthenticated, "invalid token")
	ErrTokenInvalid          = newError(ErrUnauthenticated, "invalid token")
)

// ValidationError reports field-level input failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add records a failure for field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e as an error when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// PermissionError is returned when an authenticated actor is denied.
type PermissionError struct {
	Reason   string
	Required []Role
}

func (e *PermissionError) Error() string {
	if e.Reason == "" {
		return ErrForbidden.Error()
	}
	return e.Reason
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }
