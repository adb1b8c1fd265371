package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

// ActorKey is the echo context key holding the authenticated *domain.Actor.
const ActorKey = "actor"

// Authenticator resolves an access token to a live identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.Actor, error)
}

// Authenticate resolves the bearer token, when one is sent, and stores the
// actor in the context. Requests without an Authorization header continue
// anonymously; a header that fails verification is rejected.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return domain.ErrTokenRequired
			}

			actor, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ActorFrom(c) == nil {
				return domain.ErrTokenRequired
			}
			return next(c)
		}
	}
}

// ActorFrom returns the authenticated actor or nil for anonymous requests.
func ActorFrom(c echo.Context) *domain.Actor {
	a, _ := c.Get(ActorKey).(*domain.Actor)
	return a
}
