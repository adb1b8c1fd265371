package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/policy"
)

// Authorize rejects a request early when the access policy can decide from
// the caller alone. Public actions always pass. Ownership rules need the
// target record, so for those only the identity is required here and the
// service makes the final decision.
func Authorize(resource policy.Resource, action policy.Action) echo.MiddlewareFunc {
	rule := policy.Lookup(resource, action)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rule.Public {
				return next(c)
			}
			actor := ActorFrom(c)
			if actor == nil {
				return domain.ErrAuthenticationRequired
			}
			if rule.Owner {
				return next(c)
			}
			if err := policy.Authorize(actor, resource, action); err != nil {
				return err
			}
			return next(c)
		}
	}
}
