package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/middleware"
	"github.com/carsale/marketplace-api/internal/core/domain"
)

// actor returns the caller resolved by the Authenticate middleware, or nil.
func actor(c echo.Context) *domain.Actor {
	return middleware.ActorFrom(c)
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// query collects typed query parameters and the first parse failure per key.
type query struct {
	c  echo.Context
	ve domain.ValidationError
}

func newQuery(c echo.Context) *query { return &query{c: c} }

func (q *query) str(key string) string {
	return strings.TrimSpace(q.c.QueryParam(key))
}

func (q *query) integer(key string) int {
	s := q.str(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.ve.Add(key, key+" must be an integer")
	}
	return n
}

func (q *query) number(key string) *float64 {
	s := q.str(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		q.ve.Add(key, key+" must be a number")
		return nil
	}
	return &f
}

func (q *query) flag(key string) *bool {
	s := q.str(key)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.ve.Add(key, key+" must be true or false")
		return nil
	}
	return &b
}

func (q *query) page() domain.PageRequest {
	return domain.PageRequest{Page: q.integer("page"), Limit: q.integer("limit")}
}

func (q *query) err() error { return q.ve.OrNil() }

// listData is the data payload of a paginated list, keyed by resource name.
func listData(key string, items any, p domain.Pagination) map[string]any {
	return map[string]any{key: items, "pagination": p}
}
