package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// List returns accounts, newest first.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role      query     string  false  "admin, seller or buyer"
// @Param        isActive  query     bool    false  "Filter by status"
// @Param        search    query     string  false  "Matches name or email"
// @Param        page      query     int     false  "Page, from 1"
// @Param        limit     query     int     false  "Page size, max 100"
// @Success      200       {object}  response.Envelope
// @Failure      403       {object}  response.Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	q := newQuery(c)
	f := domain.UserFilter{
		Role:   domain.Role(q.str("role")),
		Active: q.flag("isActive"),
		Search: q.str("search"),
	}
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.users.List(c.Request().Context(), actor(c), f, p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Users retrieved successfully", listData("users", res.Items, res.Pagination))
}

// SetStatus activates or deactivates an account.
//
// @Summary      Change account status
// @Description  Users may deactivate their own account. Reactivation is admin-only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  response.Envelope{data=userData}
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := h.users.SetActive(c.Request().Context(), actor(c), c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "User status updated successfully", userData{User: u})
}
