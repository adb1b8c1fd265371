package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/metrics"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type FavoriteHandler struct {
	favorites ports.FavoriteService
}

func NewFavoriteHandler(favorites ports.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

type createFavoriteRequest struct {
	CarID string `json:"carId" validate:"required,mongodb"`
}

type favoriteData struct {
	Favorite *domain.Favorite `json:"favorite"`
}

// List returns the caller's favorites; admins see everyone's.
//
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page, from 1"
// @Param        limit  query     int  false  "Page size, max 100"
// @Success      200    {object}  response.Envelope
// @Failure      401    {object}  response.Envelope
// @Router       /favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	q := newQuery(c)
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.favorites.List(c.Request().Context(), actor(c), p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Favorites retrieved successfully", listData("favorites", res.Items, res.Pagination))
}

// Create bookmarks a car for the caller.
//
// @Summary      Add a favorite
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createFavoriteRequest  true  "Car to favorite"
// @Success      201   {object}  response.Envelope{data=favoriteData}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /favorites [post]
func (h *FavoriteHandler) Create(c echo.Context) error {
	var req createFavoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fav, err := h.favorites.Create(c.Request().Context(), actor(c), req.CarID)
	if err != nil {
		return err
	}
	metrics.FavoritesTotal.WithLabelValues("add").Inc()
	return response.Success(c, http.StatusCreated, "Car added to favorites", favoriteData{Favorite: fav})
}

// Delete removes a favorite.
//
// @Summary      Remove a favorite
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Favorite ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /favorites/{id} [delete]
func (h *FavoriteHandler) Delete(c echo.Context) error {
	if err := h.favorites.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	metrics.FavoritesTotal.WithLabelValues("remove").Inc()
	return response.Success(c, http.StatusOK, "Car removed from favorites", nil)
}
