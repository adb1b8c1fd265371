package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type BrandHandler struct {
	brands ports.BrandService
}

func NewBrandHandler(brands ports.BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

type createBrandRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Logo     string `json:"logo"     validate:"omitempty,url"`
	IsActive *bool  `json:"isActive"`
}

type updateBrandRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=50"`
	Logo     *string `json:"logo"     validate:"omitempty,url"`
	IsActive *bool   `json:"isActive"`
}

type brandData struct {
	Brand *domain.Brand `json:"brand"`
}

// List returns brands sorted by name.
//
// @Summary      List brands
// @Tags         brands
// @Produce      json
// @Param        isActive  query     bool    false  "Filter by status"
// @Param        search    query     string  false  "Matches the name"
// @Param        page      query     int     false  "Page, from 1"
// @Param        limit     query     int     false  "Page size, max 100"
// @Success      200       {object}  response.Envelope
// @Router       /brands [get]
func (h *BrandHandler) List(c echo.Context) error {
	q := newQuery(c)
	f := domain.BrandFilter{Active: q.flag("isActive"), Search: q.str("search")}
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.brands.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Brands retrieved successfully", listData("brands", res.Items, res.Pagination))
}

// Get returns one brand.
//
// @Summary      Get a brand
// @Tags         brands
// @Produce      json
// @Param        id   path      string  true  "Brand ID"
// @Success      200  {object}  response.Envelope{data=brandData}
// @Failure      404  {object}  response.Envelope
// @Router       /brands/{id} [get]
func (h *BrandHandler) Get(c echo.Context) error {
	b, err := h.brands.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Brand retrieved successfully", brandData{Brand: b})
}

// Create adds a brand.
//
// @Summary      Create a brand
// @Tags         brands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBrandRequest  true  "Brand"
// @Success      201   {object}  response.Envelope{data=brandData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /brands [post]
func (h *BrandHandler) Create(c echo.Context) error {
	var req createBrandRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	b, err := h.brands.Create(c.Request().Context(), actor(c), ports.BrandInput{
		Name:     req.Name,
		Logo:     req.Logo,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, "Brand created successfully", brandData{Brand: b})
}

// Update edits a brand.
//
// @Summary      Update a brand
// @Tags         brands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Brand ID"
// @Param        body  body      updateBrandRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=brandData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /brands/{id} [put]
func (h *BrandHandler) Update(c echo.Context) error {
	var req updateBrandRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	b, err := h.brands.Update(c.Request().Context(), actor(c), c.Param("id"), ports.BrandPatch{
		Name:     req.Name,
		Logo:     req.Logo,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Brand updated successfully", brandData{Brand: b})
}

// Delete removes a brand.
//
// @Summary      Delete a brand
// @Tags         brands
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Brand ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /brands/{id} [delete]
func (h *BrandHandler) Delete(c echo.Context) error {
	if err := h.brands.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Brand deleted successfully", nil)
}
