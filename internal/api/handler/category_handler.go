package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type CategoryHandler struct {
	categories ports.CategoryService
}

func NewCategoryHandler(categories ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type createCategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive"`
}

type categoryData struct {
	Category *domain.Category `json:"category"`
}

// List returns categories sorted by name.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        isActive  query     bool    false  "Filter by status"
// @Param        search    query     string  false  "Matches name or description"
// @Param        page      query     int     false  "Page, from 1"
// @Param        limit     query     int     false  "Page size, max 100"
// @Success      200       {object}  response.Envelope
// @Router       /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	q := newQuery(c)
	f := domain.CategoryFilter{Active: q.flag("isActive"), Search: q.str("search")}
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.categories.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Categories retrieved successfully", listData("categories", res.Items, res.Pagination))
}

// Get returns one category.
//
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope{data=categoryData}
// @Failure      404  {object}  response.Envelope
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	cat, err := h.categories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Category retrieved successfully", categoryData{Category: cat})
}

// Create adds a category.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category"
// @Success      201   {object}  response.Envelope{data=categoryData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cat, err := h.categories.Create(c.Request().Context(), actor(c), ports.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, "Category created successfully", categoryData{Category: cat})
}

// Update edits a category.
//
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Category ID"
// @Param        body  body      updateCategoryRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=categoryData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req updateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cat, err := h.categories.Update(c.Request().Context(), actor(c), c.Param("id"), ports.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Category updated successfully", categoryData{Category: cat})
}

// Delete removes a category.
//
// @Summary      Delete a category
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.categories.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Category deleted successfully", nil)
}
