package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carsale/marketplace-api/internal/api/metrics"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

// ViewQueue counts car views off the request path. Enqueue returns an error
// only when it had to record the view itself and that failed.
type ViewQueue interface {
	Enqueue(ctx context.Context, carID string) error
}

type CarHandler struct {
	cars   ports.CarService
	views  ViewQueue
	logger zerolog.Logger
}

// NewCarHandler builds a CarHandler. With a nil views queue, views are
// recorded inline.
func NewCarHandler(cars ports.CarService, views ViewQueue, logger zerolog.Logger) *CarHandler {
	return &CarHandler{cars: cars, views: views, logger: logger}
}

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type locationRequest struct {
	City        string              `json:"city"        validate:"required"`
	District    string              `json:"district"    validate:"required"`
	Coordinates *coordinatesRequest `json:"coordinates"`
}

func (l locationRequest) toDomain() domain.Location {
	loc := domain.Location{City: l.City, District: l.District}
	if l.Coordinates != nil {
		loc.Coordinates = &domain.Coordinates{Lat: l.Coordinates.Lat, Lng: l.Coordinates.Lng}
	}
	return loc
}

type createCarRequest struct {
	Title         string          `json:"title"         validate:"required,min=10,max=100"`
	Description   string          `json:"description"   validate:"required,min=50,max=2000"`
	Brand         string          `json:"brand"         validate:"required,mongodb"`
	Category      string          `json:"category"      validate:"required,mongodb"`
	CarModel      string          `json:"carModel"      validate:"required,max=50"`
	Year          int             `json:"year"          validate:"required"`
	Price         float64         `json:"price"         validate:"gte=0"`
	Mileage       int             `json:"mileage"       validate:"gte=0"`
	FuelType      string          `json:"fuelType"      validate:"required,oneof=gasoline diesel hybrid electric lpg"`
	Transmission  string          `json:"transmission"  validate:"required,oneof=manual automatic"`
	BodyType      string          `json:"bodyType"      validate:"required,oneof=sedan hatchback suv coupe convertible wagon pickup"`
	Color         string          `json:"color"         validate:"required,max=30"`
	EngineSize    float64         `json:"engineSize"    validate:"required,gte=0.1,lte=10"`
	Horsepower    int             `json:"horsepower"    validate:"omitempty,gte=1,lte=2000"`
	Drivetrain    string          `json:"drivetrain"    validate:"required,oneof=fwd rwd awd 4wd"`
	Condition     string          `json:"condition"     validate:"required,oneof=new used certified"`
	Features      []string        `json:"features"      validate:"max=50"`
	Images        []string        `json:"images"        validate:"required,min=1,max=20,dive,required"`
	Location      locationRequest `json:"location"`
	IsPromoted    bool            `json:"isPromoted"`
	PromotedUntil *time.Time      `json:"promotedUntil"`
}

type updateCarRequest struct {
	Title         *string          `json:"title"         validate:"omitempty,min=10,max=100"`
	Description   *string          `json:"description"   validate:"omitempty,min=50,max=2000"`
	Brand         *string          `json:"brand"         validate:"omitempty,mongodb"`
	Category      *string          `json:"category"      validate:"omitempty,mongodb"`
	CarModel      *string          `json:"carModel"      validate:"omitempty,max=50"`
	Year          *int             `json:"year"`
	Price         *float64         `json:"price"         validate:"omitempty,gte=0"`
	Mileage       *int             `json:"mileage"       validate:"omitempty,gte=0"`
	FuelType      *string          `json:"fuelType"      validate:"omitempty,oneof=gasoline diesel hybrid electric lpg"`
	Transmission  *string          `json:"transmission"  validate:"omitempty,oneof=manual automatic"`
	BodyType      *string          `json:"bodyType"      validate:"omitempty,oneof=sedan hatchback suv coupe convertible wagon pickup"`
	Color         *string          `json:"color"         validate:"omitempty,max=30"`
	EngineSize    *float64         `json:"engineSize"    validate:"omitempty,gte=0.1,lte=10"`
	Horsepower    *int             `json:"horsepower"    validate:"omitempty,gte=1,lte=2000"`
	Drivetrain    *string          `json:"drivetrain"    validate:"omitempty,oneof=fwd rwd awd 4wd"`
	Condition     *string          `json:"condition"     validate:"omitempty,oneof=new used certified"`
	Features      *[]string        `json:"features"      validate:"omitempty,max=50"`
	Images        *[]string        `json:"images"        validate:"omitempty,min=1,max=20"`
	Location      *locationRequest `json:"location"`
	Status        *string          `json:"status"        validate:"omitempty,oneof=active sold pending inactive"`
	IsPromoted    *bool            `json:"isPromoted"`
	PromotedUntil *time.Time       `json:"promotedUntil"`
}

func (r updateCarRequest) toPatch() ports.CarPatch {
	p := ports.CarPatch{
		Title:         r.Title,
		Description:   r.Description,
		BrandID:       r.Brand,
		CategoryID:    r.Category,
		CarModel:      r.CarModel,
		Year:          r.Year,
		Price:         r.Price,
		Mileage:       r.Mileage,
		FuelType:      enumPtr[domain.FuelType](r.FuelType),
		Transmission:  enumPtr[domain.Transmission](r.Transmission),
		BodyType:      enumPtr[domain.BodyType](r.BodyType),
		Color:         r.Color,
		EngineSize:    r.EngineSize,
		Horsepower:    r.Horsepower,
		Drivetrain:    enumPtr[domain.Drivetrain](r.Drivetrain),
		Condition:     enumPtr[domain.Condition](r.Condition),
		Features:      r.Features,
		Images:        r.Images,
		Status:        enumPtr[domain.CarStatus](r.Status),
		IsPromoted:    r.IsPromoted,
		PromotedUntil: r.PromotedUntil,
	}
	if r.Location != nil {
		loc := r.Location.toDomain()
		p.Location = &loc
	}
	return p
}

func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

type carData struct {
	Car any `json:"car"`
}

// List returns car listings.
//
// @Summary      List cars
// @Tags         cars
// @Produce      json
// @Param        status        query     string  false  "active, sold, pending or inactive"
// @Param        brand         query     string  false  "Brand ID"
// @Param        category      query     string  false  "Category ID"
// @Param        seller        query     string  false  "Seller ID"
// @Param        fuelType      query     string  false  "Fuel type"
// @Param        transmission  query     string  false  "Transmission"
// @Param        bodyType      query     string  false  "Body type"
// @Param        condition     query     string  false  "Condition"
// @Param        city          query     string  false  "City, case-insensitive substring"
// @Param        minPrice      query     number  false  "Minimum price"
// @Param        maxPrice      query     number  false  "Maximum price"
// @Param        minYear       query     int     false  "Minimum model year"
// @Param        maxYear       query     int     false  "Maximum model year"
// @Param        search        query     string  false  "Matches title, description, model or color"
// @Param        sortBy        query     string  false  "createdAt, price, year, mileage, viewCount or title"
// @Param        sortOrder     query     string  false  "asc or desc"
// @Param        page          query     int     false  "Page, from 1"
// @Param        limit         query     int     false  "Page size, max 100"
// @Success      200           {object}  response.Envelope
// @Failure      400           {object}  response.Envelope
// @Router       /cars [get]
func (h *CarHandler) List(c echo.Context) error {
	q := newQuery(c)
	f := domain.CarFilter{
		Status:       domain.CarStatus(q.str("status")),
		BrandID:      q.str("brand"),
		CategoryID:   q.str("category"),
		SellerID:     q.str("seller"),
		FuelType:     domain.FuelType(q.str("fuelType")),
		Transmission: domain.Transmission(q.str("transmission")),
		BodyType:     domain.BodyType(q.str("bodyType")),
		Condition:    domain.Condition(q.str("condition")),
		City:         q.str("city"),
		MinPrice:     q.number("minPrice"),
		MaxPrice:     q.number("maxPrice"),
		MinYear:      q.integer("minYear"),
		MaxYear:      q.integer("maxYear"),
		Search:       q.str("search"),
		SortBy:       q.str("sortBy"),
		SortOrder:    domain.SortOrder(q.str("sortOrder")),
	}
	p := q.page()
	if err := q.err(); err != nil {
		return err
	}

	res, err := h.cars.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Cars retrieved successfully", listData("cars", res.Items, res.Pagination))
}

// Get returns one car with its brand, category and seller, and counts a view.
//
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  response.Envelope{data=carData}
// @Failure      404  {object}  response.Envelope
// @Router       /cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	detail, err := h.cars.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	h.recordView(c, detail.ID)
	return response.Success(c, http.StatusOK, "Car retrieved successfully", carData{Car: detail})
}

// recordView never fails the request.
func (h *CarHandler) recordView(c echo.Context, id string) {
	ctx := c.Request().Context()
	var err error
	if h.views != nil {
		err = h.views.Enqueue(ctx, id)
	} else {
		err = h.cars.RecordView(ctx, id)
	}
	if err != nil {
		metrics.CarViewsTotal.WithLabelValues("failed").Inc()
		h.logger.Warn().Err(err).Str("car_id", id).Msg("failed to record car view")
		return
	}
	metrics.CarViewsTotal.WithLabelValues("accepted").Inc()
}

// Create lists a car for sale. The caller becomes the seller.
//
// @Summary      Create a car listing
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCarRequest  true  "Listing"
// @Success      201   {object}  response.Envelope{data=carData}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	var req createCarRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	car, err := h.cars.Create(c.Request().Context(), actor(c), ports.CarInput{
		Title:         req.Title,
		Description:   req.Description,
		BrandID:       req.Brand,
		CategoryID:    req.Category,
		CarModel:      req.CarModel,
		Year:          req.Year,
		Price:         req.Price,
		Mileage:       req.Mileage,
		FuelType:      domain.FuelType(req.FuelType),
		Transmission:  domain.Transmission(req.Transmission),
		BodyType:      domain.BodyType(req.BodyType),
		Color:         req.Color,
		EngineSize:    req.EngineSize,
		Horsepower:    req.Horsepower,
		Drivetrain:    domain.Drivetrain(req.Drivetrain),
		Condition:     domain.Condition(req.Condition),
		Features:      req.Features,
		Images:        req.Images,
		Location:      req.Location.toDomain(),
		IsPromoted:    req.IsPromoted,
		PromotedUntil: req.PromotedUntil,
	})
	if err != nil {
		return err
	}
	metrics.CarsCreatedTotal.WithLabelValues(string(car.BodyType)).Inc()
	return response.Success(c, http.StatusCreated, "Car created successfully", carData{Car: car})
}

// Update edits a listing. Only its seller or an admin may do so.
//
// @Summary      Update a car listing
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Car ID"
// @Param        body  body      updateCarRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=carData}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	var req updateCarRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	car, err := h.cars.Update(c.Request().Context(), actor(c), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Car updated successfully", carData{Car: car})
}

// Delete removes a listing and its favorites.
//
// @Summary      Delete a car listing
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	if err := h.cars.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Car deleted successfully", nil)
}
