package domain

import (
	"strings"
	"time"
)

type (
	FuelType     string
	Transmission string
	BodyType     string
	Drivetrain   string
	Condition    string
	CarStatus    string
)

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
	FuelLPG      FuelType = "lpg"

	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"

	BodySedan       BodyType = "sedan"
	BodyHatchback   BodyType = "hatchback"
	BodySUV         BodyType = "suv"
	BodyCoupe       BodyType = "coupe"
	BodyConvertible BodyType = "convertible"
	BodyWagon       BodyType = "wagon"
	BodyPickup      BodyType = "pickup"

	DrivetrainFWD Drivetrain = "fwd"
	DrivetrainRWD Drivetrain = "rwd"
	DrivetrainAWD Drivetrain = "awd"
	Drivetrain4WD Drivetrain = "4wd"

	ConditionNew       Condition = "new"
	ConditionUsed      Condition = "used"
	ConditionCertified Condition = "certified"

	CarActive   CarStatus = "active"
	CarSold     CarStatus = "sold"
	CarPending  CarStatus = "pending"
	CarInactive CarStatus = "inactive"
)

const (
	MinCarYear     = 1900
	MaxCarImages   = 20
	MaxCarFeatures = 50
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is where a car can be inspected.
type Location struct {
	City        string       `json:"city"`
	District    string       `json:"district"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Car is a listing owned by its seller.
type Car struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	BrandID       string       `json:"brandId"`
	CategoryID    string       `json:"categoryId"`
	CarModel      string       `json:"carModel"`
	Year          int          `json:"year"`
	Price         float64      `json:"price"`
	Mileage       int          `json:"mileage"`
	FuelType      FuelType     `json:"fuelType"`
	Transmission  Transmission `json:"transmission"`
	BodyType      BodyType     `json:"bodyType"`
	Color         string       `json:"color"`
	EngineSize    float64      `json:"engineSize"`
	Horsepower    int          `json:"horsepower,omitempty"`
	Drivetrain    Drivetrain   `json:"drivetrain"`
	Condition     Condition    `json:"condition"`
	Features      []string     `json:"features"`
	Images        []string     `json:"images"`
	Location      Location     `json:"location"`
	SellerID      string       `json:"sellerId"`
	Status        CarStatus    `json:"status"`
	ViewCount     int64        `json:"viewCount"`
	FavoriteCount int64        `json:"favoriteCount"`
	IsPromoted    bool         `json:"isPromoted"`
	PromotedUntil *time.Time   `json:"promotedUntil,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Validate checks every field bound and the promotion rule. now determines
// the latest accepted model year.
func (c *Car) Validate(now time.Time) error {
	ve := &ValidationError{}

	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.CarModel = strings.TrimSpace(c.CarModel)
	c.Color = strings.TrimSpace(c.Color)
	c.Location.City = strings.TrimSpace(c.Location.City)
	c.Location.District = strings.TrimSpace(c.Location.District)

	checkLen(ve, "title", c.Title, 10, 100)
	checkLen(ve, "description", c.Description, 50, 2000)
	checkLen(ve, "carModel", c.CarModel, 1, 50)
	checkLen(ve, "color", c.Color, 1, 30)
	if c.BrandID == "" {
		ve.Add("brand", "brand is required")
	}
	if c.CategoryID == "" {
		ve.Add("category", "category is required")
	}

	if c.Year < MinCarYear || c.Year > now.Year()+1 {
		ve.Add("year", "year must be between 1900 and next year")
	}
	checkMin(ve, "price", c.Price, 0)
	checkMin(ve, "mileage", float64(c.Mileage), 0)
	checkRange(ve, "engineSize", c.EngineSize, 0.1, 10)
	if c.Horsepower != 0 {
		checkRange(ve, "horsepower", float64(c.Horsepower), 1, 2000)
	}

	checkEnum(ve, "fuelType", c.FuelType, FuelGasoline, FuelDiesel, FuelHybrid, FuelElectric, FuelLPG)
	checkEnum(ve, "transmission", c.Transmission, TransmissionManual, TransmissionAutomatic)
	checkEnum(ve, "bodyType", c.BodyType, BodySedan, BodyHatchback, BodySUV, BodyCoupe, BodyConvertible, BodyWagon, BodyPickup)
	checkEnum(ve, "drivetrain", c.Drivetrain, DrivetrainFWD, DrivetrainRWD, DrivetrainAWD, Drivetrain4WD)
	checkEnum(ve, "condition", c.Condition, ConditionNew, ConditionUsed, ConditionCertified)
	checkEnum(ve, "status", c.Status, CarActive, CarSold, CarPending, CarInactive)

	if len(c.Features) > MaxCarFeatures {
		ve.Add("features", "features cannot exceed 50 items")
	}
	if len(c.Images) < 1 || len(c.Images) > MaxCarImages {
		ve.Add("images", "car must have between 1 and 20 images")
	}

	checkLen(ve, "location.city", c.Location.City, 1, 0)
	checkLen(ve, "location.district", c.Location.District, 1, 0)
	if co := c.Location.Coordinates; co != nil {
		checkRange(ve, "location.coordinates.lat", co.Lat, -90, 90)
		checkRange(ve, "location.coordinates.lng", co.Lng, -180, 180)
	}

	if c.IsPromoted && c.PromotedUntil == nil {
		ve.Add("promotedUntil", "promotedUntil is required when the car is promoted")
	}

	return ve.OrNil()
}

// CarDetail is a car with its references resolved.
type CarDetail struct {
	*Car
	Brand    *Brand       `json:"brand,omitempty"`
	Category *Category    `json:"category,omitempty"`
	Seller   *UserSummary `json:"seller,omitempty"`
}

// CarSortFields whitelists the fields a listing may be sorted by.
var CarSortFields = map[string]bool{
	"createdAt": true,
	"price":     true,
	"year":      true,
	"mileage":   true,
	"viewCount": true,
	"title":     true,
}

// CarFilter narrows car listings. Zero values mean "no constraint".
type CarFilter struct {
	Status       CarStatus
	BrandID      string
	CategoryID   string
	SellerID     string
	FuelType     FuelType
	Transmission Transmission
	BodyType     BodyType
	Condition    Condition
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	MinYear      int
	MaxYear      int
	Search       string
	SortBy       string
	SortOrder    SortOrder
}

// Normalize fills the default sort and rejects fields outside the whitelist.
func (f CarFilter) Normalize() CarFilter {
	if !CarSortFields[f.SortBy] {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != SortAsc {
		f.SortOrder = SortDesc
	}
	return f
}
