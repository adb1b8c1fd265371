package domain

import (
	"strings"
	"time"
)

// Brand is a car manufacturer. Brands are managed by admins.
type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks field bounds.
func (b *Brand) Validate() error {
	ve := &ValidationError{}
	b.Name = strings.TrimSpace(b.Name)
	checkLen(ve, "name", b.Name, 2, 50)
	return ve.OrNil()
}

// BrandFilter narrows brand listings.
type BrandFilter struct {
	Active *bool
	Search string
}

// Category groups cars by use, e.g. SUV or family car.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks field bounds.
func (c *Category) Validate() error {
	ve := &ValidationError{}
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	checkLen(ve, "name", c.Name, 2, 50)
	checkLen(ve, "description", c.Description, 0, 500)
	return ve.OrNil()
}

// CategoryFilter narrows category listings. Search matches name or description.
type CategoryFilter struct {
	Active *bool
	Search string
}
