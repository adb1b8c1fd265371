package domain

import "time"

// Favorite bookmarks a car for a user. A user can favorite a car once.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CarID     string    `json:"carId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FavoriteDetail is a favorite with its car resolved.
type FavoriteDetail struct {
	*Favorite
	Car *Car `json:"car,omitempty"`
}

// FavoriteFilter narrows favorite listings; an empty UserID lists all.
type FavoriteFilter struct {
	UserID string
}
