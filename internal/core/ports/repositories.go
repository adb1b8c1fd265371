package ports

import (
	"context"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

// Repositories return domain.NotFound-kind errors for unknown or malformed
// IDs and domain.ErrConflict-kind errors when a unique index rejects a write.

// UserRepository persists identities.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail expects a normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByPhone expects a normalized phone.
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	List(ctx context.Context, f domain.UserFilter, p domain.PageRequest) ([]*domain.User, int64, error)
}

// BrandRepository persists brands. Names are unique ignoring case.
type BrandRepository interface {
	Create(ctx context.Context, b *domain.Brand) (*domain.Brand, error)
	FindByID(ctx context.Context, id string) (*domain.Brand, error)
	// FindByName matches ignoring case.
	FindByName(ctx context.Context, name string) (*domain.Brand, error)
	Update(ctx context.Context, b *domain.Brand) (*domain.Brand, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.BrandFilter, p domain.PageRequest) ([]*domain.Brand, int64, error)
}

// CategoryRepository persists categories. Names are unique ignoring case.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) ([]*domain.Category, int64, error)
}

// CarRepository persists car listings.
type CarRepository interface {
	Create(ctx context.Context, c *domain.Car) (*domain.Car, error)
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	Update(ctx context.Context, c *domain.Car) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.CarFilter, p domain.PageRequest) ([]*domain.Car, int64, error)
	// IncrementViews atomically adds one to the view counter.
	IncrementViews(ctx context.Context, id string) error
	// AdjustFavorites atomically adds delta to the favorite counter.
	AdjustFavorites(ctx context.Context, id string, delta int64) error
	SetStatus(ctx context.Context, id string, status domain.CarStatus) error
}

// FavoriteRepository persists favorites. (user, car) is unique.
type FavoriteRepository interface {
	Create(ctx context.Context, f *domain.Favorite) (*domain.Favorite, error)
	FindByID(ctx context.Context, id string) (*domain.Favorite, error)
	Delete(ctx context.Context, id string) error
	// DeleteByCar removes every favorite of a car and reports how many.
	DeleteByCar(ctx context.Context, carID string) (int64, error)
	List(ctx context.Context, f domain.FavoriteFilter, p domain.PageRequest) ([]*domain.Favorite, int64, error)
}

// SaleRepository persists sales.
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error)
	FindByID(ctx context.Context, id string) (*domain.Sale, error)
	Update(ctx context.Context, s *domain.Sale) (*domain.Sale, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.SaleFilter, p domain.PageRequest) ([]*domain.Sale, int64, error)
}
