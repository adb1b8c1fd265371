package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/policy"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

// FavoriteService manages a user's saved cars and keeps each car's
// favorite counter in step.
type FavoriteService struct {
	favorites ports.FavoriteRepository
	cars      ports.CarRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewFavoriteService(favorites ports.FavoriteRepository, cars ports.CarRepository, logger zerolog.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, cars: cars, logger: logger, now: time.Now}
}

func (s *FavoriteService) List(ctx context.Context, actor *domain.Actor, p domain.PageRequest) (*ports.ListResult[*domain.FavoriteDetail], error) {
	d := policy.Evaluate(actor, policy.ResourceFavorite, policy.ActionList)
	if err := d.Err(); err != nil {
		return nil, err
	}

	f := domain.FavoriteFilter{}
	if d.Scope == policy.ScopeOwn {
		f.UserID = actor.UserID
	}
	p = p.Normalize()
	favs, total, err := s.favorites.List(ctx, f, p)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.FavoriteDetail, 0, len(favs))
	for _, fav := range favs {
		detail := &domain.FavoriteDetail{Favorite: fav}
		car, err := s.cars.FindByID(ctx, fav.CarID)
		switch {
		case err == nil:
			detail.Car = car
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		items = append(items, detail)
	}
	return &ports.ListResult[*domain.FavoriteDetail]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}

func (s *FavoriteService) Create(ctx context.Context, actor *domain.Actor, carID string) (*domain.Favorite, error) {
	if err := policy.Authorize(actor, policy.ResourceFavorite, policy.ActionCreate); err != nil {
		return nil, err
	}
	if carID == "" {
		ve := &domain.ValidationError{}
		ve.Add("carId", "carId is required")
		return nil, ve
	}
	if _, err := s.cars.FindByID(ctx, carID); err != nil {
		return nil, err
	}

	fav, err := s.favorites.Create(ctx, &domain.Favorite{UserID: actor.UserID, CarID: carID, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	if err := s.cars.AdjustFavorites(ctx, carID, 1); err != nil {
		s.logger.Warn().Err(err).Str("car_id", carID).Msg("failed to increment favorite count")
	}
	return fav, nil
}

func (s *FavoriteService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if actor == nil {
		return domain.ErrAuthenticationRequired
	}
	fav, err := s.favorites.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ResourceFavorite, policy.ActionDelete, fav.UserID); err != nil {
		return err
	}
	if err := s.favorites.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cars.AdjustFavorites(ctx, fav.CarID, -1); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Err(err).Str("car_id", fav.CarID).Msg("failed to decrement favorite count")
	}
	return nil
}
