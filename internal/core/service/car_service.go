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

// CarRepos groups the repositories the car service reads from.
type CarRepos struct {
	Cars       ports.CarRepository
	Brands     ports.BrandRepository
	Categories ports.CategoryRepository
	Users      ports.UserRepository
	Favorites  ports.FavoriteRepository
}

type CarService struct {
	repos       CarRepos
	recordViews bool
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCarService builds a CarService. When recordViews is false RecordView is
// a no-op.
func NewCarService(repos CarRepos, recordViews bool, logger zerolog.Logger) *CarService {
	return &CarService{repos: repos, recordViews: recordViews, logger: logger, now: time.Now}
}

func (s *CarService) List(ctx context.Context, f domain.CarFilter, p domain.PageRequest) (*ports.ListResult[*domain.Car], error) {
	f = f.Normalize()
	p = p.Normalize()
	items, total, err := s.repos.Cars.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult[*domain.Car]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}

// Get returns the car with its brand, category and seller resolved. Missing
// references are left nil.
func (s *CarService) Get(ctx context.Context, id string) (*domain.CarDetail, error) {
	car, err := s.repos.Cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.CarDetail{Car: car}
	if b, err := s.repos.Brands.FindByID(ctx, car.BrandID); err == nil {
		detail.Brand = b
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if c, err := s.repos.Categories.FindByID(ctx, car.CategoryID); err == nil {
		detail.Category = c
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u, err := s.repos.Users.FindByID(ctx, car.SellerID); err == nil {
		detail.Seller = u.Summary()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return detail, nil
}

func (s *CarService) RecordView(ctx context.Context, id string) error {
	if !s.recordViews {
		return nil
	}
	return s.repos.Cars.IncrementViews(ctx, id)
}

func (s *CarService) Create(ctx context.Context, actor *domain.Actor, in ports.CarInput) (*domain.Car, error) {
	if err := policy.Authorize(actor, policy.ResourceCar, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	car := &domain.Car{
		Title:         in.Title,
		Description:   in.Description,
		BrandID:       in.BrandID,
		CategoryID:    in.CategoryID,
		CarModel:      in.CarModel,
		Year:          in.Year,
		Price:         in.Price,
		Mileage:       in.Mileage,
		FuelType:      in.FuelType,
		Transmission:  in.Transmission,
		BodyType:      in.BodyType,
		Color:         in.Color,
		EngineSize:    in.EngineSize,
		Horsepower:    in.Horsepower,
		Drivetrain:    in.Drivetrain,
		Condition:     in.Condition,
		Features:      in.Features,
		Images:        in.Images,
		Location:      in.Location,
		SellerID:      actor.UserID,
		Status:        domain.CarActive,
		IsPromoted:    in.IsPromoted,
		PromotedUntil: in.PromotedUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if car.Features == nil {
		car.Features = []string{}
	}
	if err := car.Validate(now); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, car.BrandID, car.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.repos.Cars.Create(ctx, car)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("car_id", created.ID).Str("seller_id", created.SellerID).Msg("car created")
	return created, nil
}

func (s *CarService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.CarPatch) (*domain.Car, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	car, err := s.repos.Cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ResourceCar, policy.ActionUpdate, car.SellerID); err != nil {
		return nil, err
	}

	brandChanged := in.BrandID != nil && *in.BrandID != car.BrandID
	categoryChanged := in.CategoryID != nil && *in.CategoryID != car.CategoryID
	applyCarPatch(car, in)

	now := s.now().UTC()
	if err := car.Validate(now); err != nil {
		return nil, err
	}
	if brandChanged || categoryChanged {
		brandID, categoryID := "", ""
		if brandChanged {
			brandID = car.BrandID
		}
		if categoryChanged {
			categoryID = car.CategoryID
		}
		if err := s.checkRefs(ctx, brandID, categoryID); err != nil {
			return nil, err
		}
	}

	car.UpdatedAt = now
	updated, err := s.repos.Cars.Update(ctx, car)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("car_id", id).Str("by", actor.UserID).Msg("car updated")
	return updated, nil
}

func (s *CarService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if actor == nil {
		return domain.ErrAuthenticationRequired
	}
	car, err := s.repos.Cars.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ResourceCar, policy.ActionDelete, car.SellerID); err != nil {
		return err
	}
	if err := s.repos.Cars.Delete(ctx, id); err != nil {
		return err
	}
	if n, err := s.repos.Favorites.DeleteByCar(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("car_id", id).Msg("failed to remove favorites of deleted car")
	} else if n > 0 {
		s.logger.Debug().Str("car_id", id).Int64("favorites", n).Msg("removed favorites of deleted car")
	}
	s.logger.Info().Str("car_id", id).Str("by", actor.UserID).Msg("car deleted")
	return nil
}

// checkRefs verifies that the referenced brand and category exist. Empty IDs
// are skipped.
func (s *CarService) checkRefs(ctx context.Context, brandID, categoryID string) error {
	if brandID != "" {
		if _, err := s.repos.Brands.FindByID(ctx, brandID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidBrandRef
			}
			return err
		}
	}
	if categoryID != "" {
		if _, err := s.repos.Categories.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidCategoryRef
			}
			return err
		}
	}
	return nil
}

func applyCarPatch(c *domain.Car, in ports.CarPatch) {
	setIf(&c.Title, in.Title)
	setIf(&c.Description, in.Description)
	setIf(&c.BrandID, in.BrandID)
	setIf(&c.CategoryID, in.CategoryID)
	setIf(&c.CarModel, in.CarModel)
	setIf(&c.Year, in.Year)
	setIf(&c.Price, in.Price)
	setIf(&c.Mileage, in.Mileage)
	setIf(&c.FuelType, in.FuelType)
	setIf(&c.Transmission, in.Transmission)
	setIf(&c.BodyType, in.BodyType)
	setIf(&c.Color, in.Color)
	setIf(&c.EngineSize, in.EngineSize)
	setIf(&c.Horsepower, in.Horsepower)
	setIf(&c.Drivetrain, in.Drivetrain)
	setIf(&c.Condition, in.Condition)
	setIf(&c.Features, in.Features)
	setIf(&c.Images, in.Images)
	setIf(&c.Location, in.Location)
	setIf(&c.Status, in.Status)
	setIf(&c.IsPromoted, in.IsPromoted)
	if in.PromotedUntil != nil {
		c.PromotedUntil = in.PromotedUntil
	}
	if !c.IsPromoted {
		c.PromotedUntil = nil
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
