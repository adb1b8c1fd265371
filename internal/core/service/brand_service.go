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

type BrandService struct {
	repo   ports.BrandRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewBrandService(repo ports.BrandRepository, logger zerolog.Logger) *BrandService {
	return &BrandService{repo: repo, logger: logger, now: time.Now}
}

func (s *BrandService) List(ctx context.Context, f domain.BrandFilter, p domain.PageRequest) (*ports.ListResult[*domain.Brand], error) {
	p = p.Normalize()
	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult[*domain.Brand]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}

func (s *BrandService) Get(ctx context.Context, id string) (*domain.Brand, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BrandService) Create(ctx context.Context, actor *domain.Actor, in ports.BrandInput) (*domain.Brand, error) {
	if err := policy.Authorize(actor, policy.ResourceBrand, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &domain.Brand{Name: in.Name, Logo: in.Logo, IsActive: boolOr(in.IsActive, true), CreatedAt: now, UpdatedAt: now}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, "", b.Name); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("brand_id", created.ID).Str("name", created.Name).Msg("brand created")
	return created, nil
}

func (s *BrandService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.BrandPatch) (*domain.Brand, error) {
	if err := policy.Authorize(actor, policy.ResourceBrand, policy.ActionUpdate); err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Logo != nil {
		b.Logo = *in.Logo
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := s.checkName(ctx, b.ID, b.Name); err != nil {
			return nil, err
		}
	}

	b.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, b)
}

func (s *BrandService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := policy.Authorize(actor, policy.ResourceBrand, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("brand_id", id).Msg("brand deleted")
	return nil
}

// checkName is the advisory duplicate check; the collation index decides.
func (s *BrandService) checkName(ctx context.Context, selfID, name string) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrBrandExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
