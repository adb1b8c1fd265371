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

// CategoryService manages categories; every mutation is admin-only.
type CategoryService struct {
	repo   ports.CategoryRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCategoryService(repo ports.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger, now: time.Now}
}

func (s *CategoryService) List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) (*ports.ListResult[*domain.Category], error) {
	p = p.Normalize()
	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult[*domain.Category]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, actor *domain.Actor, in ports.CategoryInput) (*domain.Category, error) {
	if err := policy.Authorize(actor, policy.ResourceCategory, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Category{Name: in.Name, Description: in.Description, IsActive: boolOr(in.IsActive, true), CreatedAt: now, UpdatedAt: now}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, "", c.Name); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("category_id", created.ID).Str("name", created.Name).Msg("category created")
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.CategoryPatch) (*domain.Category, error) {
	if err := policy.Authorize(actor, policy.ResourceCategory, policy.ActionUpdate); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := s.checkName(ctx, c.ID, c.Name); err != nil {
			return nil, err
		}
	}

	c.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := policy.Authorize(actor, policy.ResourceCategory, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}

func (s *CategoryService) checkName(ctx context.Context, selfID, name string) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrCategoryExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}

