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

// UserService manages profiles and account status.
type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger, now: time.Now}
}

func (s *UserService) Profile(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	return s.users.FindByID(ctx, actor.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.Actor, in ports.ProfileInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ResourceUser, policy.ActionUpdate, user.ID); err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	phoneChanged := false
	if in.Phone != nil && domain.NormalizePhone(*in.Phone) != user.Phone {
		user.Phone = *in.Phone
		phoneChanged = true
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Address != nil {
		user.Address = in.Address
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if phoneChanged {
		if other, err := s.users.FindByPhone(ctx, user.Phone); err == nil && other.ID != user.ID {
			return nil, domain.ErrPhoneTaken
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}

// SetActive changes an account's status. A user may deactivate their own
// account; reactivation and acting on others is admin-only.
func (s *UserService) SetActive(ctx context.Context, actor *domain.Actor, id string, active bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owners := []string{user.ID}
	if active {
		owners = nil
	}
	if err := policy.Authorize(actor, policy.ResourceUser, policy.ActionUpdate, owners...); err != nil {
		return nil, err
	}

	user.IsActive = active
	user.UpdatedAt = s.now().UTC()
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Bool("active", active).Str("by", actor.UserID).Msg("user status changed")
	return updated, nil
}

func (s *UserService) List(ctx context.Context, actor *domain.Actor, f domain.UserFilter, p domain.PageRequest) (*ports.ListResult[*domain.User], error) {
	if err := policy.Authorize(actor, policy.ResourceUser, policy.ActionList); err != nil {
		return nil, err
	}
	p = p.Normalize()
	items, total, err := s.users.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult[*domain.User]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}
