package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

// AuthService implements registration, login, refresh and per-request
// authentication.
type AuthService struct {
	users      ports.UserRepository
	tokens     ports.TokenService
	bcryptCost int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, bcryptCost int, logger zerolog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	if role == domain.RoleAdmin {
		return nil, domain.Invalid("admin role cannot be self-assigned")
	}

	now := s.now().UTC()
	user := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      role,
		IsActive:  true,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ve := &domain.ValidationError{}
	if err := user.Validate(); err != nil && !errors.As(err, &ve) {
		return nil, err
	}
	if len(in.Password) < domain.MinPasswordLength {
		ve.Add("password", "password must be at least 6 characters")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	// Advisory pre-checks for a precise message; the unique indexes decide.
	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByPhone(ctx, user.Phone); err == nil {
		return nil, domain.ErrPhoneTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.Issue(created)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return &ports.AuthResult{User: created, Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenRequired
	}
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.liveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Actor, error) {
	if accessToken == "" {
		return nil, domain.ErrTokenRequired
	}
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.liveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	// The role comes from the stored identity so a demotion takes effect
	// before the token expires.
	return user.Actor(), nil
}

// liveUser loads the identity behind a token. Missing and inactive users are
// reported exactly like a malformed token.
func (s *AuthService) liveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrTokenInvalid
	}
	return user, nil
}
