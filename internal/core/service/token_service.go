package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
	tokenIssuer     = "car-marketplace"
)

// accessClaims is the JWT payload of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// refreshClaims carries only the subject; it can renew a session and nothing else.
type refreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenService signs and verifies HS256 tokens. Access and refresh tokens use
// different secrets and audiences so one can never stand in for the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens, used for the cookie max age.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) Issue(u *domain.User) (*ports.TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.accessTTL)

	access := accessClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: s.registered(u.ID, audienceAccess, now, accessExp),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := refreshClaims{
		UserID:           u.ID,
		RegisteredClaims: s.registered(u.ID, audienceRefresh, now, now.Add(s.refreshTTL)),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: accessExp,
		ExpiresIn:       s.accessTTL,
	}, nil
}

func (s *TokenService) registered(sub, aud string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   sub,
		Audience:  jwt.ClaimStrings{aud},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (s *TokenService) VerifyAccess(token string) (*ports.AccessClaims, error) {
	claims := &accessClaims{}
	if err := s.parse(token, claims, s.accessSecret, audienceAccess); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, domain.ErrTokenMalformed
	}
	return &ports.AccessClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) VerifyRefresh(token string) (string, error) {
	claims := &refreshClaims{}
	if err := s.parse(token, claims, s.refreshSecret, audienceRefresh); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", domain.ErrTokenMalformed
	}
	return claims.UserID, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte, aud string) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return classifyTokenError(err)
}

// classifyTokenError maps jwt parse failures onto the three verification outcomes.
func classifyTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenSignatureInvalid
	default:
		return domain.ErrTokenMalformed
	}
}
