package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "car-sale", cfg.Mongo.Database)
	assert.Equal(t, 50, cfg.HTTP.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:3001", "http://localhost:3005"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.Cars.RecordViews)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                  "production",
		"JWT_SECRET":           "access",
		"JWT_REFRESH_SECRET":   "refresh",
		"JWT_ACCESS_TTL":       "15m",
		"CARS_RECORD_VIEWS":    "false",
		"CORS_ALLOWED_ORIGINS": "https://cars.example.com, ",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "refresh", cfg.Auth.JWTRefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.False(t, cfg.Cars.RecordViews)
	assert.Equal(t, []string{"https://cars.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret in production": {"ENV": "production"},
		"bcrypt cost too low":          {"BCRYPT_COST": "2"},
		"negative rate limit":          {"RATE_LIMIT_PER_MINUTE": "-1"},
		"zero access ttl":              {"JWT_ACCESS_TTL": "0s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
