package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret is only accepted when ENV=development.
const devJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	HTTP  HTTPConfig
	Cars  CarsConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL        time.Duration `env:"JWT_ACCESS_TTL,  default=24h"`
	RefreshTTL       time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
	BcryptCost       int           `env:"BCRYPT_COST,     default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=car-sale"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type HTTPConfig struct {
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE, default=50"`
	AllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS,  default=http://localhost:3001,http://localhost:3005"`
	BodyLimit          string   `env:"BODY_LIMIT,            default=1M"`
}

type CarsConfig struct {
	RecordViews bool `env:"CARS_RECORD_VIEWS, default=true"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("config: JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Auth.JWTRefreshSecret == "" {
		c.Auth.JWTRefreshSecret = c.Auth.JWTSecret
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("config: BCRYPT_COST %d out of range 4..31", c.Auth.BcryptCost)
	}
	if c.HTTP.RateLimitPerMinute < 0 {
		return errors.New("config: RATE_LIMIT_PER_MINUTE cannot be negative")
	}
	origins := c.HTTP.AllowedOrigins[:0]
	for _, o := range c.HTTP.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.AllowedOrigins = origins
	return nil
}
