package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
	appName        = "car-marketplace-api"
)

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Repositories bundles every collection-backed repository.
type Repositories struct {
	Users      *UserRepository
	Brands     *BrandRepository
	Categories *CategoryRepository
	Cars       *CarRepository
	Favorites  *FavoriteRepository
	Sales      *SaleRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Brands:     NewBrandRepository(db),
		Categories: NewCategoryRepository(db),
		Cars:       NewCarRepository(db),
		Favorites:  NewFavoriteRepository(db),
		Sales:      NewSaleRepository(db),
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes of every collection. The unique indexes
// are what enforce email, phone, name and favorite uniqueness.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for name, ix := range map[string]indexer{
		usersCollection:      r.Users,
		brandsCollection:     r.Brands,
		categoriesCollection: r.Categories,
		carsCollection:       r.Cars,
		favoritesCollection:  r.Favorites,
		salesCollection:      r.Sales,
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

// caseInsensitive is the collation used for name lookups and unique indexes.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// objectID parses a hex ID. Malformed IDs are reported as notFound so callers
// cannot distinguish them from unknown ones.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// optionalObjectID parses id for a reference field; empty stays NilObjectID.
func optionalObjectID(id string) primitive.ObjectID {
	if id == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

// translate maps driver errors onto domain errors.
func translate(err error, notFound error, conflict func(mongo.WriteException) error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(err):
		var we mongo.WriteException
		if conflict != nil && errors.As(err, &we) {
			if mapped := conflict(we); mapped != nil {
				return mapped
			}
		}
		return fmt.Errorf("%w: duplicate key", domain.ErrConflict)
	}
	return err
}

func pageOptions(p domain.PageRequest) *options.FindOptions {
	p = p.Normalize()
	return options.Find().SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// duplicateOn reports whether a duplicate-key write error names index.
func duplicateOn(we mongo.WriteException, index string) bool {
	for _, e := range we.WriteErrors {
		if strings.Contains(e.Message, index) {
			return true
		}
	}
	return false
}
