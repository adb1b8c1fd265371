package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

const (
	favoritesCollection = "favorites"
	favoritePairIndex   = "favorites_user_car_unique"
)

type FavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{col: db.Collection(favoritesCollection)}
}

type favoriteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CarID     primitive.ObjectID `bson:"car_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d favoriteDoc) toDomain() *domain.Favorite {
	return &domain.Favorite{
		ID:        d.ID.Hex(),
		UserID:    hexOrEmpty(d.UserID),
		CarID:     hexOrEmpty(d.CarID),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func favoriteConflict(mongo.WriteException) error { return domain.ErrFavoriteExists }

func (r *FavoriteRepository) Create(ctx context.Context, f *domain.Favorite) (*domain.Favorite, error) {
	userID, err := objectID(f.UserID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	carID, err := objectID(f.CarID, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := favoriteDoc{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		CarID:     carID,
		CreatedAt: f.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, domain.ErrFavoriteNotFound, favoriteConflict)
	}
	return doc.toDomain(), nil
}

func (r *FavoriteRepository) FindByID(ctx context.Context, id string) (*domain.Favorite, error) {
	oid, err := objectID(id, domain.ErrFavoriteNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc favoriteDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrFavoriteNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrFavoriteNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepository) DeleteByCar(ctx context.Context, carID string) (int64, error) {
	oid, err := objectID(carID, domain.ErrCarNotFound)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"car_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *FavoriteRepository) List(ctx context.Context, f domain.FavoriteFilter, p domain.PageRequest) ([]*domain.Favorite, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		oid, err := objectID(f.UserID, domain.ErrUserNotFound)
		if err != nil {
			return []*domain.Favorite{}, 0, nil
		}
		filter["user_id"] = oid
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(p).SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var docs []favoriteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Favorite, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *FavoriteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "car_id", Value: 1}},
			Options: options.Index().SetName(favoritePairIndex).SetUnique(true),
		},
		{Keys: bson.D{{Key: "car_id", Value: 1}}},
	})
	return err
}
