package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

const (
	brandsCollection = "brands"
	brandNameIndex   = "brands_name_unique"
)

type BrandRepository struct {
	col *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{col: db.Collection(brandsCollection)}
}

type brandDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Logo      string             `bson:"logo,omitempty"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d brandDoc) toDomain() *domain.Brand {
	return &domain.Brand{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Logo:      d.Logo,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func brandConflict(mongo.WriteException) error { return domain.ErrBrandExists }

func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := brandDoc{
		ID:        primitive.NewObjectID(),
		Name:      b.Name,
		Logo:      b.Logo,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, domain.ErrBrandNotFound, brandConflict)
	}
	return doc.toDomain(), nil
}

func (r *BrandRepository) FindByID(ctx context.Context, id string) (*domain.Brand, error) {
	oid, err := objectID(id, domain.ErrBrandNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc brandDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrBrandNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *BrandRepository) FindByName(ctx context.Context, name string) (*domain.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc brandDoc
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := r.col.FindOne(ctx, bson.M{"name": name}, opts).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrBrandNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	oid, err := objectID(b.ID, domain.ErrBrandNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":       b.Name,
		"logo":       b.Logo,
		"is_active":  b.IsActive,
		"updated_at": b.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc brandDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrBrandNotFound, brandConflict)
	}
	return doc.toDomain(), nil
}

func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrBrandNotFound)
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
		return domain.ErrBrandNotFound
	}
	return nil
}

func (r *BrandRepository) List(ctx context.Context, f domain.BrandFilter, p domain.PageRequest) ([]*domain.Brand, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.Search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(p).SetSort(bson.D{{Key: "name", Value: 1}}).SetCollation(caseInsensitive)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []brandDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Brand, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// EnsureIndexes creates the case-insensitive unique name index.
func (r *BrandRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName(brandNameIndex).SetUnique(true).SetCollation(caseInsensitive),
	})
	return err
}
