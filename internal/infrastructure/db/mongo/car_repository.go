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

const carsCollection = "cars"

// carSortColumns maps API sort fields onto stored field names.
var carSortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"year":      "year",
	"mileage":   "mileage",
	"viewCount": "view_count",
	"title":     "title",
}

type CarRepository struct {
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{col: db.Collection(carsCollection)}
}

type coordinatesDoc struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type locationDoc struct {
	City        string          `bson:"city"`
	District    string          `bson:"district"`
	Coordinates *coordinatesDoc `bson:"coordinates,omitempty"`
}

type carDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	BrandID       primitive.ObjectID `bson:"brand_id"`
	CategoryID    primitive.ObjectID `bson:"category_id"`
	CarModel      string             `bson:"car_model"`
	Year          int                `bson:"year"`
	Price         float64            `bson:"price"`
	Mileage       int                `bson:"mileage"`
	FuelType      string             `bson:"fuel_type"`
	Transmission  string             `bson:"transmission"`
	BodyType      string             `bson:"body_type"`
	Color         string             `bson:"color"`
	EngineSize    float64            `bson:"engine_size"`
	Horsepower    int                `bson:"horsepower,omitempty"`
	Drivetrain    string             `bson:"drivetrain"`
	Condition     string             `bson:"condition"`
	Features      []string           `bson:"features"`
	Images        []string           `bson:"images"`
	Location      locationDoc        `bson:"location"`
	SellerID      primitive.ObjectID `bson:"seller_id"`
	Status        string             `bson:"status"`
	ViewCount     int64              `bson:"view_count"`
	FavoriteCount int64              `bson:"favorite_count"`
	IsPromoted    bool               `bson:"is_promoted"`
	PromotedUntil *time.Time         `bson:"promoted_until,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toCarDoc(c *domain.Car) carDoc {
	doc := carDoc{
		ID:            optionalObjectID(c.ID),
		Title:         c.Title,
		Description:   c.Description,
		BrandID:       optionalObjectID(c.BrandID),
		CategoryID:    optionalObjectID(c.CategoryID),
		CarModel:      c.CarModel,
		Year:          c.Year,
		Price:         c.Price,
		Mileage:       c.Mileage,
		FuelType:      string(c.FuelType),
		Transmission:  string(c.Transmission),
		BodyType:      string(c.BodyType),
		Color:         c.Color,
		EngineSize:    c.EngineSize,
		Horsepower:    c.Horsepower,
		Drivetrain:    string(c.Drivetrain),
		Condition:     string(c.Condition),
		Features:      c.Features,
		Images:        c.Images,
		Location:      locationDoc{City: c.Location.City, District: c.Location.District},
		SellerID:      optionalObjectID(c.SellerID),
		Status:        string(c.Status),
		ViewCount:     c.ViewCount,
		FavoriteCount: c.FavoriteCount,
		IsPromoted:    c.IsPromoted,
		PromotedUntil: c.PromotedUntil,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if co := c.Location.Coordinates; co != nil {
		doc.Location.Coordinates = &coordinatesDoc{Lat: co.Lat, Lng: co.Lng}
	}
	if doc.Features == nil {
		doc.Features = []string{}
	}
	return doc
}

func (d carDoc) toDomain() *domain.Car {
	c := &domain.Car{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		BrandID:       hexOrEmpty(d.BrandID),
		CategoryID:    hexOrEmpty(d.CategoryID),
		CarModel:      d.CarModel,
		Year:          d.Year,
		Price:         d.Price,
		Mileage:       d.Mileage,
		FuelType:      domain.FuelType(d.FuelType),
		Transmission:  domain.Transmission(d.Transmission),
		BodyType:      domain.BodyType(d.BodyType),
		Color:         d.Color,
		EngineSize:    d.EngineSize,
		Horsepower:    d.Horsepower,
		Drivetrain:    domain.Drivetrain(d.Drivetrain),
		Condition:     domain.Condition(d.Condition),
		Features:      d.Features,
		Images:        d.Images,
		Location:      domain.Location{City: d.Location.City, District: d.Location.District},
		SellerID:      hexOrEmpty(d.SellerID),
		Status:        domain.CarStatus(d.Status),
		ViewCount:     d.ViewCount,
		FavoriteCount: d.FavoriteCount,
		IsPromoted:    d.IsPromoted,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if co := d.Location.Coordinates; co != nil {
		c.Location.Coordinates = &domain.Coordinates{Lat: co.Lat, Lng: co.Lng}
	}
	if d.PromotedUntil != nil {
		t := d.PromotedUntil.UTC()
		c.PromotedUntil = &t
	}
	return c
}

func (r *CarRepository) Create(ctx context.Context, c *domain.Car) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toCarDoc(c)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, domain.ErrCarNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	oid, err := objectID(id, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc carDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrCarNotFound, nil)
	}
	return doc.toDomain(), nil
}

// Update writes every editable field. The counters are left untouched so
// concurrent views and favorites are never lost to a stale read.
func (r *CarRepository) Update(ctx context.Context, c *domain.Car) (*domain.Car, error) {
	oid, err := objectID(c.ID, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toCarDoc(c)
	set := bson.M{
		"title":          doc.Title,
		"description":    doc.Description,
		"brand_id":       doc.BrandID,
		"category_id":    doc.CategoryID,
		"car_model":      doc.CarModel,
		"year":           doc.Year,
		"price":          doc.Price,
		"mileage":        doc.Mileage,
		"fuel_type":      doc.FuelType,
		"transmission":   doc.Transmission,
		"body_type":      doc.BodyType,
		"color":          doc.Color,
		"engine_size":    doc.EngineSize,
		"horsepower":     doc.Horsepower,
		"drivetrain":     doc.Drivetrain,
		"condition":      doc.Condition,
		"features":       doc.Features,
		"images":         doc.Images,
		"location":       doc.Location,
		"status":         doc.Status,
		"is_promoted":    doc.IsPromoted,
		"promoted_until": doc.PromotedUntil,
		"updated_at":     doc.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out carDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		return nil, translate(err, domain.ErrCarNotFound, nil)
	}
	return out.toDomain(), nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrCarNotFound)
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
		return domain.ErrCarNotFound
	}
	return nil
}

// carQuery builds the find filter and sort document for a listing.
func carQuery(f domain.CarFilter) (bson.M, bson.D) {
	f = f.Normalize()
	filter := bson.M{}

	setStr := func(key, value string) {
		if value != "" {
			filter[key] = value
		}
	}
	setStr("status", string(f.Status))
	setStr("fuel_type", string(f.FuelType))
	setStr("transmission", string(f.Transmission))
	setStr("body_type", string(f.BodyType))
	setStr("condition", string(f.Condition))

	setRef := func(key, id string) {
		if id == "" {
			return
		}
		// An unparsable reference can match nothing.
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			filter["_id"] = primitive.NilObjectID
			return
		}
		filter[key] = oid
	}
	setRef("brand_id", f.BrandID)
	setRef("category_id", f.CategoryID)
	setRef("seller_id", f.SellerID)

	if f.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	year := bson.M{}
	if f.MinYear != 0 {
		year["$gte"] = f.MinYear
	}
	if f.MaxYear != 0 {
		year["$lte"] = f.MaxYear
	}
	if len(year) > 0 {
		filter["year"] = year
	}

	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"car_model": rx},
			bson.M{"color": rx},
		}
	}

	dir := -1
	if f.SortOrder == domain.SortAsc {
		dir = 1
	}
	sort := bson.D{{Key: carSortColumns[f.SortBy], Value: dir}}
	if f.SortBy != "createdAt" {
		sort = append(sort, bson.E{Key: "created_at", Value: -1})
	}
	return filter, sort
}

func (r *CarRepository) List(ctx context.Context, f domain.CarFilter, p domain.PageRequest) ([]*domain.Car, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, sort := carQuery(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(p).SetSort(sort))
	if err != nil {
		return nil, 0, err
	}
	var docs []carDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Car, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *CarRepository) IncrementViews(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{"view_count": 1}})
}

func (r *CarRepository) AdjustFavorites(ctx context.Context, id string, delta int64) error {
	oid, err := objectID(id, domain.ErrCarNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	if delta < 0 {
		// Never drive the counter below zero.
		filter["favorite_count"] = bson.M{"$gte": -delta}
	}
	_, err = r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"favorite_count": delta}})
	return err
}

func (r *CarRepository) SetStatus(ctx context.Context, id string, status domain.CarStatus) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}})
}

func (r *CarRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id, domain.ErrCarNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

func (r *CarRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "brand_id", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}}},
	})
	return err
}
