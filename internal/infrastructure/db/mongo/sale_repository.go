package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

const salesCollection = "sales"

type SaleRepository struct {
	col *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{col: db.Collection(salesCollection)}
}

type saleDocumentsDoc struct {
	Contract         string   `bson:"contract,omitempty"`
	Invoice          string   `bson:"invoice,omitempty"`
	TransferDocument string   `bson:"transfer_document,omitempty"`
	Other            []string `bson:"other,omitempty"`
}

type commissionDoc struct {
	Amount     float64    `bson:"amount"`
	Percentage float64    `bson:"percentage"`
	IsPaid     bool       `bson:"is_paid"`
	PaidDate   *time.Time `bson:"paid_date,omitempty"`
}

type saleDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	CarID              primitive.ObjectID `bson:"car_id"`
	SellerID           primitive.ObjectID `bson:"seller_id"`
	BuyerID            primitive.ObjectID `bson:"buyer_id"`
	Price              float64            `bson:"price"`
	PaymentMethod      string             `bson:"payment_method"`
	PaymentStatus      string             `bson:"payment_status"`
	SaleDate           time.Time          `bson:"sale_date"`
	DeliveryDate       *time.Time         `bson:"delivery_date,omitempty"`
	Notes              string             `bson:"notes,omitempty"`
	Documents          saleDocumentsDoc   `bson:"documents"`
	Status             string             `bson:"status"`
	CancellationReason string             `bson:"cancellation_reason,omitempty"`
	Commission         commissionDoc      `bson:"commission"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func toSaleDoc(s *domain.Sale) saleDoc {
	return saleDoc{
		ID:            optionalObjectID(s.ID),
		CarID:         optionalObjectID(s.CarID),
		SellerID:      optionalObjectID(s.SellerID),
		BuyerID:       optionalObjectID(s.BuyerID),
		Price:         s.Price,
		PaymentMethod: string(s.PaymentMethod),
		PaymentStatus: string(s.PaymentStatus),
		SaleDate:      s.SaleDate,
		DeliveryDate:  s.DeliveryDate,
		Notes:         s.Notes,
		Documents: saleDocumentsDoc{
			Contract:         s.Documents.Contract,
			Invoice:          s.Documents.Invoice,
			TransferDocument: s.Documents.TransferDocument,
			Other:            s.Documents.Other,
		},
		Status:             string(s.Status),
		CancellationReason: s.CancellationReason,
		Commission: commissionDoc{
			Amount:     s.Commission.Amount,
			Percentage: s.Commission.Percentage,
			IsPaid:     s.Commission.IsPaid,
			PaidDate:   s.Commission.PaidDate,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (d saleDoc) toDomain() *domain.Sale {
	return &domain.Sale{
		ID:            d.ID.Hex(),
		CarID:         hexOrEmpty(d.CarID),
		SellerID:      hexOrEmpty(d.SellerID),
		BuyerID:       hexOrEmpty(d.BuyerID),
		Price:         d.Price,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		PaymentStatus: domain.PaymentStatus(d.PaymentStatus),
		SaleDate:      d.SaleDate.UTC(),
		DeliveryDate:  utcPtr(d.DeliveryDate),
		Notes:         d.Notes,
		Documents: domain.SaleDocuments{
			Contract:         d.Documents.Contract,
			Invoice:          d.Documents.Invoice,
			TransferDocument: d.Documents.TransferDocument,
			Other:            d.Documents.Other,
		},
		Status:             domain.SaleStatus(d.Status),
		CancellationReason: d.CancellationReason,
		Commission: domain.Commission{
			Amount:     d.Commission.Amount,
			Percentage: d.Commission.Percentage,
			IsPaid:     d.Commission.IsPaid,
			PaidDate:   utcPtr(d.Commission.PaidDate),
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toSaleDoc(s)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translate(err, domain.ErrSaleNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	oid, err := objectID(id, domain.ErrSaleNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc saleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, domain.ErrSaleNotFound, nil)
	}
	return doc.toDomain(), nil
}

func (r *SaleRepository) Update(ctx context.Context, s *domain.Sale) (*domain.Sale, error) {
	oid, err := objectID(s.ID, domain.ErrSaleNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toSaleDoc(s)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, translate(err, domain.ErrSaleNotFound, nil)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrSaleNotFound
	}
	return doc.toDomain(), nil
}

func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrSaleNotFound)
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
		return domain.ErrSaleNotFound
	}
	return nil
}

// saleQuery builds the find filter; ok is false when the filter can match
// nothing.
func saleQuery(f domain.SaleFilter) (filter bson.M, ok bool) {
	filter = bson.M{}
	if f.ParticipantID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ParticipantID)
		if err != nil {
			return nil, false
		}
		filter["$or"] = bson.A{
			bson.M{"seller_id": oid},
			bson.M{"buyer_id": oid},
		}
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = string(f.PaymentStatus)
	}
	return filter, true
}

func (r *SaleRepository) List(ctx context.Context, f domain.SaleFilter, p domain.PageRequest) ([]*domain.Sale, int64, error) {
	filter, ok := saleQuery(f)
	if !ok {
		return []*domain.Sale{}, 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(p).SetSort(bson.D{{Key: "sale_date", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var docs []saleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Sale, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *SaleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "sale_date", Value: -1}}},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "sale_date", Value: -1}}},
		{Keys: bson.D{{Key: "car_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
