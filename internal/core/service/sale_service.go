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

type SaleService struct {
	sales  ports.SaleRepository
	cars   ports.CarRepository
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewSaleService(sales ports.SaleRepository, cars ports.CarRepository, users ports.UserRepository, logger zerolog.Logger) *SaleService {
	return &SaleService{sales: sales, cars: cars, users: users, logger: logger, now: time.Now}
}

// List returns every sale to admins and, to everyone else, only the sales
// they sold or bought.
func (s *SaleService) List(ctx context.Context, actor *domain.Actor, f domain.SaleFilter, p domain.PageRequest) (*ports.ListResult[*domain.Sale], error) {
	d := policy.Evaluate(actor, policy.ResourceSale, policy.ActionList)
	if err := d.Err(); err != nil {
		return nil, err
	}
	if d.Scope == policy.ScopeOwn {
		f.ParticipantID = actor.UserID
	}
	p = p.Normalize()
	items, total, err := s.sales.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult[*domain.Sale]{Items: items, Pagination: domain.NewPagination(p, total)}, nil
}

func (s *SaleService) Get(ctx context.Context, actor *domain.Actor, id string) (*domain.SaleDetail, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ResourceSale, policy.ActionRead, sale.SellerID, sale.BuyerID); err != nil {
		return nil, err
	}

	detail := &domain.SaleDetail{Sale: sale}
	if car, err := s.cars.FindByID(ctx, sale.CarID); err == nil {
		detail.Car = car
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u, err := s.users.FindByID(ctx, sale.SellerID); err == nil {
		detail.Seller = u.Summary()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u, err := s.users.FindByID(ctx, sale.BuyerID); err == nil {
		detail.Buyer = u.Summary()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return detail, nil
}

// Create records a sale of a car by its seller (or an admin on the seller's
// behalf). The seller on the record is always the car's seller.
func (s *SaleService) Create(ctx context.Context, actor *domain.Actor, in ports.SaleInput) (*domain.Sale, error) {
	if err := policy.Authorize(actor, policy.ResourceSale, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sale := &domain.Sale{
		CarID:              in.CarID,
		BuyerID:            in.BuyerID,
		Price:              in.Price,
		PaymentMethod:      in.PaymentMethod,
		PaymentStatus:      in.PaymentStatus,
		SaleDate:           now,
		DeliveryDate:       in.DeliveryDate,
		Notes:              in.Notes,
		Documents:          in.Documents,
		Status:             in.Status,
		CancellationReason: in.CancellationReason,
		Commission:         in.Commission,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.SaleDate != nil {
		sale.SaleDate = in.SaleDate.UTC()
	}
	if sale.PaymentStatus == "" {
		sale.PaymentStatus = domain.PaymentPending
	}
	if sale.Status == "" {
		sale.Status = domain.SalePending
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	car, err := s.cars.FindByID(ctx, sale.CarID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCarRef
		}
		return nil, err
	}
	// Selling a car is a mutation of that car.
	if err := policy.Authorize(actor, policy.ResourceCar, policy.ActionUpdate, car.SellerID); err != nil {
		return nil, err
	}
	if car.Status == domain.CarSold {
		return nil, domain.ErrCarNotAvailable
	}
	sale.SellerID = car.SellerID

	if sale.BuyerID == sale.SellerID {
		return nil, domain.ErrSelfPurchase
	}
	if _, err := s.users.FindByID(ctx, sale.BuyerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidBuyerRef
		}
		return nil, err
	}

	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("sale_id", created.ID).Str("car_id", created.CarID).Str("seller_id", created.SellerID).Msg("sale created")

	if created.Status == domain.SaleCompleted {
		s.setCarStatus(ctx, created.CarID, domain.CarSold)
	}
	return created, nil
}

func (s *SaleService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.SalePatch) (*domain.Sale, error) {
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ResourceSale, policy.ActionUpdate, sale.SellerID); err != nil {
		return nil, err
	}

	wasCompleted := sale.Status == domain.SaleCompleted
	setIf(&sale.Price, in.Price)
	setIf(&sale.PaymentMethod, in.PaymentMethod)
	setIf(&sale.PaymentStatus, in.PaymentStatus)
	setIf(&sale.Notes, in.Notes)
	setIf(&sale.Documents, in.Documents)
	setIf(&sale.Status, in.Status)
	setIf(&sale.CancellationReason, in.CancellationReason)
	setIf(&sale.Commission, in.Commission)
	if in.SaleDate != nil {
		sale.SaleDate = in.SaleDate.UTC()
	}
	if in.DeliveryDate != nil {
		sale.DeliveryDate = in.DeliveryDate
	}
	if sale.Status != domain.SaleCancelled {
		sale.CancellationReason = ""
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}

	sale.UpdatedAt = s.now().UTC()
	updated, err := s.sales.Update(ctx, sale)
	if err != nil {
		return nil, err
	}
	switch {
	case !wasCompleted && updated.Status == domain.SaleCompleted:
		s.setCarStatus(ctx, updated.CarID, domain.CarSold)
	case wasCompleted && updated.Status != domain.SaleCompleted:
		s.setCarStatus(ctx, updated.CarID, domain.CarActive)
	}
	return updated, nil
}

func (s *SaleService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if actor == nil {
		return domain.ErrAuthenticationRequired
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ResourceSale, policy.ActionDelete, sale.SellerID); err != nil {
		return err
	}
	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("sale_id", id).Str("by", actor.UserID).Msg("sale deleted")
	return nil
}

// setCarStatus follows a sale in or out of completed. Failures are logged.
func (s *SaleService) setCarStatus(ctx context.Context, carID string, status domain.CarStatus) {
	if err := s.cars.SetStatus(ctx, carID, status); err != nil {
		s.logger.Warn().Err(err).Str("car_id", carID).Str("status", string(status)).Msg("failed to update car status")
	}
}
