package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

func TestCarService_Create(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	b, c := w.brandAndCategory(t)

	car, err := w.carSvc.Create(ctx, seller, carInput(b, c))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if car.SellerID != seller.UserID {
		t.Fatalf("expected seller %s, got %s", seller.UserID, car.SellerID)
	}
	if car.Status != domain.CarActive {
		t.Fatalf("expected active status, got %s", car.Status)
	}
}

func TestCarService_Create_Rejects(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	buyer := w.user(t, domain.RoleBuyer)
	b, c := w.brandAndCategory(t)

	if _, err := w.carSvc.Create(ctx, nil, carInput(b, c)); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous: expected unauthenticated, got %v", err)
	}
	if _, err := w.carSvc.Create(ctx, buyer, carInput(b, c)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("buyer: expected forbidden, got %v", err)
	}
	if _, err := w.carSvc.Create(ctx, seller, carInput(missingID, c)); !errors.Is(err, domain.ErrInvalidBrandRef) {
		t.Fatalf("expected ErrInvalidBrandRef, got %v", err)
	}
	if _, err := w.carSvc.Create(ctx, seller, carInput(b, missingID)); !errors.Is(err, domain.ErrInvalidCategoryRef) {
		t.Fatalf("expected ErrInvalidCategoryRef, got %v", err)
	}

	in := carInput(b, c)
	in.Images = nil
	in.FuelType = "steam"
	_, err := w.carSvc.Create(ctx, seller, in)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["images"]; !ok {
		t.Fatalf("expected images failure, got %v", ve.Fields)
	}
	if _, ok := ve.Fields["fuelType"]; !ok {
		t.Fatalf("expected fuelType failure, got %v", ve.Fields)
	}
}

const missingID = "ffffffffffffffffffffffff"

func TestCarService_UpdateOwnership(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	owner := w.user(t, domain.RoleSeller)
	other := w.user(t, domain.RoleSeller)
	buyer := w.user(t, domain.RoleBuyer)
	admin := w.user(t, domain.RoleAdmin)
	car := w.car(t, owner)

	price := 17000.0
	patch := ports.CarPatch{Price: &price}

	for _, actor := range []*domain.Actor{other, buyer} {
		if _, err := w.carSvc.Update(ctx, actor, car.ID, patch); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", actor.Role, err)
		}
		if err := w.carSvc.Delete(ctx, actor, car.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden delete, got %v", actor.Role, err)
		}
	}

	updated, err := w.carSvc.Update(ctx, owner, car.ID, patch)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Price != 17000 {
		t.Fatalf("expected price update, got %v", updated.Price)
	}

	pending := domain.CarPending
	if _, err := w.carSvc.Update(ctx, admin, car.ID, ports.CarPatch{Status: &pending}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	if _, err := w.carSvc.Update(ctx, owner, missingID, patch); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCarService_Update_ValidatesMergedCar(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	owner := w.user(t, domain.RoleSeller)
	car := w.car(t, owner)

	promoted := true
	if _, err := w.carSvc.Update(ctx, owner, car.ID, ports.CarPatch{IsPromoted: &promoted}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected promotedUntil to be required, got %v", err)
	}
	missing := missingID
	if _, err := w.carSvc.Update(ctx, owner, car.ID, ports.CarPatch{BrandID: &missing}); !errors.Is(err, domain.ErrInvalidBrandRef) {
		t.Fatalf("expected ErrInvalidBrandRef, got %v", err)
	}
}

func TestCarService_GetIsPure(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	car := w.car(t, seller)

	for i := 0; i < 3; i++ {
		detail, err := w.carSvc.Get(ctx, car.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if detail.Brand == nil || detail.Category == nil || detail.Seller == nil {
			t.Fatalf("expected resolved references, got %+v", detail)
		}
	}
	again, _ := w.cars.FindByID(ctx, car.ID)
	if again.ViewCount != 0 {
		t.Fatalf("Get must not count views, got %d", again.ViewCount)
	}
}

func TestCarService_RecordView_Concurrent(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	car := w.car(t, seller)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.carSvc.RecordView(ctx, car.ID); err != nil {
				t.Errorf("RecordView: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := w.cars.FindByID(ctx, car.ID)
	if got.ViewCount != n {
		t.Fatalf("expected %d views, got %d", n, got.ViewCount)
	}
}

func TestCarService_RecordView_Disabled(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	svc := NewCarService(CarRepos{Cars: w.cars, Brands: w.brands, Categories: w.categories, Users: w.users, Favorites: w.favorites}, false, discardLogger)
	seller := w.user(t, domain.RoleSeller)
	car := w.car(t, seller)

	if err := svc.RecordView(ctx, car.ID); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	got, _ := w.cars.FindByID(ctx, car.ID)
	if got.ViewCount != 0 {
		t.Fatalf("expected no views when disabled, got %d", got.ViewCount)
	}
}

func TestCarService_List(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	b, c := w.brandAndCategory(t)

	for _, price := range []float64{9000, 15000, 30000} {
		in := carInput(b, c)
		in.Price = price
		if _, err := w.carSvc.Create(ctx, seller, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	minPrice := 10000.0
	res, err := w.carSvc.List(ctx, domain.CarFilter{MinPrice: &minPrice, SortBy: "price", SortOrder: domain.SortAsc}, domain.PageRequest{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Pagination.Total != 2 || res.Pagination.Pages != 2 {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
	if len(res.Items) != 1 || res.Items[0].Price != 15000 {
		t.Fatalf("expected cheapest matching car first, got %+v", res.Items)
	}
}

func TestCarService_Delete_RemovesFavorites(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	buyer := w.user(t, domain.RoleBuyer)
	car := w.car(t, seller)

	if _, err := w.favSvc.Create(ctx, buyer, car.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if err := w.carSvc.Delete(ctx, seller, car.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, total, _ := w.favorites.List(ctx, domain.FavoriteFilter{}, domain.PageRequest{})
	if total != 0 {
		t.Fatalf("expected favorites to be removed, got %d", total)
	}
}
