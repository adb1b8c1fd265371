package service

import (
	"context"
	"errors"
	"testing"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

func TestFavoriteService_CreateAndCount(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	buyer := w.user(t, domain.RoleBuyer)
	car := w.car(t, seller)

	fav, err := w.favSvc.Create(ctx, buyer, car.ID)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if fav.UserID != buyer.UserID {
		t.Fatalf("favorite owned by %s, want %s", fav.UserID, buyer.UserID)
	}
	if _, err := w.favSvc.Create(ctx, buyer, car.ID); !errors.Is(err, domain.ErrFavoriteExists) {
		t.Fatalf("expected ErrFavoriteExists, got %v", err)
	}

	got, _ := w.cars.FindByID(ctx, car.ID)
	if got.FavoriteCount != 1 {
		t.Fatalf("expected favorite count 1, got %d", got.FavoriteCount)
	}

	if err := w.favSvc.Delete(ctx, buyer, fav.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = w.cars.FindByID(ctx, car.ID)
	if got.FavoriteCount != 0 {
		t.Fatalf("expected favorite count 0, got %d", got.FavoriteCount)
	}
}

func TestFavoriteService_Rejects(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	buyer := w.user(t, domain.RoleBuyer)

	if _, err := w.favSvc.Create(ctx, nil, missingID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous: expected unauthenticated, got %v", err)
	}
	if _, err := w.favSvc.Create(ctx, buyer, missingID); !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("expected car not found, got %v", err)
	}
	if _, err := w.favSvc.Create(ctx, buyer, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFavoriteService_ListIsScoped(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	seller := w.user(t, domain.RoleSeller)
	alice := w.user(t, domain.RoleBuyer)
	bob := w.user(t, domain.RoleBuyer)
	admin := w.user(t, domain.RoleAdmin)
	car := w.car(t, seller)

	aliceFav, err := w.favSvc.Create(ctx, alice, car.ID)
	if err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := w.favSvc.Create(ctx, bob, car.ID); err != nil {
		t.Fatalf("bob: %v", err)
	}

	res, err := w.favSvc.List(ctx, alice, domain.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Pagination.Total != 1 || res.Items[0].UserID != alice.UserID || res.Items[0].Car == nil {
		t.Fatalf("expected alice's favorite with its car, got %+v", res.Items)
	}

	all, err := w.favSvc.List(ctx, admin, domain.PageRequest{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if all.Pagination.Total != 2 {
		t.Fatalf("admin should see all favorites, got %d", all.Pagination.Total)
	}

	if err := w.favSvc.Delete(ctx, bob, aliceFav.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected bob to be forbidden, got %v", err)
	}
}
