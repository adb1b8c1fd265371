package service

import (
	"context"
	"errors"
	"testing"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

func TestUserService_UpdateProfile(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	me := w.user(t, domain.RoleBuyer)
	other := w.user(t, domain.RoleBuyer)
	otherUser, _ := w.users.FindByID(ctx, other.UserID)

	name := "Mehmet"
	updated, err := w.userSvc.UpdateProfile(ctx, me, ports.ProfileInput{
		FirstName: &name,
		Address:   &domain.Address{City: "Ankara", District: "Cankaya"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Mehmet" || updated.Address == nil || updated.Address.City != "Ankara" {
		t.Fatalf("profile not updated: %+v", updated)
	}

	taken := "0" + otherUser.Phone
	if _, err := w.userSvc.UpdateProfile(ctx, me, ports.ProfileInput{Phone: &taken}); !errors.Is(err, domain.ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}

	short := "A"
	if _, err := w.userSvc.UpdateProfile(ctx, me, ports.ProfileInput{LastName: &short}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUserService_SetActive(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	me := w.user(t, domain.RoleSeller)
	other := w.user(t, domain.RoleBuyer)
	admin := w.user(t, domain.RoleAdmin)

	if _, err := w.userSvc.SetActive(ctx, other, me.UserID, false); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden deactivation of another user, got %v", err)
	}

	u, err := w.userSvc.SetActive(ctx, me, me.UserID, false)
	if err != nil {
		t.Fatalf("self deactivation: %v", err)
	}
	if u.IsActive {
		t.Fatalf("expected inactive")
	}

	if _, err := w.userSvc.SetActive(ctx, me, me.UserID, true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected self reactivation to be forbidden, got %v", err)
	}
	u, err = w.userSvc.SetActive(ctx, admin, me.UserID, true)
	if err != nil {
		t.Fatalf("admin reactivation: %v", err)
	}
	if !u.IsActive {
		t.Fatalf("expected active")
	}
}

func TestUserService_List_AdminOnly(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	buyer := w.user(t, domain.RoleBuyer)
	admin := w.user(t, domain.RoleAdmin)

	if _, err := w.userSvc.List(ctx, buyer, domain.UserFilter{}, domain.PageRequest{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	res, err := w.userSvc.List(ctx, admin, domain.UserFilter{Role: domain.RoleBuyer}, domain.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Pagination.Total != 1 {
		t.Fatalf("expected 1 buyer, got %d", res.Pagination.Total)
	}
}
