package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Ayse",
		LastName:  "Yilmaz",
		Email:     "Ayse@Example.com",
		Password:  "secret1",
		Phone:     "05551234567",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	w := newWorld(t)

	res, err := w.auth.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	u := res.User
	if u.Email != "ayse@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Phone != "5551234567" {
		t.Fatalf("expected normalized phone, got %q", u.Phone)
	}
	if u.Role != domain.RoleBuyer || !u.IsActive {
		t.Fatalf("expected active buyer, got %s active=%v", u.Role, u.IsActive)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) != nil {
		t.Fatalf("password hash does not match")
	}
	if res.Tokens == nil || res.Tokens.AccessToken == "" {
		t.Fatalf("expected tokens on registration")
	}
}

func TestAuthService_Register_Rejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*ports.RegisterInput)
		kind error
	}{
		{"admin self-assign", func(in *ports.RegisterInput) { in.Role = domain.RoleAdmin }, domain.ErrInvalidInput},
		{"short password", func(in *ports.RegisterInput) { in.Password = "123" }, domain.ErrInvalidInput},
		{"bad phone", func(in *ports.RegisterInput) { in.Phone = "12ab" }, domain.ErrInvalidInput},
		{"bad email", func(in *ports.RegisterInput) { in.Email = "nope" }, domain.ErrInvalidInput},
		{"unknown role", func(in *ports.RegisterInput) { in.Role = "dealer" }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			in := registerInput()
			tt.mut(&in)
			_, err := w.auth.Register(context.Background(), in)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmailIgnoresCase(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	if _, err := w.auth.Register(ctx, registerInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in := registerInput()
	in.Email = "AYSE@example.COM"
	in.Phone = "5559999999"
	_, err := w.auth.Register(ctx, in)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// Every accepted spelling of a phone number identifies the same account.
func TestAuthService_Register_PhoneFormsConflict(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	if _, err := w.auth.Register(ctx, registerInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	for i, phone := range []string{"5551234567", "+905551234567"} {
		in := registerInput()
		in.Email = "other" + string(rune('a'+i)) + "@example.com"
		in.Phone = phone
		_, err := w.auth.Register(ctx, in)
		if !errors.Is(err, domain.ErrPhoneTaken) {
			t.Fatalf("phone %s: expected ErrPhoneTaken, got %v", phone, err)
		}
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("phone %s: expected conflict kind", phone)
		}
	}
}

func TestAuthService_Login(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	if _, err := w.auth.Register(ctx, registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := w.auth.Login(ctx, " AYSE@example.com ", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	claims, err := w.tokens.VerifyAccess(res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Role != domain.RoleBuyer {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := w.auth.Login(ctx, "ayse@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := w.auth.Login(ctx, "ghost@example.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_Login_Inactive(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	res, err := w.auth.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u := res.User
	u.IsActive = false
	if _, err := w.users.Update(ctx, u); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = w.auth.Login(ctx, "ayse@example.com", "secret1")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestAuthService_Authenticate_InactiveLooksMalformed(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	res, err := w.auth.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	actor, err := w.auth.Authenticate(ctx, res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if actor.UserID != res.User.ID {
		t.Fatalf("unexpected actor %+v", actor)
	}

	u := res.User
	u.IsActive = false
	if _, err := w.users.Update(ctx, u); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, inactiveErr := w.auth.Authenticate(ctx, res.Tokens.AccessToken)
	_, malformedErr := w.auth.Authenticate(ctx, "garbage.token.value")

	if inactiveErr == nil || malformedErr == nil {
		t.Fatalf("expected both to fail, got %v / %v", inactiveErr, malformedErr)
	}
	if inactiveErr.Error() != malformedErr.Error() {
		t.Fatalf("messages differ: %q vs %q", inactiveErr, malformedErr)
	}
	if !errors.Is(inactiveErr, domain.ErrUnauthenticated) || !errors.Is(malformedErr, domain.ErrUnauthenticated) {
		t.Fatalf("expected both to be authentication failures")
	}
}

func TestAuthService_Authenticate_UsesStoredRole(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	in := registerInput()
	in.Role = domain.RoleSeller
	res, err := w.auth.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u := res.User
	u.Role = domain.RoleBuyer
	if _, err := w.users.Update(ctx, u); err != nil {
		t.Fatalf("demote: %v", err)
	}

	actor, err := w.auth.Authenticate(ctx, res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.Role != domain.RoleBuyer {
		t.Fatalf("expected stored role buyer, got %s", actor.Role)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	res, err := w.auth.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshed, err := w.auth.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.User.ID != res.User.ID {
		t.Fatalf("refresh returned a different user")
	}

	if _, err := w.auth.Refresh(ctx, res.Tokens.AccessToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
	if _, err := w.auth.Refresh(ctx, ""); !errors.Is(err, domain.ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
}
