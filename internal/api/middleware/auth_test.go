package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

type stubAuthenticator struct {
	actors map[string]*domain.Actor
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Actor, error) {
	if a, ok := s.actors[token]; ok {
		return a, nil
	}
	return nil, domain.ErrTokenInvalid
}

func runAuth(t *testing.T, header string) (*domain.Actor, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	auth := stubAuthenticator{actors: map[string]*domain.Actor{
		"good": {UserID: "u1", Email: "alice@example.com", Role: domain.RoleSeller},
	}}
	var seen *domain.Actor
	called := false
	err := Authenticate(auth)(func(c echo.Context) error {
		called = true
		seen = ActorFrom(c)
		return nil
	})(c)
	return seen, called, err
}

func TestAuthenticate_ValidToken(t *testing.T) {
	actor, called, err := runAuth(t, "Bearer good")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || actor == nil || actor.UserID != "u1" {
		t.Fatalf("expected actor u1, got %+v (called=%v)", actor, called)
	}
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	actor, called, err := runAuth(t, "")
	if err != nil || !called || actor != nil {
		t.Fatalf("expected anonymous pass-through, got actor=%+v called=%v err=%v", actor, called, err)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	cases := map[string]error{
		"Bearer bad":  domain.ErrTokenInvalid,
		"Basic good":  domain.ErrTokenRequired,
		"Bearer":      domain.ErrTokenRequired,
		"Bearer    ":  domain.ErrTokenRequired,
		"token-alone": domain.ErrTokenRequired,
	}
	for header, want := range cases {
		_, called, err := runAuth(t, header)
		if called {
			t.Errorf("%q: next handler should not run", header)
		}
		if !errors.Is(err, want) || !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%q: expected %v, got %v", header, want, err)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := RequireAuth()(next)(c); !errors.Is(err, domain.ErrTokenRequired) {
		t.Fatalf("expected token required, got %v", err)
	}

	c.Set(ActorKey, &domain.Actor{UserID: "u1", Role: domain.RoleBuyer})
	if err := RequireAuth()(next)(c); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}
