package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

type stubCarService struct {
	ports.CarService
	listFn   func(ctx context.Context, f domain.CarFilter, p domain.PageRequest) (*ports.ListResult[*domain.Car], error)
	getFn    func(ctx context.Context, id string) (*domain.CarDetail, error)
	viewed   []string
	createFn func(ctx context.Context, actor *domain.Actor, in ports.CarInput) (*domain.Car, error)
}

func (s *stubCarService) List(ctx context.Context, f domain.CarFilter, p domain.PageRequest) (*ports.ListResult[*domain.Car], error) {
	return s.listFn(ctx, f, p)
}

func (s *stubCarService) Get(ctx context.Context, id string) (*domain.CarDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubCarService) RecordView(_ context.Context, id string) error {
	s.viewed = append(s.viewed, id)
	return nil
}

func (s *stubCarService) Create(ctx context.Context, actor *domain.Actor, in ports.CarInput) (*domain.Car, error) {
	return s.createFn(ctx, actor, in)
}

type fakeViewQueue struct {
	ids []string
	err error
}

func (q *fakeViewQueue) Enqueue(_ context.Context, id string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

func TestCarHandler_List_ParsesQuery(t *testing.T) {
	e := newTestEcho()
	cars := &stubCarService{
		listFn: func(_ context.Context, f domain.CarFilter, p domain.PageRequest) (*ports.ListResult[*domain.Car], error) {
			if f.BodyType != domain.BodySUV || f.City != "ankara" || f.MinPrice == nil || *f.MinPrice != 10000 || f.MaxYear != 2022 {
				t.Fatalf("unexpected filter: %+v", f)
			}
			if p.Page != 2 || p.Limit != 5 {
				t.Fatalf("unexpected page: %+v", p)
			}
			return &ports.ListResult[*domain.Car]{
				Items:      []*domain.Car{{ID: "c1"}},
				Pagination: domain.Pagination{Page: 2, Limit: 5, Total: 6, Pages: 2},
			}, nil
		},
	}
	h := NewCarHandler(cars, nil, zerolog.Nop())

	target := "/cars?bodyType=suv&city=ankara&minPrice=10000&maxYear=2022&page=2&limit=5"
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	data := decodeData(t, rec)
	if items, _ := data["cars"].([]any); len(items) != 1 {
		t.Fatalf("expected one car, got %+v", data["cars"])
	}
	if pg, _ := data["pagination"].(map[string]any); pg["pages"] != float64(2) {
		t.Fatalf("unexpected pagination: %+v", data["pagination"])
	}
}

func TestCarHandler_List_BadNumber(t *testing.T) {
	e := newTestEcho()
	h := NewCarHandler(&stubCarService{}, nil, zerolog.Nop())

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cars?minPrice=cheap", nil), httptest.NewRecorder())

	var ve *domain.ValidationError
	if err := h.List(c); !errors.As(err, &ve) || ve.Fields["minPrice"] == "" {
		t.Fatalf("expected minPrice validation error, got %v", err)
	}
}

func TestCarHandler_Get_RecordsView(t *testing.T) {
	detail := &domain.CarDetail{Car: &domain.Car{ID: "c1", Title: "Clean 2019 Corolla"}}
	get := func(_ context.Context, id string) (*domain.CarDetail, error) {
		if id != "c1" {
			return nil, domain.ErrCarNotFound
		}
		return detail, nil
	}

	t.Run("queued", func(t *testing.T) {
		e := newTestEcho()
		cars := &stubCarService{getFn: get}
		views := &fakeViewQueue{}
		h := NewCarHandler(cars, views, zerolog.Nop())

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cars/c1", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("c1")

		if err := h.Get(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if len(views.ids) != 1 || views.ids[0] != "c1" {
			t.Fatalf("expected queued view, got %v", views.ids)
		}
		if len(cars.viewed) != 0 {
			t.Fatalf("view must not be recorded inline when queued")
		}
	})

	t.Run("inline", func(t *testing.T) {
		e := newTestEcho()
		cars := &stubCarService{getFn: get}
		h := NewCarHandler(cars, nil, zerolog.Nop())

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cars/c1", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("c1")

		if err := h.Get(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if len(cars.viewed) != 1 {
			t.Fatalf("expected one inline view, got %v", cars.viewed)
		}
	})

	t.Run("recording failure does not fail the request", func(t *testing.T) {
		e := newTestEcho()
		h := NewCarHandler(&stubCarService{getFn: get}, &fakeViewQueue{err: errors.New("store down")}, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cars/c1", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues("c1")

		if err := h.Get(c); err != nil || rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", rec.Code, err)
		}
	})

	t.Run("not found skips view", func(t *testing.T) {
		e := newTestEcho()
		views := &fakeViewQueue{}
		h := NewCarHandler(&stubCarService{getFn: get}, views, zerolog.Nop())

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cars/zz", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("zz")

		if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if len(views.ids) != 0 {
			t.Fatalf("no view expected for a missing car")
		}
	})
}

func TestCarHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	h := NewCarHandler(&stubCarService{}, nil, zerolog.Nop())

	body := `{"title":"short","brand":"not-an-id","images":[],"location":{"city":"Izmir"}}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/cars", body), httptest.NewRecorder())

	var ve *domain.ValidationError
	if err := h.Create(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"title", "brand", "images", "location.district", "fuelType"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected an error for %s, got %+v", field, ve.Fields)
		}
	}
	if ve.Fields["brand"] != "invalid brand ID" {
		t.Errorf("unexpected brand message %q", ve.Fields["brand"])
	}
}
