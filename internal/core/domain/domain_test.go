package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validCar() *Car {
	return &Car{
		Title:        "Clean 2019 Corolla",
		Description:  strings.Repeat("well kept, single owner, full service history. ", 2),
		BrandID:      "b1",
		CategoryID:   "c1",
		CarModel:     "Corolla",
		Year:         2019,
		Price:        15000,
		Mileage:      42000,
		FuelType:     FuelGasoline,
		Transmission: TransmissionAutomatic,
		BodyType:     BodySedan,
		Color:        "white",
		EngineSize:   1.6,
		Drivetrain:   DrivetrainFWD,
		Condition:    ConditionUsed,
		Images:       []string{"https://img.example.com/1.jpg"},
		Location:     Location{City: "Istanbul", District: "Kadikoy"},
		Status:       CarActive,
	}
}

func TestCarValidate_Valid(t *testing.T) {
	if err := validCar().Validate(time.Now()); err != nil {
		t.Fatalf("expected valid car, got %v", err)
	}
}

func TestCarValidate_Bounds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		mut   func(*Car)
		field string
	}{
		{"short title", func(c *Car) { c.Title = "short" }, "title"},
		{"future year", func(c *Car) { c.Year = 2028 }, "year"},
		{"next year ok", func(c *Car) { c.Year = 2027 }, ""},
		{"negative price", func(c *Car) { c.Price = -1 }, "price"},
		{"bad fuel", func(c *Car) { c.FuelType = "steam" }, "fuelType"},
		{"no images", func(c *Car) { c.Images = nil }, "images"},
		{"too many images", func(c *Car) { c.Images = make([]string, 21) }, "images"},
		{"too many features", func(c *Car) { c.Features = make([]string, 51) }, "features"},
		{"engine too small", func(c *Car) { c.EngineSize = 0 }, "engineSize"},
		{"bad latitude", func(c *Car) { c.Location.Coordinates = &Coordinates{Lat: 91} }, "location.coordinates.lat"},
		{"promoted without date", func(c *Car) { c.IsPromoted = true }, "promotedUntil"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCar()
			tc.mut(c)
			err := c.Validate(now)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected failure on %q, got %v", tc.field, ve.Fields)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput kind")
			}
		})
	}
}

func validSale() *Sale {
	return &Sale{
		CarID:         "car1",
		SellerID:      "s1",
		BuyerID:       "b1",
		Price:         10000,
		PaymentMethod: PaymentCash,
		PaymentStatus: PaymentPending,
		SaleDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:        SalePending,
	}
}

func TestSaleValidate_CrossField(t *testing.T) {
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	paid := time.Now()

	cases := []struct {
		name  string
		mut   func(*Sale)
		field string
	}{
		{"valid", func(*Sale) {}, ""},
		{"delivery before sale", func(s *Sale) { s.DeliveryDate = &before }, "deliveryDate"},
		{"cancelled without reason", func(s *Sale) { s.Status = SaleCancelled }, "cancellationReason"},
		{"cancelled with blank reason", func(s *Sale) { s.Status = SaleCancelled; s.CancellationReason = "  " }, "cancellationReason"},
		{"cancelled with reason", func(s *Sale) { s.Status = SaleCancelled; s.CancellationReason = "buyer withdrew" }, ""},
		{"paid commission without date", func(s *Sale) { s.Commission.IsPaid = true }, "commission.paidDate"},
		{"paid commission with date", func(s *Sale) { s.Commission.IsPaid = true; s.Commission.PaidDate = &paid }, ""},
		{"percentage over 100", func(s *Sale) { s.Commission.Percentage = 101 }, "commission.percentage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSale()
			tc.mut(s)
			err := s.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected failure on %q, got %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	forms := []string{"5551234567", "05551234567", "+905551234567", " 05551234567 "}
	for _, f := range forms {
		if got := NormalizePhone(f); got != "5551234567" {
			t.Errorf("NormalizePhone(%q) = %q", f, got)
		}
	}
	if ValidPhone("12345") {
		t.Errorf("expected short number to be invalid")
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{Page: 0, Limit: 500}.Normalize()
	if p.Page != 1 || p.Limit != MaxPageLimit {
		t.Fatalf("unexpected page %+v", p)
	}
	p = PageRequest{}.Normalize()
	if p.Limit != DefaultPageLimit {
		t.Fatalf("expected default limit, got %d", p.Limit)
	}
	pg := NewPagination(PageRequest{Page: 2, Limit: 10}, 21)
	if pg.Pages != 3 || pg.Total != 21 {
		t.Fatalf("unexpected pagination %+v", pg)
	}
}

func TestErrorKinds(t *testing.T) {
	if !errors.Is(ErrBrandExists, ErrConflict) {
		t.Fatalf("brand exists should be a conflict")
	}
	if ErrTokenInvalid.Error() != ErrTokenMalformed.Error() {
		t.Fatalf("invalid and malformed tokens must share a message")
	}
	if !errors.Is(&PermissionError{}, ErrForbidden) {
		t.Fatalf("permission error should unwrap to ErrForbidden")
	}
}
