package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
	"github.com/carsale/marketplace-api/internal/core/ports/portstest"
)

var discardLogger = zerolog.Nop()

// world wires every service against in-memory repositories.
type world struct {
	users      *portstest.Users
	brands     *portstest.Brands
	categories *portstest.Categories
	cars       *portstest.Cars
	favorites  *portstest.Favorites
	sales      *portstest.Sales

	tokens   *TokenService
	auth     *AuthService
	userSvc  *UserService
	brandSvc *BrandService
	catSvc   *CategoryService
	carSvc   *CarService
	favSvc   *FavoriteService
	saleSvc  *SaleService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		users:      portstest.NewUsers(),
		brands:     portstest.NewBrands(),
		categories: portstest.NewCategories(),
		cars:       portstest.NewCars(),
		favorites:  portstest.NewFavorites(),
		sales:      portstest.NewSales(),
	}
	w.tokens = NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	w.auth = NewAuthService(w.users, w.tokens, bcrypt.MinCost, discardLogger)
	w.userSvc = NewUserService(w.users, discardLogger)
	w.brandSvc = NewBrandService(w.brands, discardLogger)
	w.catSvc = NewCategoryService(w.categories, discardLogger)
	w.carSvc = NewCarService(CarRepos{
		Cars:       w.cars,
		Brands:     w.brands,
		Categories: w.categories,
		Users:      w.users,
		Favorites:  w.favorites,
	}, true, discardLogger)
	w.favSvc = NewFavoriteService(w.favorites, w.cars, discardLogger)
	w.saleSvc = NewSaleService(w.sales, w.cars, w.users, discardLogger)
	return w
}

var phoneSeq = 1000000

func (w *world) user(t *testing.T, role domain.Role) *domain.Actor {
	t.Helper()
	phoneSeq++
	u, err := w.users.Create(context.Background(), &domain.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     strings.ToLower(string(role)) + portstest.NewID() + "@example.com",
		Phone:     fmt.Sprintf("555%07d", phoneSeq),
		Role:      role,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.Actor()
}

func (w *world) brandAndCategory(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	b, err := w.brands.Create(ctx, &domain.Brand{Name: "Toyota " + portstest.NewID(), IsActive: true})
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}
	c, err := w.categories.Create(ctx, &domain.Category{Name: "Sedan " + portstest.NewID(), IsActive: true})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return b.ID, c.ID
}

func carInput(brandID, categoryID string) ports.CarInput {
	return ports.CarInput{
		Title:        "Clean 2019 Corolla Hybrid",
		Description:  strings.Repeat("Single owner, full dealer service history. ", 2),
		BrandID:      brandID,
		CategoryID:   categoryID,
		CarModel:     "Corolla",
		Year:         2019,
		Price:        18500,
		Mileage:      42000,
		FuelType:     domain.FuelHybrid,
		Transmission: domain.TransmissionAutomatic,
		BodyType:     domain.BodySedan,
		Color:        "white",
		EngineSize:   1.8,
		Horsepower:   122,
		Drivetrain:   domain.DrivetrainFWD,
		Condition:    domain.ConditionUsed,
		Images:       []string{"https://img.example.com/1.jpg"},
		Location:     domain.Location{City: "Istanbul", District: "Kadikoy"},
	}
}

func (w *world) car(t *testing.T, seller *domain.Actor) *domain.Car {
	t.Helper()
	b, c := w.brandAndCategory(t)
	car, err := w.carSvc.Create(context.Background(), seller, carInput(b, c))
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}
