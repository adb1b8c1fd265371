package ports

import (
	"context"
	"time"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

// ListResult is one page of items plus its pagination metadata.
type ListResult[T any] struct {
	Items      []T
	Pagination domain.Pagination
}

// TokenPair is the credential set handed to a client after login or refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
	ExpiresIn       time.Duration
}

// AccessClaims is the verified content of an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies bearer credentials.
type TokenService interface {
	Issue(u *domain.User) (*TokenPair, error)
	VerifyAccess(token string) (*AccessClaims, error)
	// VerifyRefresh returns the subject of a valid refresh token.
	VerifyRefresh(token string) (string, error)
}

// RegisterInput carries a new account. Role defaults to buyer; admin cannot
// be self-assigned.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Role      domain.Role
	Address   *domain.Address
}

// AuthResult is the outcome of a successful login or refresh.
type AuthResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// AuthService handles credentials.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Authenticate verifies an access token and confirms the identity still
	// exists and is active.
	Authenticate(ctx context.Context, accessToken string) (*domain.Actor, error)
}

// ProfileInput updates the caller's own profile. Nil fields are unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
	Address   *domain.Address
}

// UserService manages identities after registration.
type UserService interface {
	Profile(ctx context.Context, actor *domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor *domain.Actor, in ProfileInput) (*domain.User, error)
	SetActive(ctx context.Context, actor *domain.Actor, id string, active bool) (*domain.User, error)
	List(ctx context.Context, actor *domain.Actor, f domain.UserFilter, p domain.PageRequest) (*ListResult[*domain.User], error)
}

// BrandInput creates a brand.
type BrandInput struct {
	Name     string
	Logo     string
	IsActive *bool
}

// BrandPatch updates a brand. Nil fields are unchanged.
type BrandPatch struct {
	Name     *string
	Logo     *string
	IsActive *bool
}

type BrandService interface {
	List(ctx context.Context, f domain.BrandFilter, p domain.PageRequest) (*ListResult[*domain.Brand], error)
	Get(ctx context.Context, id string) (*domain.Brand, error)
	Create(ctx context.Context, actor *domain.Actor, in BrandInput) (*domain.Brand, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in BrandPatch) (*domain.Brand, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

// CategoryInput creates a category.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// CategoryPatch updates a category. Nil fields are unchanged.
type CategoryPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

type CategoryService interface {
	List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) (*ListResult[*domain.Category], error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, actor *domain.Actor, in CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

// CarInput creates a listing. The seller is always the caller.
type CarInput struct {
	Title         string
	Description   string
	BrandID       string
	CategoryID    string
	CarModel      string
	Year          int
	Price         float64
	Mileage       int
	FuelType      domain.FuelType
	Transmission  domain.Transmission
	BodyType      domain.BodyType
	Color         string
	EngineSize    float64
	Horsepower    int
	Drivetrain    domain.Drivetrain
	Condition     domain.Condition
	Features      []string
	Images        []string
	Location      domain.Location
	IsPromoted    bool
	PromotedUntil *time.Time
}

// CarPatch updates a listing. Nil fields are unchanged.
type CarPatch struct {
	Title         *string
	Description   *string
	BrandID       *string
	CategoryID    *string
	CarModel      *string
	Year          *int
	Price         *float64
	Mileage       *int
	FuelType      *domain.FuelType
	Transmission  *domain.Transmission
	BodyType      *domain.BodyType
	Color         *string
	EngineSize    *float64
	Horsepower    *int
	Drivetrain    *domain.Drivetrain
	Condition     *domain.Condition
	Features      *[]string
	Images        *[]string
	Location      *domain.Location
	Status        *domain.CarStatus
	IsPromoted    *bool
	PromotedUntil *time.Time
}

type CarService interface {
	List(ctx context.Context, f domain.CarFilter, p domain.PageRequest) (*ListResult[*domain.Car], error)
	// Get is a pure read; it never touches the view counter.
	Get(ctx context.Context, id string) (*domain.CarDetail, error)
	// RecordView counts one view of a car.
	RecordView(ctx context.Context, id string) error
	Create(ctx context.Context, actor *domain.Actor, in CarInput) (*domain.Car, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in CarPatch) (*domain.Car, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

type FavoriteService interface {
	List(ctx context.Context, actor *domain.Actor, p domain.PageRequest) (*ListResult[*domain.FavoriteDetail], error)
	Create(ctx context.Context, actor *domain.Actor, carID string) (*domain.Favorite, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

// SaleInput records a sale. The seller is the car's seller.
type SaleInput struct {
	CarID              string
	BuyerID            string
	Price              float64
	PaymentMethod      domain.PaymentMethod
	PaymentStatus      domain.PaymentStatus
	SaleDate           *time.Time
	DeliveryDate       *time.Time
	Notes              string
	Documents          domain.SaleDocuments
	Status             domain.SaleStatus
	CancellationReason string
	Commission         domain.Commission
}

// SalePatch updates a sale. Nil fields are unchanged.
type SalePatch struct {
	Price              *float64
	PaymentMethod      *domain.PaymentMethod
	PaymentStatus      *domain.PaymentStatus
	SaleDate           *time.Time
	DeliveryDate       *time.Time
	Notes              *string
	Documents          *domain.SaleDocuments
	Status             *domain.SaleStatus
	CancellationReason *string
	Commission         *domain.Commission
}

type SaleService interface {
	List(ctx context.Context, actor *domain.Actor, f domain.SaleFilter, p domain.PageRequest) (*ListResult[*domain.Sale], error)
	Get(ctx context.Context, actor *domain.Actor, id string) (*domain.SaleDetail, error)
	Create(ctx context.Context, actor *domain.Actor, in SaleInput) (*domain.Sale, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in SalePatch) (*domain.Sale, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}
