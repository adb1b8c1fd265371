// Package portstest provides in-memory implementations of the repository
// ports for tests. They enforce the same uniqueness rules as the MongoDB
// indexes and are safe for concurrent use.
package portstest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

var seq atomic.Int64

// NewID returns a unique 24-character hex ID.
func NewID() string {
	return fmt.Sprintf("%024x", seq.Add(1))
}

type table[T any] struct {
	mu    sync.Mutex
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) put(id string, v *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	c := *v
	t.rows[id] = &c
}

func (t *table[T]) get(id string) (*T, bool) {
	v, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	c := *v
	return &c, true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// filter returns copies of the rows matching keep in insertion order.
func (t *table[T]) filter(keep func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, id := range t.order {
		if v := t.rows[id]; keep(v) {
			c := *v
			out = append(out, &c)
		}
	}
	return out
}

func paginate[T any](items []*T, p domain.PageRequest) ([]*T, int64) {
	p = p.Normalize()
	total := int64(len(items))
	start := int(p.Skip())
	if start >= len(items) {
		return []*T{}, total
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Users is an in-memory UserRepository.
type Users struct{ t *table[domain.User] }

func NewUsers() *Users { return &Users{t: newTable[domain.User]()} }

func (r *Users) uniqueLocked(u *domain.User) error {
	for id, o := range r.t.rows {
		if id == u.ID {
			continue
		}
		if o.Email == u.Email {
			return domain.ErrEmailTaken
		}
		if o.Phone == u.Phone {
			return domain.ErrPhoneTaken
		}
	}
	return nil
}

func (r *Users) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if err := r.uniqueLocked(u); err != nil {
		return nil, err
	}
	c := *u
	if c.ID == "" {
		c.ID = NewID()
	}
	r.t.put(c.ID, &c)
	return &c, nil
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if u, ok := r.t.get(id); ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if found := r.t.filter(match); len(found) > 0 {
		return found[0], nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Email == email })
}

func (r *Users) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Phone == phone })
}

func (r *Users) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := r.uniqueLocked(u); err != nil {
		return nil, err
	}
	r.t.put(u.ID, u)
	c, _ := r.t.get(u.ID)
	return c, nil
}

func (r *Users) List(_ context.Context, f domain.UserFilter, p domain.PageRequest) ([]*domain.User, int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(u *domain.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.Active != nil && u.IsActive != *f.Active {
			return false
		}
		if f.Search != "" && !containsFold(u.FirstName+" "+u.LastName+" "+u.Email, f.Search) {
			return false
		}
		return true
	})
	page, total := paginate(items, p)
	return page, total, nil
}

// Brands is an in-memory BrandRepository.
type Brands struct{ t *table[domain.Brand] }

func NewBrands() *Brands { return &Brands{t: newTable[domain.Brand]()} }

func (r *Brands) nameTakenLocked(id, name string) bool {
	for oid, o := range r.t.rows {
		if oid != id && strings.EqualFold(o.Name, name) {
			return true
		}
	}
	return false
}

func (r *Brands) Create(_ context.Context, b *domain.Brand) (*domain.Brand, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if r.nameTakenLocked("", b.Name) {
		return nil, domain.ErrBrandExists
	}
	c := *b
	c.ID = NewID()
	r.t.put(c.ID, &c)
	return &c, nil
}

func (r *Brands) FindByID(_ context.Context, id string) (*domain.Brand, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if b, ok := r.t.get(id); ok {
		return b, nil
	}
	return nil, domain.ErrBrandNotFound
}

func (r *Brands) FindByName(_ context.Context, name string) (*domain.Brand, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if found := r.t.filter(func(b *domain.Brand) bool { return strings.EqualFold(b.Name, name) }); len(found) > 0 {
		return found[0], nil
	}
	return nil, domain.ErrBrandNotFound
}

func (r *Brands) Update(_ context.Context, b *domain.Brand) (*domain.Brand, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[b.ID]; !ok {
		return nil, domain.ErrBrandNotFound
	}
	if r.nameTakenLocked(b.ID, b.Name) {
		return nil, domain.ErrBrandExists
	}
	r.t.put(b.ID, b)
	c, _ := r.t.get(b.ID)
	return c, nil
}

func (r *Brands) Delete(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return domain.ErrBrandNotFound
	}
	return nil
}

func (r *Brands) List(_ context.Context, f domain.BrandFilter, p domain.PageRequest) ([]*domain.Brand, int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(b *domain.Brand) bool {
		if f.Active != nil && b.IsActive != *f.Active {
			return false
		}
		return f.Search == "" || containsFold(b.Name, f.Search)
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	page, total := paginate(items, p)
	return page, total, nil
}

// Categories is an in-memory CategoryRepository.
type Categories struct{ t *table[domain.Category] }

func NewCategories() *Categories { return &Categories{t: newTable[domain.Category]()} }

func (r *Categories) nameTakenLocked(id, name string) bool {
	for oid, o := range r.t.rows {
		if oid != id && strings.EqualFold(o.Name, name) {
			return true
		}
	}
	return false
}

func (r *Categories) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if r.nameTakenLocked("", c.Name) {
		return nil, domain.ErrCategoryExists
	}
	cp := *c
	cp.ID = NewID()
	r.t.put(cp.ID, &cp)
	return &cp, nil
}

func (r *Categories) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if c, ok := r.t.get(id); ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *Categories) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if found := r.t.filter(func(c *domain.Category) bool { return strings.EqualFold(c.Name, name) }); len(found) > 0 {
		return found[0], nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *Categories) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[c.ID]; !ok {
		return nil, domain.ErrCategoryNotFound
	}
	if r.nameTakenLocked(c.ID, c.Name) {
		return nil, domain.ErrCategoryExists
	}
	r.t.put(c.ID, c)
	cp, _ := r.t.get(c.ID)
	return cp, nil
}

func (r *Categories) Delete(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *Categories) List(_ context.Context, f domain.CategoryFilter, p domain.PageRequest) ([]*domain.Category, int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(c *domain.Category) bool {
		if f.Active != nil && c.IsActive != *f.Active {
			return false
		}
		return f.Search == "" || containsFold(c.Name, f.Search) || containsFold(c.Description, f.Search)
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	page, total := paginate(items, p)
	return page, total, nil
}

// Cars is an in-memory CarRepository.
type Cars struct{ t *table[domain.Car] }

func NewCars() *Cars { return &Cars{t: newTable[domain.Car]()} }

func (r *Cars) Create(_ context.Context, c *domain.Car) (*domain.Car, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	cp := *c
	cp.ID = NewID()
	r.t.put(cp.ID, &cp)
	return &cp, nil
}

func (r *Cars) FindByID(_ context.Context, id string) (*domain.Car, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if c, ok := r.t.get(id); ok {
		return c, nil
	}
	return nil, domain.ErrCarNotFound
}

func (r *Cars) Update(_ context.Context, c *domain.Car) (*domain.Car, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	cur, ok := r.t.rows[c.ID]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	cp := *c
	// Counters are owned by IncrementViews and AdjustFavorites.
	cp.ViewCount = cur.ViewCount
	cp.FavoriteCount = cur.FavoriteCount
	r.t.put(c.ID, &cp)
	out, _ := r.t.get(c.ID)
	return out, nil
}

func (r *Cars) Delete(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return domain.ErrCarNotFound
	}
	return nil
}

func (r *Cars) List(_ context.Context, f domain.CarFilter, p domain.PageRequest) ([]*domain.Car, int64, error) {
	f = f.Normalize()
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(c *domain.Car) bool {
		switch {
		case f.Status != "" && c.Status != f.Status,
			f.BrandID != "" && c.BrandID != f.BrandID,
			f.CategoryID != "" && c.CategoryID != f.CategoryID,
			f.SellerID != "" && c.SellerID != f.SellerID,
			f.FuelType != "" && c.FuelType != f.FuelType,
			f.Transmission != "" && c.Transmission != f.Transmission,
			f.BodyType != "" && c.BodyType != f.BodyType,
			f.Condition != "" && c.Condition != f.Condition,
			f.City != "" && !containsFold(c.Location.City, f.City),
			f.MinPrice != nil && c.Price < *f.MinPrice,
			f.MaxPrice != nil && c.Price > *f.MaxPrice,
			f.MinYear != 0 && c.Year < f.MinYear,
			f.MaxYear != 0 && c.Year > f.MaxYear:
			return false
		}
		if f.Search != "" {
			return containsFold(c.Title, f.Search) || containsFold(c.Description, f.Search) ||
				containsFold(c.CarModel, f.Search) || containsFold(c.Color, f.Search)
		}
		return true
	})
	sort.SliceStable(items, func(i, j int) bool {
		if f.SortOrder == domain.SortDesc {
			return carLess(items[j], items[i], f.SortBy)
		}
		return carLess(items[i], items[j], f.SortBy)
	})
	page, total := paginate(items, p)
	return page, total, nil
}

func carLess(a, b *domain.Car, field string) bool {
	switch field {
	case "price":
		return a.Price < b.Price
	case "year":
		return a.Year < b.Year
	case "mileage":
		return a.Mileage < b.Mileage
	case "viewCount":
		return a.ViewCount < b.ViewCount
	case "title":
		return a.Title < b.Title
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (r *Cars) IncrementViews(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c, ok := r.t.rows[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.ViewCount++
	return nil
}

func (r *Cars) AdjustFavorites(_ context.Context, id string, delta int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c, ok := r.t.rows[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.FavoriteCount += delta
	if c.FavoriteCount < 0 {
		c.FavoriteCount = 0
	}
	return nil
}

func (r *Cars) SetStatus(_ context.Context, id string, status domain.CarStatus) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c, ok := r.t.rows[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.Status = status
	return nil
}

// Favorites is an in-memory FavoriteRepository.
type Favorites struct{ t *table[domain.Favorite] }

func NewFavorites() *Favorites { return &Favorites{t: newTable[domain.Favorite]()} }

func (r *Favorites) Create(_ context.Context, f *domain.Favorite) (*domain.Favorite, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, o := range r.t.rows {
		if o.UserID == f.UserID && o.CarID == f.CarID {
			return nil, domain.ErrFavoriteExists
		}
	}
	cp := *f
	cp.ID = NewID()
	r.t.put(cp.ID, &cp)
	return &cp, nil
}

func (r *Favorites) FindByID(_ context.Context, id string) (*domain.Favorite, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if f, ok := r.t.get(id); ok {
		return f, nil
	}
	return nil, domain.ErrFavoriteNotFound
}

func (r *Favorites) Delete(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *Favorites) DeleteByCar(_ context.Context, carID string) (int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	var n int64
	for _, f := range r.t.filter(func(f *domain.Favorite) bool { return f.CarID == carID }) {
		r.t.remove(f.ID)
		n++
	}
	return n, nil
}

func (r *Favorites) List(_ context.Context, f domain.FavoriteFilter, p domain.PageRequest) ([]*domain.Favorite, int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(fav *domain.Favorite) bool {
		return f.UserID == "" || fav.UserID == f.UserID
	})
	page, total := paginate(items, p)
	return page, total, nil
}

// Sales is an in-memory SaleRepository.
type Sales struct{ t *table[domain.Sale] }

func NewSales() *Sales { return &Sales{t: newTable[domain.Sale]()} }

func (r *Sales) Create(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	cp := *s
	cp.ID = NewID()
	r.t.put(cp.ID, &cp)
	return &cp, nil
}

func (r *Sales) FindByID(_ context.Context, id string) (*domain.Sale, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if s, ok := r.t.get(id); ok {
		return s, nil
	}
	return nil, domain.ErrSaleNotFound
}

func (r *Sales) Update(_ context.Context, s *domain.Sale) (*domain.Sale, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[s.ID]; !ok {
		return nil, domain.ErrSaleNotFound
	}
	r.t.put(s.ID, s)
	out, _ := r.t.get(s.ID)
	return out, nil
}

func (r *Sales) Delete(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return domain.ErrSaleNotFound
	}
	return nil
}

func (r *Sales) List(_ context.Context, f domain.SaleFilter, p domain.PageRequest) ([]*domain.Sale, int64, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	items := r.t.filter(func(s *domain.Sale) bool {
		if f.ParticipantID != "" && s.SellerID != f.ParticipantID && s.BuyerID != f.ParticipantID {
			return false
		}
		if f.Status != "" && s.Status != f.Status {
			return false
		}
		return f.PaymentStatus == "" || s.PaymentStatus == f.PaymentStatus
	})
	page, total := paginate(items, p)
	return page, total, nil
}
