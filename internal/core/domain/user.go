package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role is one of the closed set of marketplace roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleSeller, RoleBuyer}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// Address is an optional postal address attached to a user profile.
type Address struct {
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	FullAddress string `json:"fullAddress,omitempty"`
}

// User is a persisted identity. Users are deactivated, never deleted.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	Avatar       string    `json:"avatar,omitempty"`
	Address      *Address  `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor returns the request-scoped view of u.
func (u *User) Actor() *Actor {
	return &Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Actor is the authenticated caller of an operation. A nil *Actor is an
// anonymous caller.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// UserSummary is the public projection of a user embedded in other resources.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Summary projects u to a UserSummary.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Phone: u.Phone}
}

var phonePattern = regexp.MustCompile(`^(\+90|0)?[0-9]{10}$`)

// ValidPhone reports whether s is a Turkish phone number in one of the
// accepted forms: 5551234567, 05551234567 or +905551234567.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips the optional +90 or 0 prefix so that every accepted
// form of the same number compares equal. Invalid input is returned trimmed.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if !phonePattern.MatchString(s) {
		return s
	}
	return s[len(s)-10:]
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const MinPasswordLength = 6

// Validate checks profile fields and normalizes email and phone in place.
func (u *User) Validate() error {
	ve := &ValidationError{}

	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	checkLen(ve, "firstName", u.FirstName, 2, 50)
	checkLen(ve, "lastName", u.LastName, 2, 50)

	u.Email = NormalizeEmail(u.Email)
	if !emailPattern.MatchString(u.Email) {
		ve.Add("email", "please enter a valid email")
	}
	if !ValidPhone(u.Phone) {
		ve.Add("phone", "please enter a valid phone number")
	}
	u.Phone = NormalizePhone(u.Phone)

	if !u.Role.Valid() {
		ve.Add("role", "role must be one of admin, seller, buyer")
	}
	return ve.OrNil()
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   Role
	Active *bool
	Search string
}
