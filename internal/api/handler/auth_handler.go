package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carsale/marketplace-api/internal/api/metrics"
	"github.com/carsale/marketplace-api/internal/api/response"
	"github.com/carsale/marketplace-api/internal/core/domain"
	"github.com/carsale/marketplace-api/internal/core/ports"
)

// RefreshCookie is the name of the httpOnly cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	auth   ports.AuthService
	users  ports.UserService
	cookie CookieConfig
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService, cookie CookieConfig) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{auth: auth, users: users, cookie: cookie}
}

type addressRequest struct {
	City        string `json:"city"        validate:"omitempty,max=50"`
	District    string `json:"district"    validate:"omitempty,max=50"`
	FullAddress string `json:"fullAddress" validate:"omitempty,max=200"`
}

func (a *addressRequest) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{City: a.City, District: a.District, FullAddress: a.FullAddress}
}

type registerRequest struct {
	FirstName string          `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string          `json:"lastName"  validate:"required,min=2,max=50"`
	Email     string          `json:"email"     validate:"required,email"`
	Password  string          `json:"password"  validate:"required,min=6"`
	Phone     string          `json:"phone"     validate:"required,phone"`
	Role      string          `json:"role"      validate:"omitempty,oneof=seller buyer"`
	Address   *addressRequest `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FirstName *string         `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  *string         `json:"lastName"  validate:"omitempty,min=2,max=50"`
	Phone     *string         `json:"phone"     validate:"omitempty,phone"`
	Avatar    *string         `json:"avatar"    validate:"omitempty,url"`
	Address   *addressRequest `json:"address"`
}

type tokenData struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn string       `json:"expiresIn"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type userData struct {
	User *domain.User `json:"user"`
}

func (h *AuthHandler) issue(c echo.Context, code int, message string, res *ports.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookie,
		Value:    res.Tokens.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
	})
	return response.Success(c, code, message, tokenData{
		User:      res.User,
		Token:     res.Tokens.AccessToken,
		ExpiresIn: res.Tokens.ExpiresIn.String(),
		ExpiresAt: res.Tokens.AccessExpiresAt,
	})
}

func authResult(action string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  response.Envelope{data=tokenData}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Role:      domain.Role(req.Role),
		Address:   req.Address.toDomain(),
	})
	authResult("register", err)
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusCreated, "User registered successfully", res)
}

// Login authenticates with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  response.Envelope{data=tokenData}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	authResult("login", err)
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusOK, "Login successful", res)
}

// Refresh exchanges the refresh cookie for a new access token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Envelope{data=tokenData}
// @Failure      401  {object}  response.Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		return domain.ErrRefreshTokenRequired
	}

	res, err := h.auth.Refresh(c.Request().Context(), cookie.Value)
	authResult("refresh", err)
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusOK, "Token refreshed successfully", res)
}

// Logout clears the refresh cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	return response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// Profile returns the caller's account.
//
// @Summary      Get own profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=userData}
// @Failure      401  {object}  response.Envelope
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	u, err := h.users.Profile(c.Request().Context(), actor(c))
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Profile retrieved successfully", userData{User: u})
}

// UpdateProfile edits the caller's account.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=userData}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := h.users.UpdateProfile(c.Request().Context(), actor(c), ports.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		Address:   req.Address.toDomain(),
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, "Profile updated successfully", userData{User: u})
}
