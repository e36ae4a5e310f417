package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // SQL database interactions
	"errors"       // errors.Is comparisons on sentinel values
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/mealmarkt/marketplace/internal/config"     // app configuration
	"github.com/mealmarkt/marketplace/internal/hours"      // working-hours validation
	"github.com/mealmarkt/marketplace/internal/model"      // domain records
	"github.com/mealmarkt/marketplace/internal/repository" // DB repositories
	"github.com/mealmarkt/marketplace/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth and profile endpoints. One
// login form serves both account kinds: credentials are checked against
// customers first and restaurants second, mirroring how the platform's
// web frontend behaves.
type AuthHandler struct {
	Cfg         config.Config
	Customers   *repository.CustomerRepo
	Restaurants *repository.RestaurantRepo
	Tokens      *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, cu *repository.CustomerRepo, re *repository.RestaurantRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Customers: cu, Restaurants: re, Tokens: t}
}

// ----- DTOs -----

type registerCustomerReq struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Password   string `json:"password"`
}

type registerRestaurantReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	PostalCode   string `json:"postal_code"`
	Description  string `json:"description"`
	WorkingDays  string `json:"working_days"`
	OpeningHours string `json:"opening_hours"`
	Password     string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issuePair creates an access/refresh token pair for an account and
// stores the refresh hash.
func (h *AuthHandler) issuePair(ctx context.Context, id uint64, email, role string) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.StoreRefresh(ctx, id, role, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    userPart{ID: id, Email: email, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// RegisterCustomer creates a customer account (starting balance 100.00)
// and returns tokens immediately.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	var req registerCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if req.FirstName == "" || req.LastName == "" || req.Address == "" || req.PostalCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all profile fields required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust := model.Customer{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Address:    req.Address,
		PostalCode: req.PostalCode,
	}
	id, err := h.Customers.Create(ctx, &cust, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}

	resp, err := h.issuePair(ctx, id, req.Email, RoleCustomer)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// RegisterRestaurant creates a restaurant account. The working-days and
// opening-hours descriptors are validated before anything is stored.
func (h *AuthHandler) RegisterRestaurant(c echo.Context) error {
	var req registerRestaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if req.Name == "" || req.Address == "" || req.PostalCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all profile fields required"})
	}
	if err := hours.Validate(req.WorkingDays, req.OpeningHours); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest := model.Restaurant{
		Name:         req.Name,
		Email:        req.Email,
		Address:      req.Address,
		PostalCode:   req.PostalCode,
		Description:  req.Description,
		WorkingDays:  req.WorkingDays,
		OpeningHours: req.OpeningHours,
	}
	id, err := h.Restaurants.Create(ctx, &rest, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}

	resp, err := h.issuePair(ctx, id, req.Email, RoleRestaurant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials against customers first, restaurants
// second, and returns a new token pair carrying the matching role.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		id   uint64
		hash string
		role string
	)
	cust, err := h.Customers.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		id, hash, role = cust.ID, cust.PasswordHash, RoleCustomer
	case errors.Is(err, sql.ErrNoRows):
		rest, rerr := h.Restaurants.GetByEmail(ctx, req.Email)
		if errors.Is(rerr, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		if rerr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		id, hash, role = rest.ID, rest.PasswordHash, RoleRestaurant
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	resp, err := h.issuePair(ctx, id, req.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, role, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	// Rotation: the presented token must be dead before a new pair is
	// issued, otherwise two live refresh tokens would exist.
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}

	email, err := h.emailFor(ctx, userID, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
	}

	resp, err := h.issuePair(ctx, userID, email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout invalidates the presented refresh token. The access token
// simply expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) emailFor(ctx context.Context, id uint64, role string) (string, error) {
	if role == RoleRestaurant {
		rest, err := h.Restaurants.GetByID(ctx, id)
		return rest.Email, err
	}
	cust, err := h.Customers.GetByID(ctx, id)
	return cust.Email, err
}

// Me returns the authenticated account's profile. The shape differs by
// role; balances are included since the account owner may see them.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if role == RoleRestaurant {
		rest, err := h.Restaurants.GetByID(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"id":            rest.ID,
			"role":          RoleRestaurant,
			"name":          rest.Name,
			"email":         rest.Email,
			"address":       rest.Address,
			"postal_code":   rest.PostalCode,
			"description":   rest.Description,
			"working_days":  rest.WorkingDays,
			"opening_hours": rest.OpeningHours,
			"balance":       rest.Balance,
		})
	}
	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          cust.ID,
		"role":        RoleCustomer,
		"first_name":  cust.FirstName,
		"last_name":   cust.LastName,
		"email":       cust.Email,
		"address":     cust.Address,
		"postal_code": cust.PostalCode,
		"balance":     cust.Balance,
	})
}

// UpdateMe updates the authenticated account's editable profile fields.
// Restaurant hours descriptors are re-validated, matching registration.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if role == RoleRestaurant {
		var req registerRestaurantReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		if err := hours.Validate(req.WorkingDays, req.OpeningHours); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		rest := model.Restaurant{
			ID:           id,
			Name:         req.Name,
			Address:      req.Address,
			PostalCode:   req.PostalCode,
			Description:  req.Description,
			WorkingDays:  req.WorkingDays,
			OpeningHours: req.OpeningHours,
		}
		if err := h.Restaurants.UpdateProfile(ctx, &rest); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"updated": true})
	}

	var req registerCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cust := model.Customer{
		ID:         id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		PostalCode: req.PostalCode,
	}
	if err := h.Customers.UpdateProfile(ctx, &cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}
