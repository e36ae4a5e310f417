package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/hours"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints: the
// restaurant directory and restaurant menus. Responses are sanitized:
// no balances, no emails.
type PublicHandler struct {
	Restaurants *repository.RestaurantRepo
	Menu        *repository.MenuRepo
}

func NewPublicHandler(restaurants *repository.RestaurantRepo, menu *repository.MenuRepo) *PublicHandler {
	if restaurants == nil || menu == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Restaurants: restaurants, Menu: menu}
}

type publicRestaurant struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	PostalCode   string `json:"postal_code"`
	Description  string `json:"description"`
	WorkingDays  string `json:"working_days"`
	OpeningHours string `json:"opening_hours"`
	Open         bool   `json:"open"`
}

// ListRestaurants handles GET /v1/restaurants. With ?open=true only
// restaurants currently inside their working-hours window are returned;
// otherwise all restaurants are listed with their open flag computed.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	ctx := c.Request().Context()
	all, err := h.Restaurants.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load restaurants"})
	}
	onlyOpen := c.QueryParam("open") == "true"
	now := time.Now()
	items := make([]publicRestaurant, 0, len(all))
	for _, r := range all {
		open := hours.IsOpen(r.WorkingDays, r.OpeningHours, now)
		if onlyOpen && !open {
			continue
		}
		items = append(items, publicRestaurant{
			ID:           r.ID,
			Name:         r.Name,
			Address:      r.Address,
			PostalCode:   r.PostalCode,
			Description:  r.Description,
			WorkingDays:  r.WorkingDays,
			OpeningHours: r.OpeningHours,
			Open:         open,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type publicMenuItem struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// GetMenu handles GET /v1/restaurants/:id/menu. Returns 404 when the
// restaurant does not exist.
func (h *PublicHandler) GetMenu(c echo.Context) error {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	menu, err := h.Menu.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu"})
	}
	items := make([]publicMenuItem, 0, len(menu))
	for _, m := range menu {
		items = append(items, publicMenuItem{ID: m.ID, Name: m.Name, Description: m.Description, Price: m.Price})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
