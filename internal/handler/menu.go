package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// MenuHandler lets an authenticated restaurant manage its own menu.
// All methods assume JWT authentication and RESTAURANT role validation
// have been performed by middleware.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(menu *repository.MenuRepo) *MenuHandler {
	if menu == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{Menu: menu}
}

type menuItemReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (r menuItemReq) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.Price < 0 {
		return "price must be non-negative"
	}
	return ""
}

// ListOwn handles GET /v1/menu and returns the acting restaurant's own
// menu with full records, unlike the sanitized public menu view.
func (h *MenuHandler) ListOwn(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Menu.ListByRestaurant(c.Request().Context(), restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/menu. Price must parse as a non-negative
// number; 422 otherwise.
func (h *MenuHandler) Create(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}
	item := model.MenuItem{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
	}
	if err := h.Menu.Create(c.Request().Context(), &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu item"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": item})
}

// Update handles PUT /v1/menu/:id. Only the owning restaurant may edit
// an item; editing never touches historical order snapshots.
func (h *MenuHandler) Update(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}
	item := model.MenuItem{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.Menu.Update(c.Request().Context(), &item, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete handles DELETE /v1/menu/:id.
func (h *MenuHandler) Delete(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	if err := h.Menu.Delete(c.Request().Context(), itemID, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete menu item"})
	}
	return c.NoContent(http.StatusNoContent)
}
