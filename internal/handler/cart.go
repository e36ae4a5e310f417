package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/cart"
	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// CartHandler exposes the session cart to customers. Cart prices are
// display hints cached at add time; checkout re-prices everything from
// the live menu.
type CartHandler struct {
	Carts *cart.Store
	Menu  *repository.MenuRepo
}

func NewCartHandler(carts *cart.Store, menu *repository.MenuRepo) *CartHandler {
	if carts == nil || menu == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{Carts: carts, Menu: menu}
}

// cartLineResp is one cart line as returned to the frontend, with the
// per-line display total precomputed.
type cartLineResp struct {
	ItemID     uint64  `json:"item_id"`
	Name       string  `json:"name"`
	Quantity   uint32  `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

// cartResponse renders a cart as {cart_items, total_price}, the shape
// every cart mutation returns.
func cartResponse(c model.Cart) echo.Map {
	items := make([]cartLineResp, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, cartLineResp{
			ItemID:     l.ItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Price:      l.CachedPrice,
			TotalPrice: l.CachedPrice * float64(l.Quantity),
		})
	}
	return echo.Map{
		"restaurant_id": c.RestaurantID,
		"cart_items":    items,
		"total_price":   c.DisplayTotal(),
	}
}

// Get handles GET /v1/cart.
func (h *CartHandler) Get(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	snap, err := h.Carts.Snapshot(c.Request().Context(), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load cart"})
	}
	return c.JSON(http.StatusOK, cartResponse(snap))
}

type addToCartReq struct {
	ItemID   uint64 `json:"item_id"`
	Quantity uint32 `json:"quantity"`
}

// Add handles POST /v1/cart/items. The menu item must exist (404
// otherwise); repeated adds of the same item accumulate quantity.
func (h *CartHandler) Add(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addToCartReq
	if err := c.Bind(&req); err != nil || req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id is required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ctx := c.Request().Context()
	item, err := h.Menu.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	snap, err := h.Carts.Add(ctx, customerID, item, req.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update cart"})
	}
	return c.JSON(http.StatusOK, cartResponse(snap))
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity handles PATCH /v1/cart/items/:id. Requested quantities
// below 1 are clamped to 1; an item not in the cart is a no-op.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req updateQuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	snap, err := h.Carts.UpdateQuantity(c.Request().Context(), customerID, itemID, req.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update cart"})
	}
	return c.JSON(http.StatusOK, cartResponse(snap))
}

// Remove handles DELETE /v1/cart/items/:id. Removing an absent item is
// not an error.
func (h *CartHandler) Remove(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	snap, err := h.Carts.Remove(c.Request().Context(), customerID, itemID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update cart"})
	}
	return c.JSON(http.StatusOK, cartResponse(snap))
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Carts.Clear(c.Request().Context(), customerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clear cart"})
	}
	return c.JSON(http.StatusOK, cartResponse(model.Cart{}))
}
