package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/service"
)

// CheckoutHandler turns the session cart into a settled order. The
// heavy lifting (pricing, three-way balance transfer, order creation)
// happens in service.CheckoutService inside one database transaction.
type CheckoutHandler struct {
	Checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	if checkout == nil {
		panic("nil service passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Checkout: checkout}
}

type checkoutReq struct {
	Notes string `json:"notes"`
}

// Process handles POST /v1/checkout. Failure reasons map onto distinct
// status codes so the frontend can route the customer: 404 no
// restaurant, 400 empty cart, 402 insufficient funds, 500 settlement
// failure (cart kept intact for retry in all cases).
func (h *CheckoutHandler) Process(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	order, err := h.Checkout.Checkout(c.Request().Context(), customerID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRestaurant):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not selected"})
		case errors.Is(err, service.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		case errors.Is(err, service.ErrInsufficientFunds):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient funds"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":   order.ID,
		"total_cost": order.TotalCost,
		"status":     order.Status,
	})
}
