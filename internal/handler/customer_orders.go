package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
)

// CustomerOrderHandler serves a customer's order history and detail
// views. History is partitioned into active (received/accepted) and
// completed (completed/rejected) orders, most recent first.
type CustomerOrderHandler struct {
	Orders *repository.OrderRepo
}

func NewCustomerOrderHandler(orders *repository.OrderRepo) *CustomerOrderHandler {
	if orders == nil {
		panic("nil repository passed to NewCustomerOrderHandler")
	}
	return &CustomerOrderHandler{Orders: orders}
}

// orderResp is the wire shape of an order. Items round-trip exactly
// from the snapshot frozen at checkout.
type orderResp struct {
	ID           uint64            `json:"id"`
	CustomerID   uint64            `json:"customer_id"`
	RestaurantID uint64            `json:"restaurant_id"`
	Items        []model.OrderLine `json:"items"`
	Notes        string            `json:"notes"`
	Status       model.OrderStatus `json:"status"`
	TotalCost    float64           `json:"total_cost"`
	CreatedAt    string            `json:"created_at"`
}

func toOrderResp(o model.Order) orderResp {
	return orderResp{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Items:        o.Lines,
		Notes:        o.Notes,
		Status:       o.Status,
		TotalCost:    o.TotalCost,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toOrderResps(orders []model.Order) []orderResp {
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return out
}

// History handles GET /v1/orders and returns both partitions in one
// response.
func (h *CustomerOrderHandler) History(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	active, err := h.Orders.ListActiveByCustomer(ctx, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	completed, err := h.Orders.ListFinishedByCustomer(ctx, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"active":    toOrderResps(active),
		"completed": toOrderResps(completed),
	})
}

// Get handles GET /v1/orders/:id. A customer only ever sees their own
// orders; a foreign order id reads as not found rather than forbidden
// so order ids are not probeable.
func (h *CustomerOrderHandler) Get(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, err := h.Orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order"})
	}
	if order.CustomerID != customerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderResp(order)})
}
