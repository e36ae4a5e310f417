package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
	"github.com/mealmarkt/marketplace/internal/service"
)

// RestaurantOrderHandler serves the restaurant side of the order
// workflow: incoming order lists, detail views and status transitions.
// All methods assume JWT authentication and RESTAURANT role validation
// have been performed by middleware.
type RestaurantOrderHandler struct {
	Orders *repository.OrderRepo
	Status *service.StatusService
}

func NewRestaurantOrderHandler(orders *repository.OrderRepo, status *service.StatusService) *RestaurantOrderHandler {
	if orders == nil || status == nil {
		panic("nil dependency passed to NewRestaurantOrderHandler")
	}
	return &RestaurantOrderHandler{Orders: orders, Status: status}
}

// History handles GET /v1/restaurant/orders, scoped to the acting
// restaurant and partitioned like the customer view.
func (h *RestaurantOrderHandler) History(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	active, err := h.Orders.ListActiveByRestaurant(ctx, restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	completed, err := h.Orders.ListFinishedByRestaurant(ctx, restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"active":    toOrderResps(active),
		"completed": toOrderResps(completed),
	})
}

// Get handles GET /v1/restaurant/orders/:id. Unlike the customer view,
// a foreign order answers 403 so operators see the distinction between
// a missing and a misaddressed order.
func (h *RestaurantOrderHandler) Get(c echo.Context) error {
	restaurantID, err := getUserID(c)
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
	if order.RestaurantID != restaurantID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderResp(order)})
}

type transitionReq struct {
	Status string `json:"status"`
}

// Transition handles POST /v1/restaurant/orders/:id/status. Moves are
// gated by the workflow table: received → accepted|rejected,
// accepted → completed|rejected; terminal states allow nothing, and
// re-applying the current status is rejected too.
func (h *RestaurantOrderHandler) Transition(c echo.Context) error {
	restaurantID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	err = h.Status.Transition(c.Request().Context(), orderID, next, restaurantID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, service.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order_id": orderID, "status": next})
}
