package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/handler"
	"github.com/mealmarkt/marketplace/internal/middleware"
)

// RegisterRestaurant registers RESTAURANT-scoped endpoints under /v1.
// All routes require a valid JWT and the RESTAURANT role.  Restaurants
// manage their menu and work through incoming orders.
func RegisterRestaurant(e *echo.Echo, menu *handler.MenuHandler, orders *handler.RestaurantOrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleRestaurant),
	)

	// ---- Menu ----
	// NOTE: the guest-facing menu view lives on the public router at
	// GET /v1/restaurants/:id/menu.  These endpoints operate on the
	// acting restaurant's own menu and return full records.
	g.GET("/menu", menu.ListOwn)
	g.POST("/menu", menu.Create)
	g.PUT("/menu/:id", menu.Update)
	g.PATCH("/menu/:id", menu.Update)
	g.DELETE("/menu/:id", menu.Delete)

	// ---- Orders ----
	g.GET("/restaurant/orders", orders.History)
	g.GET("/restaurant/orders/:id", orders.Get)
	g.POST("/restaurant/orders/:id/status", orders.Transition)
}
