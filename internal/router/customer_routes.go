package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/handler"
	"github.com/mealmarkt/marketplace/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Customers manage their session
// cart, place orders through checkout and browse their own order history.
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, checkout *handler.CheckoutHandler, orders *handler.CustomerOrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleCustomer),
	)

	// ---- Cart ----
	g.GET("/cart", cart.Get)
	g.POST("/cart/items", cart.Add)
	g.PATCH("/cart/items/:id", cart.UpdateQuantity)
	g.DELETE("/cart/items/:id", cart.Remove)
	g.DELETE("/cart", cart.Clear)

	// ---- Checkout ----
	// Turns the cart into an order at live menu prices and settles the
	// customer, restaurant and platform balances in one transaction.
	g.POST("/checkout", checkout.Process)

	// ---- Order history ----
	g.GET("/orders", orders.History)
	g.GET("/orders/:id", orders.Get)
}
