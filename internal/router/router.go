package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/handler"
	"github.com/mealmarkt/marketplace/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check that
// load balancers or monitoring systems can probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while profile endpoints for any authenticated account live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Two separate registration endpoints because customer and restaurant
	// profiles carry different required fields.
	g.POST("/register/customer", a.RegisterCustomer)
	g.POST("/register/restaurant", a.RegisterRestaurant)
	// Login is shared: the account's role is resolved by email lookup.
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token on every use.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a JSON body with the refresh token and revokes it;
	// no JWT is required so an expired session can still be terminated.
	g.POST("/logout", a.Logout)

	// Profile endpoints require a valid access token but accept both roles.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleCustomer, handler.RoleRestaurant))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateMe)
}

// RegisterPublic registers unauthenticated browse endpoints.  These return
// sanitized data for guests: restaurant listings (optionally filtered to
// currently open ones) and per-restaurant menus without internal fields.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/restaurants", p.ListRestaurants)
	e.GET("/v1/restaurants/:id/menu", p.GetMenu)
}
