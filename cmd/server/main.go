package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mealmarkt/marketplace/internal/cart"
	"github.com/mealmarkt/marketplace/internal/config"
	"github.com/mealmarkt/marketplace/internal/database"
	"github.com/mealmarkt/marketplace/internal/handler"
	"github.com/mealmarkt/marketplace/internal/middleware"
	"github.com/mealmarkt/marketplace/internal/queue"
	"github.com/mealmarkt/marketplace/internal/repository"
	"github.com/mealmarkt/marketplace/internal/router"
	"github.com/mealmarkt/marketplace/internal/service"
)

func main() {
	// Load a local .env if present; real deployments supply env directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the session carts, so unlike a cache it is not optional.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed, carts are unavailable without it")
	}

	// ---- Repositories ----
	customers := repository.NewCustomerRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	ledger := repository.NewLedgerRepo(db)
	tokens := repository.NewTokenRepo(db)

	// ---- Services ----
	carts := cart.NewStore(rdb)
	publisher := queue.NewPublisher()
	checkout := service.NewCheckoutService(db, carts, menu, customers, restaurants, ledger, orders, publisher)
	status := service.NewStatusService(db, orders)

	// Background consumer that drains placed-order events into the audit
	// log.  Failure keeps the API running; orders still settle without it.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer disabled: %v", err)
		}
	}()

	// ---- HTTP ----
	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authH := handler.NewAuthHandler(cfg, customers, restaurants, tokens)
	publicH := handler.NewPublicHandler(restaurants, menu)
	menuH := handler.NewMenuHandler(menu)
	cartH := handler.NewCartHandler(carts, menu)
	checkoutH := handler.NewCheckoutHandler(checkout)
	custOrdersH := handler.NewCustomerOrderHandler(orders)
	restOrdersH := handler.NewRestaurantOrderHandler(orders, status)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCustomer(e, cartH, checkoutH, custOrdersH, cfg.JWTSecret)
	router.RegisterRestaurant(e, menuH, restOrdersH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
