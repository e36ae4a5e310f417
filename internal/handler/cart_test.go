package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/marketplace/internal/cart"
	"github.com/mealmarkt/marketplace/internal/handler"
	"github.com/mealmarkt/marketplace/internal/repository"
	"github.com/mealmarkt/marketplace/internal/router"
	"github.com/mealmarkt/marketplace/internal/service"
	"github.com/mealmarkt/marketplace/internal/utils"
)

const cartTestSecret = "cart-test-secret"

// cartTestServer wires the cart endpoints exactly like cmd/server does,
// real routes and JWT middleware included, so requests exercise route
// parameters and not just handler methods.
type cartTestServer struct {
	e     *echo.Echo
	mock  sqlmock.Sqlmock
	redis *miniredis.Miniredis
	token string
}

func newCartTestServer(t *testing.T) *cartTestServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	carts := cart.NewStore(rdb)
	checkout := service.NewCheckoutService(db, carts, menu,
		repository.NewCustomerRepo(db), repository.NewRestaurantRepo(db),
		repository.NewLedgerRepo(db), orders, nil)

	e := echo.New()
	router.RegisterCustomer(e,
		handler.NewCartHandler(carts, menu),
		handler.NewCheckoutHandler(checkout),
		handler.NewCustomerOrderHandler(orders),
		cartTestSecret)

	access, err := utils.NewAccessToken(cartTestSecret, 1, handler.RoleCustomer, 15)
	require.NoError(t, err)
	return &cartTestServer{e: e, mock: mock, redis: mr, token: access.Token}
}

type cartItemResp struct {
	ItemID     uint64  `json:"item_id"`
	Name       string  `json:"name"`
	Quantity   uint32  `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

type cartResp struct {
	RestaurantID uint64         `json:"restaurant_id"`
	CartItems    []cartItemResp `json:"cart_items"`
	TotalPrice   float64        `json:"total_price"`
}

func (s *cartTestServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, cartResp) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var parsed cartResp
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func (s *cartTestServer) expectMenuItem(id uint64, restaurantID uint64, name string, price float64) {
	s.mock.ExpectQuery(`SELECT .+ FROM menu_items WHERE id=\? LIMIT 1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "restaurant_id", "name", "description", "price", "created_at", "updated_at",
		}).AddRow(id, restaurantID, name, "", price, time.Now(), time.Now()))
}

func TestCartEndpointsFullFlow(t *testing.T) {
	s := newCartTestServer(t)

	// Add 2x item 11 at 8.50.
	s.expectMenuItem(11, 3, "Margherita", 8.5)
	rec, body := s.do(t, http.MethodPost, "/v1/cart/items", `{"item_id":11,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.CartItems, 1)
	assert.Equal(t, uint64(3), body.RestaurantID)
	assert.Equal(t, uint32(2), body.CartItems[0].Quantity)
	assert.InDelta(t, 17.0, body.TotalPrice, 1e-9)

	// Update the line to quantity 5 through the route parameter.
	rec, body = s.do(t, http.MethodPatch, "/v1/cart/items/11", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.CartItems, 1)
	assert.Equal(t, uint32(5), body.CartItems[0].Quantity)
	assert.InDelta(t, 42.5, body.TotalPrice, 1e-9)

	// Read it back.
	rec, body = s.do(t, http.MethodGet, "/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 42.5, body.TotalPrice, 1e-9)

	// Remove the line through the route parameter.
	rec, body = s.do(t, http.MethodDelete, "/v1/cart/items/11", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.CartItems)
	assert.Zero(t, body.TotalPrice)

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCartClearEndpoint(t *testing.T) {
	s := newCartTestServer(t)

	s.expectMenuItem(11, 3, "Margherita", 8.5)
	rec, _ := s.do(t, http.MethodPost, "/v1/cart/items", `{"item_id":11,"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := s.do(t, http.MethodDelete, "/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.CartItems)
	assert.False(t, s.redis.Exists("cart:customer:1"))
}

func TestCartAddUnknownItem(t *testing.T) {
	s := newCartTestServer(t)

	s.mock.ExpectQuery(`SELECT .+ FROM menu_items WHERE id=\? LIMIT 1`).
		WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "restaurant_id", "name", "description", "price", "created_at", "updated_at",
		}))

	rec, _ := s.do(t, http.MethodPost, "/v1/cart/items", `{"item_id":999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	s := newCartTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
