package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/marketplace/internal/repository"
	"github.com/mealmarkt/marketplace/internal/service"
)

func newTransitionContext(t *testing.T, body string, orderID string, restaurantID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/restaurant/orders/"+orderID+"/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	c.Set("user_id", restaurantID)
	c.Set("role", RoleRestaurant)
	return c, rec
}

func newOrderHandler(t *testing.T) (*RestaurantOrderHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	orders := repository.NewOrderRepo(db)
	return NewRestaurantOrderHandler(orders, service.NewStatusService(db, orders)), mock
}

func expectLockedOrder(mock sqlmock.Sqlmock, status string, ownerID uint64) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, restaurant_id FROM orders WHERE id=\? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "restaurant_id"}).
			AddRow(status, ownerID))
}

func TestTransitionEndpointAccepts(t *testing.T) {
	h, mock := newOrderHandler(t)
	expectLockedOrder(mock, "received", 3)
	mock.ExpectExec(`UPDATE orders SET status=\? WHERE id=\?`).
		WithArgs("accepted", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newTransitionContext(t, `{"status":"accepted"}`, "5", 3)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accepted"`)
}

func TestTransitionEndpointUnknownStatus(t *testing.T) {
	h, _ := newOrderHandler(t)
	c, rec := newTransitionContext(t, `{"status":"shipped"}`, "5", 3)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionEndpointInvalidMove(t *testing.T) {
	h, mock := newOrderHandler(t)
	expectLockedOrder(mock, "received", 3)
	mock.ExpectRollback()

	c, rec := newTransitionContext(t, `{"status":"completed"}`, "5", 3)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransitionEndpointForeignOrder(t *testing.T) {
	h, mock := newOrderHandler(t)
	expectLockedOrder(mock, "received", 3)
	mock.ExpectRollback()

	// Restaurant 9 acting on restaurant 3's order.
	c, rec := newTransitionContext(t, `{"status":"accepted"}`, "5", 9)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransitionEndpointMissingOrder(t *testing.T) {
	h, mock := newOrderHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, restaurant_id FROM orders WHERE id=\? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "restaurant_id"}))
	mock.ExpectRollback()

	c, rec := newTransitionContext(t, `{"status":"accepted"}`, "404", 3)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransitionEndpointBadOrderID(t *testing.T) {
	h, _ := newOrderHandler(t)
	c, rec := newTransitionContext(t, `{"status":"accepted"}`, "abc", 3)
	require.NoError(t, h.Transition(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
