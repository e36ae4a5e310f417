package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/marketplace/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func orderRow(id uint64, status model.OrderStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "restaurant_id", "content", "notes",
		"status", "total_cost", "created_at",
	}).AddRow(id, 1, 3, `[{"item_id":11,"name":"Tagliatelle","description":"","price_at_order":15,"quantity":2}]`,
		"", string(status), 30.0, time.Now())
}

func TestListActiveByCustomerFiltersStatuses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE customer_id=\? AND status IN \(\?,\?\) ORDER BY created_at DESC`).
		WithArgs(uint64(1), "received", "accepted").
		WillReturnRows(orderRow(5, model.StatusReceived))

	orders, err := repo.ListActiveByCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.StatusReceived, orders[0].Status)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, uint64(11), orders[0].Lines[0].ItemID)
	assert.Equal(t, 15.0, orders[0].Lines[0].PriceAtOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFinishedByRestaurantFiltersStatuses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE restaurant_id=\? AND status IN \(\?,\?\) ORDER BY created_at DESC`).
		WithArgs(uint64(3), "completed", "rejected").
		WillReturnRows(orderRow(6, model.StatusCompleted))

	orders, err := repo.ListFinishedByRestaurant(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.StatusCompleted, orders[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE customer_id=`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "restaurant_id", "content", "notes",
			"status", "total_cost", "created_at",
		}))

	orders, err := repo.ListActiveByCustomer(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestGetByIDUnmarshalsSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id=\? LIMIT 1`).
		WithArgs(uint64(5)).
		WillReturnRows(orderRow(5, model.StatusAccepted))

	o, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), o.ID)
	assert.Equal(t, model.StatusAccepted, o.Status)
	assert.Equal(t, "Tagliatelle", o.Lines[0].Name)
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id=\? LIMIT 1`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "restaurant_id", "content", "notes",
			"status", "total_cost", "created_at",
		}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
