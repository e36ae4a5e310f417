package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/marketplace/internal/model"
	"github.com/mealmarkt/marketplace/internal/repository"
)

func newStatusFixture(t *testing.T) (*StatusService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatusService(db, repository.NewOrderRepo(db)), mock
}

func expectOrderLock(mock sqlmock.Sqlmock, orderID uint64, status model.OrderStatus, ownerID uint64) {
	mock.ExpectQuery(`SELECT status, restaurant_id FROM orders WHERE id=\? FOR UPDATE`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "restaurant_id"}).
			AddRow(string(status), ownerID))
}

func TestTransitionAccept(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	expectOrderLock(mock, 5, model.StatusReceived, 3)
	mock.ExpectExec(`UPDATE orders SET status=\? WHERE id=\?`).
		WithArgs("accepted", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Transition(context.Background(), 5, model.StatusAccepted, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionCompleteAfterAccept(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	expectOrderLock(mock, 5, model.StatusAccepted, 3)
	mock.ExpectExec(`UPDATE orders SET status=\? WHERE id=\?`).
		WithArgs("completed", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Transition(context.Background(), 5, model.StatusCompleted, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A received order may not jump straight to completed.
func TestTransitionSkippingAcceptIsRejected(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	expectOrderLock(mock, 5, model.StatusReceived, 3)
	mock.ExpectRollback()

	err := svc.Transition(context.Background(), 5, model.StatusCompleted, 3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOutOfTerminalState(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	expectOrderLock(mock, 5, model.StatusRejected, 3)
	mock.ExpectRollback()

	err := svc.Transition(context.Background(), 5, model.StatusAccepted, 3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionForeignOrder(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	expectOrderLock(mock, 5, model.StatusReceived, 3)
	mock.ExpectRollback()

	// Restaurant 9 tries to accept restaurant 3's order.
	err := svc.Transition(context.Background(), 5, model.StatusAccepted, 9)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc, mock := newStatusFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, restaurant_id FROM orders WHERE id=\? FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "restaurant_id"}))
	mock.ExpectRollback()

	err := svc.Transition(context.Background(), 404, model.StatusAccepted, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
