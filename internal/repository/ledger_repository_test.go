package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerLazyCreatesSingletonRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerRepo(db)

	mock.ExpectBegin()
	// First settlement: the row does not exist yet.
	mock.ExpectQuery(`SELECT id, balance, updated_at FROM platform_account WHERE id=1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "updated_at"}))
	mock.ExpectExec(`INSERT INTO platform_account \(id, balance\) VALUES \(1, 0\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT id, balance, updated_at FROM platform_account WHERE id=1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "updated_at"}).
			AddRow(1, 0.0, time.Now()))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	acct, err := repo.GetForUpdateTx(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), acct.ID)
	assert.Zero(t, acct.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerLocksExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance, updated_at FROM platform_account WHERE id=1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "updated_at"}).
			AddRow(1, 123.45, time.Now()))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	acct, err := repo.GetForUpdateTx(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, 123.45, acct.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
