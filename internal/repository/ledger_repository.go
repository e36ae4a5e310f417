package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mealmarkt/marketplace/internal/model"
)

// LedgerRepo manages the platform commission account. The
// platform_account table holds exactly one row which is created lazily
// by the first settlement; all access goes through row locks so
// concurrent settlements serialize their credits.
type LedgerRepo struct{ DB *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// GetForUpdateTx returns the singleton platform account locked for the
// duration of the transaction, inserting it with a zero balance when it
// does not exist yet.
func (r *LedgerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx) (model.PlatformAccount, error) {
	acct, err := r.selectForUpdate(ctx, tx)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.PlatformAccount{}, err
	}
	// First settlement ever: create the row, then lock it. A concurrent
	// creator loses on the unique id and falls back to the select.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO platform_account (id, balance) VALUES (1, 0) ON DUPLICATE KEY UPDATE id=id"); err != nil {
		return model.PlatformAccount{}, err
	}
	return r.selectForUpdate(ctx, tx)
}

func (r *LedgerRepo) selectForUpdate(ctx context.Context, tx *sql.Tx) (model.PlatformAccount, error) {
	var acct model.PlatformAccount
	err := tx.QueryRowContext(ctx,
		"SELECT id, balance, updated_at FROM platform_account WHERE id=1 FOR UPDATE").
		Scan(&acct.ID, &acct.Balance, &acct.UpdatedAt)
	return acct, err
}

// AddBalanceTx credits the platform account by delta within the given
// transaction. The caller must hold the row lock via GetForUpdateTx.
func (r *LedgerRepo) AddBalanceTx(ctx context.Context, tx *sql.Tx, delta float64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE platform_account SET balance = balance + ? WHERE id=1", delta)
	return err
}

// Balance returns the current platform balance outside a transaction.
// Returns sql.ErrNoRows before the first settlement.
func (r *LedgerRepo) Balance(ctx context.Context) (float64, error) {
	var b float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT balance FROM platform_account WHERE id=1").Scan(&b)
	return b, err
}
