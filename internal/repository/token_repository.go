package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash'
// column). Tokens carry the account role so a refreshed access token
// keeps its CUSTOMER/RESTAURANT scope.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, role, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, role, token_hash, expires_at) VALUES (?,?,?,?)",
		userID, role, tokenHash, exp)
	return err
}

// ValidateRefresh returns the account ID and role if a non-revoked,
// non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, string, error) {
	var (
		userID    uint64
		role      string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, role, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &role, &expiresAt, &revokedAt)
	if err != nil {
		return 0, "", err
	}
	if revokedAt.Valid {
		return 0, "", sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, "", sql.ErrNoRows
	}
	return userID, role, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all of an account's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND role=? AND revoked_at IS NULL",
		userID, role)
	return err
}
