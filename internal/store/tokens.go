package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken puts a token ID on the revocation list until the token expires.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, userID int64, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		 VALUES (?, ?, ?, ?)`,
		jti, userID, expiresAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether the token ID is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}

// PurgeRevokedTokens drops revocations of tokens that expired before now and
// returns how many were removed. Expired tokens fail validation on their own.
func PurgeRevokedTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return n, nil
}
