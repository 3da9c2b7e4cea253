package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// Setting keys.
const (
	SettingJWTSecret    = "jwt_secret"
	SettingTransferMode = "transfer_mode"
)

// GetSetting returns the value stored under key. ok is false when the key
// has never been set.
func GetSetting(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing the previous value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// ensureSetting stores candidate under key unless the key is already set and
// returns the stored value. Concurrent callers all see the first value written.
func ensureSetting(ctx context.Context, db *sql.DB, key, candidate string) (string, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	value, ok, err := GetSetting(ctx, db, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %s vanished after insert", key)
	}
	return value, nil
}

// GetJWTSecret returns the token signing secret, generating it on first use.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return ensureSetting(ctx, db, SettingJWTSecret, hex.EncodeToString(buf))
}

// RecordTransferMode stores the transfer mode the server runs with and
// returns the mode recorded by the previous start, or "" on the first start.
func RecordTransferMode(ctx context.Context, db *sql.DB, mode string) (string, error) {
	prev, _, err := GetSetting(ctx, db, SettingTransferMode)
	if err != nil {
		return "", err
	}
	if err := SetSetting(ctx, db, SettingTransferMode, mode); err != nil {
		return "", err
	}
	return prev, nil
}
