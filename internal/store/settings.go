package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const jwtSecretKey = "jwt_secret"

// GetJWTSecret returns the token signing key, creating and storing a random
// one on first use. INSERT OR IGNORE followed by a read keeps concurrent
// first starts on the same key.
func GetJWTSecret(ctx context.Context, q Querier) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	if err := PutSettingIfAbsent(ctx, q, jwtSecretKey, hex.EncodeToString(buf)); err != nil {
		return "", err
	}

	secret, _, err := GetSetting(ctx, q, jwtSecretKey)
	return secret, err
}

// PutSettingIfAbsent stores value under key unless the key already exists.
func PutSettingIfAbsent(ctx context.Context, q Querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns the value stored under key and whether it exists.
func GetSetting(ctx context.Context, q Querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}
