// Package store holds the SQL for every persisted record. Functions accept a
// Querier so the same code runs against the pool or inside a transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// encodeNames stores a filename list as a JSON array.
func encodeNames(names []string) (string, error) {
	if len(names) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encoding filenames: %w", err)
	}
	return string(data), nil
}

func decodeNames(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decoding filenames: %w", err)
	}
	return names, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
