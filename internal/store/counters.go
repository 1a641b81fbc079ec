package store

import (
	"context"
	"fmt"
)

// Counter names.
const (
	CounterRequests  = "requests"
	CounterInventory = "inventory"
	CounterAssets    = "assets"
)

// DocumentCounter is the counter name backing document numbers of one prefix.
func DocumentCounter(prefix string) string {
	return "doc:" + prefix
}

// NextValue atomically increments the named counter and returns the new
// value. The first call for a name returns 1. Because the increment happens
// in a single statement, two writers can never observe the same value.
func NextValue(ctx context.Context, q Querier, name string) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = value + 1
		 RETURNING value`, name,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("incrementing counter %s: %w", name, err)
	}
	return value, nil
}

// CurrentValue returns the last value handed out by a counter, or 0.
func CurrentValue(ctx context.Context, q Querier, name string) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(value), 0) FROM counters WHERE name = ?`, name,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("reading counter %s: %w", name, err)
	}
	return value, nil
}
