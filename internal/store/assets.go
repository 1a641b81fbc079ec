package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

const assetColumns = `id, name, serial, status, holder, condition, unit_price, request_id, updated_at`

func scanAsset(row interface{ Scan(...any) error }) (*model.Asset, error) {
	a := &model.Asset{}
	var price string
	var requestID sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Serial, &a.Status, &a.Holder, &a.Condition,
		&price, &requestID, &a.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parsing unit price %q: %w", price, err)
	}
	a.UnitPrice = p
	if requestID.Valid {
		a.RequestID = &requestID.String
	}
	return a, nil
}

// NextAssetID allocates an AST-NNN identifier, skipping numbers already
// taken by assets registered under an explicit ID.
func NextAssetID(ctx context.Context, q Querier) (string, error) {
	for {
		n, err := NextValue(ctx, q, CounterAssets)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("AST-%03d", n)
		existing, err := GetAsset(ctx, q, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
}

// InsertAsset registers an asset. An empty ID is allocated.
func InsertAsset(ctx context.Context, q Querier, a *model.Asset) error {
	if a.ID == "" {
		id, err := NextAssetID(ctx, q)
		if err != nil {
			return err
		}
		a.ID = id
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO assets (`+assetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Serial, a.Status, a.Holder, a.Condition, a.UnitPrice.String(),
		a.RequestID, a.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	return nil
}

// GetAsset returns an asset by ID, or nil.
func GetAsset(ctx context.Context, q Querier, id string) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// ListAssets returns assets ordered by ID, optionally filtered by a
// case-insensitive search over name and ID.
func ListAssets(ctx context.Context, q Querier, search string) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE name LIKE ? OR id LIKE ?`
		args = append(args, "%"+s+"%", "%"+s+"%")
	}
	query += ` ORDER BY id`
	return queryAssets(ctx, q, query, args...)
}

// ListAvailableAssets returns every Available asset ordered by ID.
func ListAvailableAssets(ctx context.Context, q Querier) ([]model.Asset, error) {
	return queryAssets(ctx, q,
		`SELECT `+assetColumns+` FROM assets WHERE status = ? ORDER BY id`, model.AssetAvailable)
}

// ListAssetsByRequest returns the assets currently lent out under a request.
func ListAssetsByRequest(ctx context.Context, q Querier, requestID string) ([]model.Asset, error) {
	return queryAssets(ctx, q,
		`SELECT `+assetColumns+` FROM assets WHERE request_id = ? ORDER BY id`, requestID)
}

func queryAssets(ctx context.Context, q Querier, query string, args ...any) ([]model.Asset, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// UpdateAsset writes every mutable field of an asset. The schema rejects a
// status/holder/request combination that disagrees.
func UpdateAsset(ctx context.Context, q Querier, a *model.Asset) error {
	result, err := q.ExecContext(ctx,
		`UPDATE assets
		 SET name = ?, serial = ?, status = ?, holder = ?, condition = ?,
		     unit_price = ?, request_id = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name, a.Serial, a.Status, a.Holder, a.Condition, a.UnitPrice.String(),
		a.RequestID, a.UpdatedAt.UTC(), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating asset: %s not found", a.ID)
	}
	return nil
}

// CountAssetsByStatus returns the number of assets in each status.
func CountAssetsByStatus(ctx context.Context, q Querier) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting assets: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning asset count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
