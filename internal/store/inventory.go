package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// ErrInsufficientStock is returned when a withdrawal exceeds what is on hand.
var ErrInsufficientStock = errors.New("insufficient stock")

const inventoryColumns = `id, name, quantity, unit, min_stock, unit_price, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	it := &model.InventoryItem{}
	var price string
	if err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.Unit, &it.MinStock, &price, &it.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parsing unit price %q: %w", price, err)
	}
	it.UnitPrice = p
	return it, nil
}

// NextInventoryID allocates an INV-NNN identifier.
func NextInventoryID(ctx context.Context, q Querier) (string, error) {
	n, err := NextValue(ctx, q, CounterInventory)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%03d", n), nil
}

// InsertInventoryItem stores a new inventory line. An empty ID is allocated.
func InsertInventoryItem(ctx context.Context, q Querier, it *model.InventoryItem) error {
	if it.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if it.ID == "" {
		id, err := NextInventoryID(ctx, q)
		if err != nil {
			return err
		}
		it.ID = id
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO inventory (`+inventoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Name, it.Quantity, it.Unit, it.MinStock, it.UnitPrice.String(), it.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating inventory item: %w", err)
	}
	return nil
}

// GetInventoryItem returns an inventory line by ID, or nil.
func GetInventoryItem(ctx context.Context, q Querier, id string) (*model.InventoryItem, error) {
	it, err := scanInventoryItem(q.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return it, nil
}

// GetInventoryItemByName returns the inventory line whose name matches
// exactly, or nil.
func GetInventoryItemByName(ctx context.Context, q Querier, name string) (*model.InventoryItem, error) {
	it, err := scanInventoryItem(q.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item by name: %w", err)
	}
	return it, nil
}

// ListInventory returns inventory lines ordered by ID, optionally filtered by
// a case-insensitive name search.
func ListInventory(ctx context.Context, q Querier, search string) ([]model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY id`
	return queryInventory(ctx, q, query, args...)
}

// ListLowStock returns inventory lines at or below their minimum stock.
func ListLowStock(ctx context.Context, q Querier) ([]model.InventoryItem, error) {
	return queryInventory(ctx, q,
		`SELECT `+inventoryColumns+` FROM inventory WHERE quantity <= min_stock ORDER BY quantity, id`)
}

func queryInventory(ctx context.Context, q Querier, query string, args ...any) ([]model.InventoryItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateInventoryItem writes every mutable field of an inventory line.
func UpdateInventoryItem(ctx context.Context, q Querier, it *model.InventoryItem) error {
	if it.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	result, err := q.ExecContext(ctx,
		`UPDATE inventory
		 SET name = ?, quantity = ?, unit = ?, min_stock = ?, unit_price = ?, updated_at = ?
		 WHERE id = ?`,
		it.Name, it.Quantity, it.Unit, it.MinStock, it.UnitPrice.String(), it.UpdatedAt.UTC(), it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating inventory item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating inventory item: %s not found", it.ID)
	}
	return nil
}

// CountInventory returns the number of inventory lines.
func CountInventory(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting inventory: %w", err)
	}
	return n, nil
}

// ReceiveStock adds qty to the inventory line named name, creating the line
// when no name matches exactly. It reports whether a line was created.
func ReceiveStock(ctx context.Context, q Querier, name string, qty int, unitPrice decimal.Decimal, at time.Time) (*model.InventoryItem, bool, error) {
	if qty <= 0 {
		return nil, false, fmt.Errorf("quantity must be positive")
	}

	result, err := q.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity + ?, updated_at = ? WHERE name = ?`,
		qty, at.UTC(), name,
	)
	if err != nil {
		return nil, false, fmt.Errorf("adding stock: %w", err)
	}

	created := false
	if n, _ := result.RowsAffected(); n == 0 {
		it := &model.InventoryItem{Name: name, Quantity: qty, UnitPrice: unitPrice, UpdatedAt: at}
		if err := InsertInventoryItem(ctx, q, it); err != nil {
			return nil, false, err
		}
		created = true
	}

	it, err := GetInventoryItemByName(ctx, q, name)
	if err != nil {
		return nil, false, err
	}
	return it, created, nil
}

// WithdrawStock removes qty from the inventory line named name. The decrement
// is conditional on enough stock being on hand, so the quantity can never go
// negative; otherwise ErrInsufficientStock is returned and nothing changes.
func WithdrawStock(ctx context.Context, q Querier, name string, qty int, at time.Time) (*model.InventoryItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	result, err := q.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity - ?, updated_at = ?
		 WHERE name = ? AND quantity >= ?`,
		qty, at.UTC(), name, qty,
	)
	if err != nil {
		return nil, fmt.Errorf("removing stock: %w", err)
	}

	it, err := GetInventoryItemByName(ctx, q, name)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		have := 0
		if it != nil {
			have = it.Quantity
		}
		return nil, fmt.Errorf("%w: %s: have %d, need %d", ErrInsufficientStock, name, have, qty)
	}
	return it, nil
}
