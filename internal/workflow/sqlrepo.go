package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// SQLRepository is the Repository backed by the SQLite store.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository returns a repository over db.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// InTx runs fn inside one database transaction.
func (r *SQLRepository) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(sqlTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// View runs fn directly against the pool.
func (r *SQLRepository) View(ctx context.Context, fn func(Tx) error) error {
	return fn(sqlTx{q: r.db})
}

type sqlTx struct {
	q store.Querier
}

func (t sqlTx) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return store.GetRequest(ctx, t.q, id)
}

func (t sqlTx) InsertRequest(ctx context.Context, r *model.Request) error {
	return store.InsertRequest(ctx, t.q, r)
}

func (t sqlTx) UpdateRequest(ctx context.Context, r *model.Request) error {
	return store.UpdateRequest(ctx, t.q, r)
}

func (t sqlTx) ReplaceItems(ctx context.Context, requestID string, items []model.LineItem) error {
	return store.ReplaceItems(ctx, t.q, requestID, items)
}

func (t sqlTx) AppendHistory(ctx context.Context, requestID string, e model.HistoryEntry) error {
	return store.AppendHistory(ctx, t.q, requestID, e)
}

func (t sqlTx) NextValue(ctx context.Context, counter string) (int64, error) {
	return store.NextValue(ctx, t.q, counter)
}

func (t sqlTx) GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	return store.GetInventoryItem(ctx, t.q, id)
}

func (t sqlTx) GetInventoryItemByName(ctx context.Context, name string) (*model.InventoryItem, error) {
	return store.GetInventoryItemByName(ctx, t.q, name)
}

func (t sqlTx) InsertInventoryItem(ctx context.Context, it *model.InventoryItem) error {
	return store.InsertInventoryItem(ctx, t.q, it)
}

func (t sqlTx) UpdateInventoryItem(ctx context.Context, it *model.InventoryItem) error {
	return store.UpdateInventoryItem(ctx, t.q, it)
}

func (t sqlTx) ReceiveStock(ctx context.Context, name string, qty int, unitPrice decimal.Decimal, at time.Time) (*model.InventoryItem, bool, error) {
	return store.ReceiveStock(ctx, t.q, name, qty, unitPrice, at)
}

func (t sqlTx) WithdrawStock(ctx context.Context, name string, qty int, at time.Time) (*model.InventoryItem, error) {
	return store.WithdrawStock(ctx, t.q, name, qty, at)
}

func (t sqlTx) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	return store.GetAsset(ctx, t.q, id)
}

func (t sqlTx) InsertAsset(ctx context.Context, a *model.Asset) error {
	return store.InsertAsset(ctx, t.q, a)
}

func (t sqlTx) UpdateAsset(ctx context.Context, a *model.Asset) error {
	return store.UpdateAsset(ctx, t.q, a)
}

func (t sqlTx) ListAvailableAssets(ctx context.Context) ([]model.Asset, error) {
	return store.ListAvailableAssets(ctx, t.q)
}

func (t sqlTx) ListAssetsByRequest(ctx context.Context, requestID string) ([]model.Asset, error) {
	return store.ListAssetsByRequest(ctx, t.q, requestID)
}
