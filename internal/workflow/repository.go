package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

// Tx is the set of store operations the engine performs inside one atomic
// unit. Get methods return nil, nil when the row does not exist.
type Tx interface {
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	InsertRequest(ctx context.Context, r *model.Request) error
	UpdateRequest(ctx context.Context, r *model.Request) error
	ReplaceItems(ctx context.Context, requestID string, items []model.LineItem) error
	AppendHistory(ctx context.Context, requestID string, e model.HistoryEntry) error
	NextValue(ctx context.Context, counter string) (int64, error)

	GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error)
	GetInventoryItemByName(ctx context.Context, name string) (*model.InventoryItem, error)
	InsertInventoryItem(ctx context.Context, it *model.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, it *model.InventoryItem) error
	// ReceiveStock adds to the line with this exact name, creating it if needed.
	ReceiveStock(ctx context.Context, name string, qty int, unitPrice decimal.Decimal, at time.Time) (*model.InventoryItem, bool, error)
	// WithdrawStock fails with an error wrapping store.ErrInsufficientStock
	// and leaves the line untouched when qty exceeds what is on hand.
	WithdrawStock(ctx context.Context, name string, qty int, at time.Time) (*model.InventoryItem, error)

	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	InsertAsset(ctx context.Context, a *model.Asset) error
	UpdateAsset(ctx context.Context, a *model.Asset) error
	ListAvailableAssets(ctx context.Context) ([]model.Asset, error)
	ListAssetsByRequest(ctx context.Context, requestID string) ([]model.Asset, error)
}

// Repository runs engine work against the store. InTx commits only if fn
// returns nil; any error rolls back every write fn made. View runs read-only
// work without a transaction.
type Repository interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
}
