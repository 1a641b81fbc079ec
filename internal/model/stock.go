package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a quantity-tracked stock line, matched by exact name.
type InventoryItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	Unit      string          `json:"unit"`
	MinStock  int             `json:"min_stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Low reports whether the item is at or below its minimum stock threshold.
func (i InventoryItem) Low() bool {
	return i.Quantity <= i.MinStock
}

// Asset is an individually tracked piece of equipment that can be lent out.
type Asset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Serial    string          `json:"serial"`
	Status    string          `json:"status"`
	Holder    string          `json:"holder"`
	Condition string          `json:"condition"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	RequestID *string         `json:"request_id,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Asset statuses.
const (
	AssetAvailable = "Available"
	AssetBorrowed  = "Borrowed"
	AssetBroken    = "Broken"
)

// NoHolder is the holder value of an asset that nobody is borrowing.
const NoHolder = "-"

// DefaultCondition is recorded for newly registered assets.
const DefaultCondition = "Good"

// Consistent reports whether the status, holder and request reference agree.
func (a Asset) Consistent() bool {
	switch a.Status {
	case AssetBorrowed:
		return a.Holder != NoHolder && a.Holder != "" && a.RequestID != nil
	case AssetAvailable, AssetBroken:
		return a.Holder == NoHolder && a.RequestID == nil
	}
	return false
}
