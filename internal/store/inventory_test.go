package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/db"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

func TestInsertInventoryItemAllocatesID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := &model.InventoryItem{Name: "Glove", Quantity: 10, Unit: "pair", UpdatedAt: time.Now()}
	second := &model.InventoryItem{Name: "Mask", Quantity: 3, Unit: "box", UpdatedAt: time.Now()}
	if err := InsertInventoryItem(ctx, database, first); err != nil {
		t.Fatalf("InsertInventoryItem: %v", err)
	}
	if err := InsertInventoryItem(ctx, database, second); err != nil {
		t.Fatalf("InsertInventoryItem: %v", err)
	}

	if first.ID != "INV-001" || second.ID != "INV-002" {
		t.Errorf("expected INV-001 and INV-002, got %s and %s", first.ID, second.ID)
	}

	items, _ := ListInventory(ctx, database, "")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestInventoryNameIsUnique(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertInventoryItem(ctx, database, &model.InventoryItem{Name: "Glove", UpdatedAt: time.Now()})
	err := InsertInventoryItem(ctx, database, &model.InventoryItem{Name: "Glove", UpdatedAt: time.Now()})
	if err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestReceiveStockUpserts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	it, created, err := ReceiveStock(ctx, database, "Helmet", 5, decimal.NewFromInt(250), now)
	if err != nil {
		t.Fatalf("ReceiveStock: %v", err)
	}
	if !created || it.Quantity != 5 {
		t.Fatalf("expected new line with 5, got created=%v qty=%d", created, it.Quantity)
	}

	it, created, err = ReceiveStock(ctx, database, "Helmet", 3, decimal.Zero, now)
	if err != nil {
		t.Fatalf("ReceiveStock: %v", err)
	}
	if created || it.Quantity != 8 {
		t.Errorf("expected existing line with 8, got created=%v qty=%d", created, it.Quantity)
	}
	if !it.UnitPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected unit price to stay 250, got %s", it.UnitPrice)
	}

	// Matching is by exact name.
	_, created, _ = ReceiveStock(ctx, database, "helmet", 1, decimal.Zero, now)
	if !created {
		t.Error("expected differently cased name to create a new line")
	}
}

func TestWithdrawStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	ReceiveStock(ctx, database, "Cable", 10, decimal.Zero, now)

	it, err := WithdrawStock(ctx, database, "Cable", 4, now)
	if err != nil {
		t.Fatalf("WithdrawStock: %v", err)
	}
	if it.Quantity != 6 {
		t.Errorf("expected 6 left, got %d", it.Quantity)
	}

	_, err = WithdrawStock(ctx, database, "Cable", 7, now)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, _ := GetInventoryItemByName(ctx, database, "Cable")
	if got.Quantity != 6 {
		t.Errorf("expected failed withdrawal to leave 6, got %d", got.Quantity)
	}

	_, err = WithdrawStock(ctx, database, "Nothing", 1, now)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock for unknown item, got %v", err)
	}
}

func TestWithdrawStockToZero(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ReceiveStock(ctx, database, "Tape", 2, decimal.Zero, time.Now())
	it, err := WithdrawStock(ctx, database, "Tape", 2, time.Now())
	if err != nil {
		t.Fatalf("WithdrawStock: %v", err)
	}
	if it.Quantity != 0 {
		t.Errorf("expected 0, got %d", it.Quantity)
	}

	// The line stays so that it can be restocked.
	items, _ := ListInventory(ctx, database, "tape")
	if len(items) != 1 {
		t.Errorf("expected line to remain, got %d", len(items))
	}
}

func TestListLowStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	InsertInventoryItem(ctx, database, &model.InventoryItem{Name: "A", Quantity: 2, MinStock: 5, UpdatedAt: now})
	InsertInventoryItem(ctx, database, &model.InventoryItem{Name: "B", Quantity: 5, MinStock: 5, UpdatedAt: now})
	InsertInventoryItem(ctx, database, &model.InventoryItem{Name: "C", Quantity: 9, MinStock: 5, UpdatedAt: now})

	low, err := ListLowStock(ctx, database)
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low items, got %d", len(low))
	}
	for _, it := range low {
		if !it.Low() {
			t.Errorf("item %s is not low", it.Name)
		}
	}
}

func TestUpdateInventoryItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	it := &model.InventoryItem{Name: "Bolt", Quantity: 100, Unit: "pc", UpdatedAt: time.Now()}
	InsertInventoryItem(ctx, database, it)

	it.Quantity = 80
	it.MinStock = 20
	it.UnitPrice = decimal.RequireFromString("1.25")
	if err := UpdateInventoryItem(ctx, database, it); err != nil {
		t.Fatalf("UpdateInventoryItem: %v", err)
	}

	got, _ := GetInventoryItem(ctx, database, it.ID)
	if got.Quantity != 80 || got.MinStock != 20 || got.UnitPrice.String() != "1.25" {
		t.Errorf("unexpected item after update: %+v", got)
	}

	it.Quantity = -1
	if err := UpdateInventoryItem(ctx, database, it); err == nil {
		t.Error("expected error for negative quantity")
	}
}
