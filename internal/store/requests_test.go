package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/db"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

func sampleRequest(id string, typ model.RequestType, items ...model.LineItem) *model.Request {
	now := time.Now()
	return &model.Request{
		ID:        id,
		Type:      typ,
		Status:    model.StatusPendingHead,
		Items:     items,
		Job:       "J-100",
		Requester: "somchai",
		CreatedAt: now,
		UpdatedAt: now,
		History: []model.HistoryEntry{
			{At: now, Action: "Created", Actor: "somchai (user)"},
		},
	}
}

func TestInsertAndGetRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req := sampleRequest("REQ-000001", model.TypeLocal,
		model.LineItem{Name: "Helmet", Quantity: 5, UnitPrice: decimal.RequireFromString("120.50"), Images: []string{"helmet.jpg"}},
		model.LineItem{Name: "Boots", Quantity: 2, UnitPrice: decimal.NewFromInt(900)},
	)
	if err := InsertRequest(ctx, database, req); err != nil {
		t.Fatalf("InsertRequest: %v", err)
	}

	got, err := GetRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "Helmet" || got.Items[1].Name != "Boots" {
		t.Fatalf("expected items in insertion order, got %+v", got.Items)
	}
	if len(got.Items[0].Images) != 1 || got.Items[0].Images[0] != "helmet.jpg" {
		t.Errorf("expected image filename to round-trip, got %v", got.Items[0].Images)
	}
	if len(got.History) != 1 || got.History[0].Action != "Created" {
		t.Errorf("expected creation history, got %+v", got.History)
	}
	if !got.Total().Equal(decimal.RequireFromString("2402.5")) {
		t.Errorf("expected total 2402.5, got %s", got.Total())
	}

	missing, err := GetRequest(ctx, database, "REQ-404")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing request, got %v, %v", missing, err)
	}
}

func TestUpdateRequestKeepsDocNumber(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req := sampleRequest("REQ-000001", model.TypeLocal, model.LineItem{Name: "Helmet", Quantity: 1})
	InsertRequest(ctx, database, req)

	req.Status = model.StatusOrdered
	req.DocNumber = "LPO-2610-001"
	if err := UpdateRequest(ctx, database, req); err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}

	req.DocNumber = "LPO-2610-999"
	req.Status = model.StatusCompleted
	if err := UpdateRequest(ctx, database, req); err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if got.DocNumber != "LPO-2610-001" {
		t.Errorf("expected doc number to stay LPO-2610-001, got %s", got.DocNumber)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("expected status Completed, got %s", got.Status)
	}
}

func TestDocNumberUniqueAcrossRequests(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := sampleRequest("REQ-000001", model.TypeLocal, model.LineItem{Name: "A", Quantity: 1})
	b := sampleRequest("REQ-000002", model.TypeLocal, model.LineItem{Name: "B", Quantity: 1})
	InsertRequest(ctx, database, a)
	InsertRequest(ctx, database, b)

	a.DocNumber = "LPO-2610-001"
	b.DocNumber = "LPO-2610-001"
	if err := UpdateRequest(ctx, database, a); err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}
	if err := UpdateRequest(ctx, database, b); err == nil {
		t.Error("expected unique index to reject duplicate doc number")
	}
}

func TestListRequestsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertRequest(ctx, database, sampleRequest("REQ-000001", model.TypeLocal, model.LineItem{Name: "Helmet", Quantity: 1}))
	InsertRequest(ctx, database, sampleRequest("REQ-000002", model.TypeWithdraw, model.LineItem{Name: "Glove", Quantity: 2}))
	borrow := sampleRequest("REQ-000003", model.TypeBorrow, model.LineItem{Name: "Drill", Quantity: 1})
	borrow.Status = model.StatusApproved
	InsertRequest(ctx, database, borrow)

	all, err := ListRequests(ctx, database, model.RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(all))
	}
	for _, r := range all {
		if len(r.Items) != 1 {
			t.Errorf("expected items loaded for %s", r.ID)
		}
	}

	byType, _ := ListRequests(ctx, database, model.RequestFilter{Type: model.TypeWithdraw})
	if len(byType) != 1 || byType[0].ID != "REQ-000002" {
		t.Errorf("expected only the withdrawal, got %v", byType)
	}

	byStatus, _ := ListRequests(ctx, database, model.RequestFilter{Status: model.StatusApproved})
	if len(byStatus) != 1 || byStatus[0].ID != "REQ-000003" {
		t.Errorf("expected only the approved borrow, got %v", byStatus)
	}

	byItem, _ := ListRequests(ctx, database, model.RequestFilter{Search: "helm"})
	if len(byItem) != 1 || byItem[0].ID != "REQ-000001" {
		t.Errorf("expected search by item name, got %v", byItem)
	}

	byID, _ := ListRequests(ctx, database, model.RequestFilter{Search: "000002"})
	if len(byID) != 1 {
		t.Errorf("expected search by id, got %v", byID)
	}

	counts, _ := CountRequestsByStatus(ctx, database)
	if counts[model.StatusPendingHead] != 2 || counts[model.StatusApproved] != 1 {
		t.Errorf("unexpected status counts %v", counts)
	}
}

func TestReplaceItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req := sampleRequest("REQ-000001", model.TypeLocal, model.LineItem{Name: "Old", Quantity: 1})
	InsertRequest(ctx, database, req)

	err := ReplaceItems(ctx, database, req.ID, []model.LineItem{
		{Name: "New A", Quantity: 3},
		{Name: "New B", Quantity: 4},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if len(got.Items) != 2 || got.Items[0].Name != "New A" {
		t.Errorf("unexpected items %+v", got.Items)
	}
}
