package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/db"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

func TestNewRegistersScheduledJobs(t *testing.T) {
	database := db.NewTestDB(t)

	tests := []struct {
		name     string
		lowStock string
		purge    string
		want     int
	}{
		{"both", "0 7 * * *", "@hourly", 2},
		{"low stock only", "0 7 * * *", "", 1},
		{"none", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(database, tt.lowStock, tt.purge)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if s.Jobs() != tt.want {
				t.Errorf("expected %d jobs, got %d", tt.want, s.Jobs())
			}
		})
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := New(database, "whenever", ""); err == nil {
		t.Error("expected error for bad low stock schedule")
	}
	if _, err := New(database, "", "* * *"); err == nil {
		t.Error("expected error for bad purge schedule")
	}
}

func TestReportLowStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for _, it := range []*model.InventoryItem{
		{Name: "Glove", Quantity: 2, MinStock: 5, UpdatedAt: now},
		{Name: "Mask", Quantity: 5, MinStock: 5, UpdatedAt: now},
		{Name: "Helmet", Quantity: 9, MinStock: 5, UpdatedAt: now},
	} {
		if err := store.InsertInventoryItem(ctx, database, it); err != nil {
			t.Fatalf("InsertInventoryItem: %v", err)
		}
	}

	s, err := New(database, "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	items, err := s.ReportLowStock(ctx)
	if err != nil {
		t.Fatalf("ReportLowStock: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 low items, got %d", len(items))
	}
	for _, it := range items {
		if it.Name == "Helmet" {
			t.Error("Helmet is above its minimum and should not be reported")
		}
	}
}

func TestPurgeTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if err := store.RevokeToken(ctx, database, "expired", now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.RevokeToken(ctx, database, "live", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	s, err := New(database, "", "", WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := s.PurgeTokens(ctx)
	if err != nil {
		t.Fatalf("PurgeTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged token, got %d", n)
	}

	revoked, _ := store.IsTokenRevoked(ctx, database, "expired")
	if revoked {
		t.Error("expired revocation should be gone")
	}
	revoked, _ = store.IsTokenRevoked(ctx, database, "live")
	if !revoked {
		t.Error("live revocation should remain")
	}
}

func TestStartStop(t *testing.T) {
	database := db.NewTestDB(t)

	s, err := New(database, "@every 1h", "@every 1h")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	if ctx.Err() != nil {
		t.Error("Stop should return before the timeout when no job is running")
	}
}
