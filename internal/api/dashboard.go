package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// DashboardHandler serves summary counts.
type DashboardHandler struct {
	DB *sql.DB
}

type dashboardResponse struct {
	Requests       map[model.Status]int `json:"requests"`
	PendingCount   int                  `json:"pending"`
	InventoryCount int                  `json:"inventory_items"`
	LowStockCount  int                  `json:"low_stock"`
	Assets         map[string]int       `json:"assets"`
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := store.CountRequestsByStatus(ctx, h.DB)
	if err != nil {
		slog.Error("failed to count requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	inventory, err := store.CountInventory(ctx, h.DB)
	if err != nil {
		slog.Error("failed to count inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	low, err := store.ListLowStock(ctx, h.DB)
	if err != nil {
		slog.Error("failed to list low stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	assets, err := store.CountAssetsByStatus(ctx, h.DB)
	if err != nil {
		slog.Error("failed to count assets", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	resp := dashboardResponse{
		Requests:       requests,
		InventoryCount: inventory,
		LowStockCount:  len(low),
		Assets:         assets,
	}
	for status, n := range requests {
		if status.Pending() {
			resp.PendingCount += n
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}
