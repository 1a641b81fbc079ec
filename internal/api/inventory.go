package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListInventory(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Low handles GET /api/inventory/low.
func (h *InventoryHandler) Low(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListLowStock(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list low stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list low stock")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in workflow.InventoryInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := h.Engine.CreateInventoryItem(r.Context(), GetClaims(r.Context()).Actor(), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, it)
}

// Update handles PUT /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in workflow.InventoryInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := h.Engine.UpdateInventoryItem(r.Context(), GetClaims(r.Context()).Actor(), r.PathValue("id"), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, it)
}
