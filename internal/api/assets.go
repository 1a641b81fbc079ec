package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

// AssetsHandler handles asset endpoints.
type AssetsHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

type returnAssetRequest struct {
	Condition string `json:"condition"`
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := store.ListAssets(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list assets", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in workflow.AssetInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Engine.RegisterAsset(r.Context(), GetClaims(r.Context()).Actor(), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, a)
}

// Update handles PUT /api/assets/{id}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in workflow.AssetUpdate
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Engine.UpdateAsset(r.Context(), GetClaims(r.Context()).Actor(), r.PathValue("id"), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}

// Return handles POST /api/assets/{id}/return.
func (h *AssetsHandler) Return(w http.ResponseWriter, r *http.Request) {
	var in returnAssetRequest
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Engine.ReturnAsset(r.Context(), GetClaims(r.Context()).Actor(), r.PathValue("id"), in.Condition)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}
