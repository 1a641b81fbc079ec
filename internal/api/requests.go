package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

// RequestsHandler handles request endpoints. Every mutation goes through the
// engine, which enforces the role table itself.
type RequestsHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

// requestView adds the computed total to a request.
type requestView struct {
	*model.Request
	Total decimal.Decimal `json:"total"`
}

func viewRequest(r *model.Request) requestView {
	return requestView{Request: r, Total: r.Total()}
}

type targetsResponse struct {
	Status  model.Status   `json:"status"`
	Targets []model.Status `json:"targets"`
}

// List handles GET /api/requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RequestFilter{
		Type:   model.RequestType(q.Get("type")),
		Status: model.Status(q.Get("status")),
		Search: q.Get("q"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid request type")
		return
	}

	requests, err := store.ListRequests(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}

	views := make([]requestView, 0, len(requests))
	for i := range requests {
		views = append(views, viewRequest(&requests[i]))
	}
	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in workflow.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Engine.Create(r.Context(), GetClaims(r.Context()).Actor(), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, viewRequest(req))
}

// Get handles GET /api/requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.Engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, viewRequest(req))
}

// UpdateDraft handles PUT /api/requests/{id}.
func (h *RequestsHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var in workflow.DraftInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Engine.UpdateDraft(r.Context(), GetClaims(r.Context()).Actor(), r.PathValue("id"), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, viewRequest(req))
}

// Transition handles POST /api/requests/{id}/transitions.
func (h *RequestsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var in workflow.TransitionInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.RequestID = r.PathValue("id")
	in.Actor = GetClaims(r.Context()).Actor()

	req, err := h.Engine.Transition(r.Context(), in)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, viewRequest(req))
}

// Targets handles GET /api/requests/{id}/transitions and lists the statuses
// the caller may move the request to.
func (h *RequestsHandler) Targets(w http.ResponseWriter, r *http.Request) {
	req, err := h.Engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		engineError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	targets := h.Engine.Graph().Targets(req.Type, req.Status, claims.Role)
	if req.Status == model.StatusDraft && !workflow.OwnsDraft(claims.Actor(), req.Requester) {
		targets = nil
	}
	if targets == nil {
		targets = []model.Status{}
	}
	jsonResponse(w, http.StatusOK, targetsResponse{Status: req.Status, Targets: targets})
}
