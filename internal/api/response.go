package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/workflow"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// kindStatus maps workflow error kinds to HTTP status codes.
var kindStatus = map[workflow.Kind]int{
	workflow.KindValidation:        http.StatusBadRequest,
	workflow.KindUnauthorized:      http.StatusForbidden,
	workflow.KindNotFound:          http.StatusNotFound,
	workflow.KindInvalidTransition: http.StatusConflict,
	workflow.KindInsufficientStock: http.StatusUnprocessableEntity,
}

// engineError writes the response for an error returned by the workflow
// engine. Store failures are logged and reported without detail.
func engineError(w http.ResponseWriter, err error) {
	kind := workflow.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error("workflow operation failed", "error", err)
		jsonResponse(w, http.StatusInternalServerError, map[string]any{
			"error":     "internal error",
			"kind":      workflow.KindPersistence,
			"retryable": true,
		})
		return
	}
	if kind == workflow.KindUnauthorized {
		slog.Warn("operation denied", "error", err)
	}
	jsonResponse(w, status, map[string]any{"error": err.Error(), "kind": kind})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
