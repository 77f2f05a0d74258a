package api

import (
	"encoding/json"
	"net/http"

	"log/slog"
)

// Stable machine-readable error kinds. Internal failure details never reach
// the response body.
const (
	kindValidation  = "validation"
	kindAuth        = "auth"
	kindForbidden   = "forbidden"
	kindNotFound    = "not_found"
	kindConflict    = "conflict"
	kindStage       = "stage"
	kindPersistence = "persistence"
	kindInternal    = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, kind, message string, status int) {
	writeJSON(w, errorEnvelope{Error: errorBody{Kind: kind, Message: message}}, status)
}
