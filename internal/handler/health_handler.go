package handler

import (
	"encoding/json"
	"net/http"

	"chat-api/internal/database"
	"chat-api/internal/model"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(model.Fail("database unreachable"))
		return
	}
	writeSuccess(w, http.StatusOK, "ok", nil)
}
