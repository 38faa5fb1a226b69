// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/store"
)

type StateHandler struct {
	docs *store.Documents
}

func NewStateHandler(kv db.Store) *StateHandler {
	return &StateHandler{docs: store.NewDocuments(kv)}
}

// GetState handles GET /state. It never writes.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Load(r.Context())
	if err != nil {
		slog.Error("failed to load state", "error", err)
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{OK: true, State: doc})
}
