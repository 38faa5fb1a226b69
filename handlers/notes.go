// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/notes"
)

type NotesHandler struct {
	client *notes.Client
}

func NewNotesHandler(client *notes.Client) *NotesHandler {
	return &NotesHandler{client: client}
}

// GetNotes handles GET /notes?limit=N and GET /notes?slug=S
func (h *NotesHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if slug := strings.TrimSpace(q.Get("slug")); slug != "" {
		note, err := h.client.Note(r.Context(), slug)
		if err != nil {
			slog.Error("failed to fetch note", "error", err, "slug", slug)
			middleware.ErrorDetailResponse(w, http.StatusInternalServerError, models.CodeUnexpectedError, err.Error())
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.NoteResponse{OK: true, Note: note})
		return
	}

	items, err := h.client.Latest(r.Context(), notes.ClampLimit(q.Get("limit")))
	if err != nil {
		slog.Error("failed to list notes", "error", err)
		middleware.ErrorDetailResponse(w, http.StatusInternalServerError, models.CodeUnexpectedError, err.Error())
		return
	}
	if items == nil {
		items = []models.NoteItem{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.NotesResponse{OK: true, Items: items})
}
