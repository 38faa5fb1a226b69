// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/hammerboard/aggregate"
	"github.com/danielhkuo/hammerboard/auth"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/moderation"
	"github.com/danielhkuo/hammerboard/store"
)

// commentIDBytes gives 12 hex characters per comment id
const commentIDBytes = 6

type CommentHandler struct {
	docs *store.Documents
	mod  *moderation.Moderator
	now  func() time.Time
}

func NewCommentHandler(kv db.Store, mod *moderation.Moderator) *CommentHandler {
	return &CommentHandler{
		docs: store.NewDocuments(kv),
		mod:  mod,
		now:  time.Now,
	}
}

// PostComment handles POST /comment. Comments are not rate limited or
// tied to a voter identity.
func (h *CommentHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeBadJSON)
		return
	}

	comment, err := aggregate.ValidateComment(req, h.mod)
	if err != nil {
		slog.Info("comment rejected", "lot", req.Lot, "code", aggregate.Code(err))
		writeError(w, err)
		return
	}

	comment.ID, err = auth.GenerateID(commentIDBytes)
	if err != nil {
		slog.Error("failed to generate comment id", "error", err)
		middleware.ErrorDetailResponse(w, http.StatusInternalServerError, models.CodeUnexpectedError, err.Error())
		return
	}
	comment.TS = h.now().UnixMilli()

	doc, err := h.docs.Load(ctx)
	if err != nil {
		slog.Error("failed to load state", "error", err)
		writeError(w, err)
		return
	}

	aggregate.ApplyComment(doc, comment)

	if err := h.docs.Save(ctx, doc); err != nil {
		slog.Error("failed to save state", "error", err, "comment_id", comment.ID)
		writeError(w, err)
		return
	}

	slog.Info("comment posted", "lot", comment.Lot, "comment_id", comment.ID)

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{OK: true, State: doc})
}
