// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/hammerboard/aggregate"
	"github.com/danielhkuo/hammerboard/auth"
	"github.com/danielhkuo/hammerboard/cliparse"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/moderation"
	"github.com/danielhkuo/hammerboard/store"
)

type VotingHandler struct {
	docs  *store.Documents
	locks *store.Locks
	ids   *auth.Resolver
	priv  auth.Privilege
	mod   *moderation.Moderator
	now   func() time.Time

	// trustProxy lets forwarding headers feed the fingerprint
	trustProxy bool
}

func NewVotingHandler(kv db.Store, mod *moderation.Moderator, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{
		docs:  store.NewDocuments(kv),
		locks: store.NewLocks(kv, cfg.LockTTL),
		ids:   auth.NewResolver(cfg.CookieName, cfg.CookieSecure),
		priv:  auth.NewPrivilege(cfg.AdminName),
		mod:   mod,
		now:   time.Now,

		trustProxy: cfg.TrustProxyHeaders,
	}
}

// CastVote handles POST /vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeBadJSON)
		return
	}

	vote, err := aggregate.ValidateVote(req, h.mod)
	if err != nil {
		slog.Info("vote rejected", "lot", req.Lot, "code", aggregate.Code(err))
		writeError(w, err)
		return
	}

	id, err := h.ids.ResolveRequest(r, middleware.GetClientIP(r, h.trustProxy))
	if err != nil {
		slog.Error("failed to resolve voter", "error", err)
		middleware.ErrorDetailResponse(w, http.StatusInternalServerError, models.CodeUnexpectedError, err.Error())
		return
	}
	// The cookie goes out with every later answer, rejections included
	if id.Issued() {
		http.SetCookie(w, id.Cookie)
	}

	privileged := h.priv.IsPrivileged(vote.Name)
	if !privileged {
		voted, err := h.locks.HasVoted(ctx, vote.Lot, id.Fingerprint)
		if err != nil {
			slog.Error("failed to check vote lock", "error", err, "lot", vote.Lot)
			writeError(w, err)
			return
		}
		if voted {
			slog.Info("duplicate vote", "lot", vote.Lot)
			writeError(w, aggregate.ErrAlreadyVoted)
			return
		}
	}

	doc, err := h.docs.Load(ctx)
	if err != nil {
		slog.Error("failed to load state", "error", err)
		writeError(w, err)
		return
	}

	aggregate.ApplyVote(doc, vote, h.now())

	if err := h.docs.Save(ctx, doc); err != nil {
		slog.Error("failed to save state", "error", err, "lot", vote.Lot)
		writeError(w, err)
		return
	}

	// The vote is already counted; a lost lock only lets this voter in again
	if !privileged {
		if err := h.locks.MarkVoted(ctx, vote.Lot, id.Fingerprint); err != nil {
			slog.Warn("failed to mark vote lock", "error", err, "lot", vote.Lot)
		}
	}

	slog.Info("vote cast", "lot", vote.Lot, "type", vote.Type, "privileged", privileged)

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{OK: true, State: doc})
}
