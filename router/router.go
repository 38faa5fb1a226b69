// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/hammerboard/cliparse"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/handlers"
	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/moderation"
	"github.com/danielhkuo/hammerboard/notes"
)

const (
	// Largest accepted request body; comments are at most 800 characters
	maxBodyBytes = 16 << 10

	requestTimeout = 15 * time.Second
)

func NewRouter(kv db.Store, mod *moderation.Moderator, cfg cliparse.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithLogging)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(chimw.Timeout(requestTimeout))

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(kv, mod, cfg)
	commentHandler := handlers.NewCommentHandler(kv, mod)
	stateHandler := handlers.NewStateHandler(kv)
	notesHandler := handlers.NewNotesHandler(notes.NewClient(cfg.NotesBaseURL, nil))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Board
	r.Get("/state", stateHandler.GetState)
	r.Post("/vote", votingHandler.CastVote)
	r.Post("/comment", commentHandler.PostComment)

	// Research notes (display only)
	r.Get("/notes", notesHandler.GetNotes)

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hammerboard API v1"))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusMethodNotAllowed, models.CodeMethodNotAllowed)
	})

	return r
}
