// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Hammerboard API.

# Handler Types

Each handler is a struct built from a key/value store and its settings:

  - VotingHandler: one vote per lot per browser fingerprint
  - CommentHandler: the shared comment log
  - StateHandler: read-only view of the board
  - NotesHandler: auction research notes from the companion blog

	voting := handlers.NewVotingHandler(kv, moderation.Default(), cfg)

# Endpoints

	POST /vote     → CastVote
	POST /comment  → PostComment
	GET  /state    → GetState
	GET  /notes    → GetNotes (?limit=N or ?slug=S)

Every answer is {ok:true, ...} or {ok:false, error:CODE}. Validation
failures are 400, a repeat vote is 409 and store failures are 500
STORAGE_ERROR.

# Voting Flow

CastVote validates the request before looking at the voter. It then
resolves the hsid cookie into a fingerprint, checks the lock for that
lot, and loads, updates and saves the state document. The lock is only
written once the document is saved. The configured admin name skips
both lock steps.

# Races

The document is read-modify-written without a compare-and-swap, so
concurrent writes can lose each other's updates. The lock check and
the lock write are also separate steps.
*/
package handlers
