// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and persisted types for the API.

# Request Types

  - VoteRequest: lot, type, price (PRICE only), name
  - CommentRequest: lot, name, text

# Persisted Types

The whole board lives in one StateDocument stored under a single key:

  - StateDocument: updatedAt, lots, comments
  - LotAggregate: unsold count, price samples, settle-probability series
  - SeriesPoint: ts, v
  - Comment: id, ts, lot, name, text

NewStateDocument returns the canonical empty document. Normalize repairs
documents written by older versions (missing lots or nil slices).

# Capacity

	MaxPrices   = 400 // per lot, oldest dropped first
	MaxSeries   = 500 // per lot, oldest dropped first
	MaxComments = 200 // oldest dropped first

# Response Types

  - StateResponse: {ok:true, state}
  - ErrorResponse: {ok:false, error, detail?}
  - NotesResponse / NoteResponse: auction note decoration

# Error Codes

The Code* constants are the exact strings clients switch on, for example
CodeAlreadyVoted = "ALREADY_VOTED".
*/
package models
