// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Hammerboard API server.

Hammerboard is an anonymous prediction board for two auction lots. Visitors
guess whether each lot goes unsold or at what price it hammers, one guess
per lot per browser, and chat in a shared comment log. Everything lives in
a single state document.

# Starting the Server

With a local SQLite file:

	STORE_URL=data/board.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."
	go run . -t memory --admin-name 王秋生

# Configuration

  - STORE_TYPE (-t): memory, sqlite, postgres or mongo (default sqlite)
  - STORE_URL (-d): file path or connection string (not needed for memory)
  - ADMIN_NAME (--admin-name): display name exempt from the vote limit
  - LOCK_TTL (--lock-ttl): how long a vote lock lasts (default forever)
  - TERMS_FILE (--terms): moderation term list override
  - PORT (-p): Server port (default: 3318)

A .env file in the working directory is read if present.

# Architecture

  - handlers: HTTP request handlers (vote, comment, state, notes)
  - router: Route definitions on chi
  - middleware: CORS, logging, recovery, JSON helpers
  - aggregate: validation and the vote/comment folding rules
  - store: the state document and vote locks on top of db
  - db: key/value backends (memory, SQLite, PostgreSQL, MongoDB)
  - auth: voter tokens, fingerprints and the privileged name
  - moderation: disallowed term lists
  - notes: auction research notes from the companion blog
  - models: Request/response and document types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
