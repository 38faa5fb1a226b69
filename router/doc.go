// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Hammerboard API.

# Route Registration

NewRouter creates a chi router with all endpoints:

	handler := router.NewRouter(kv, moderator, cfg)

Every route runs behind request logging, panic recovery, CORS, a 16 KiB
body limit and a 15 second timeout.

# Endpoints

Health:

	GET /health

Board:

	GET  /state   - Current document
	POST /vote    - {lot, type, price?, name}
	POST /comment - {lot, name, text}

Notes:

	GET /notes?limit=N - Latest auction posts (1-20, default 6)
	GET /notes?slug=S  - One post with excerpt

Unknown paths answer 404 NOT_FOUND and wrong methods 405
METHOD_NOT_ALLOWED, both as JSON.
*/
package router
