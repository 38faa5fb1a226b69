// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port (default 3318)
	-t            Store type: memory, sqlite, postgres, mongo (default sqlite)
	-d            Store URL or SQLite file path
	--admin-name  Display name exempt from the one-vote-per-lot limit
	--lock-ttl    Vote lock lifetime, e.g. 72h (default 0, never expires)
	--terms       Moderation term list file
	--env         Dotenv file to load (default .env, ignored if missing)

# Environment Variables

Flags fall back to environment variables:

	PORT        → -p
	STORE_TYPE  → -t
	STORE_URL   → -d
	ADMIN_NAME  → --admin-name
	LOCK_TTL    → --lock-ttl
	TERMS_FILE  → --terms

Environment only:

	HSID_COOKIE     Voter cookie name (default hsid)
	COOKIE_SECURE   Set Secure on the voter cookie (default true)
	NOTES_BASE_URL  Research blog base URL
	LOG_LEVEL       debug, info, warn, error (default info)
	LOG_FORMAT      json or text (default json)

CLI flags take precedence over environment variables, and variables
already in the environment take precedence over the dotenv file.

# Validation

ParseFlags returns an error if:

  - STORE_URL is missing for a store other than memory
  - the store type, port, lock TTL, cookie or log settings do not parse
*/
package cliparse
