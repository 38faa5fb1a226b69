// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves anonymous voter identities.

# Voter Tokens

Voter tokens are random 24-character URL-safe strings:

	token, err := auth.GenerateVoterToken()

A token is handed to the browser once, in a cookie that lives for a year,
and is echoed back on every later request. Tokens that do not look like
ones we issued are ignored and replaced.

# Fingerprints

A fingerprint is the hex SHA-256 of "ip|user-agent|token":

	fp := auth.Fingerprint(ip, r.UserAgent(), token)

It recognizes the same browser session without keeping the address in
the clear. It is an anti-spam heuristic, not a security boundary: a
client that clears its cookie gets a new fingerprint. When the address
is unavailable the fingerprint falls back to agent and token only.

# Resolver

Resolver combines both steps and prepares the cookie directive when a
token had to be minted:

	res := auth.NewResolver("hsid", true)
	id, err := res.ResolveRequest(r, middleware.GetClientIP(r, false))
	if id.Issued() {
		http.SetCookie(w, id.Cookie)
	}

# Privilege

A single configured display name bypasses the one-vote-per-lot check:

	p := auth.NewPrivilege(cfg.AdminName)
	if p.IsPrivileged(name) { ... }

# ID Generation

Random hex IDs (comment ids use 6 bytes):

	id, err := auth.GenerateID(6)  // 12 hex characters
*/
package auth
