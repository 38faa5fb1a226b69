// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie carrying the voter token
const DefaultCookieName = "hsid"

// DefaultCookieMaxAge keeps the voter token for one year
const DefaultCookieMaxAge = 365 * 24 * time.Hour

// Identity is the per-request view of a voter. Fingerprint is recomputed
// on every request and never stored in the clear anywhere but lock keys.
type Identity struct {
	Token       string
	Fingerprint string
	// Cookie is set when a new token was minted and must be sent back
	Cookie *http.Cookie
}

// Issued reports whether this request minted a new token
func (id Identity) Issued() bool {
	return id.Cookie != nil
}

// Resolver turns request metadata into an Identity
type Resolver struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

func NewResolver(cookieName string, secure bool) *Resolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Resolver{
		CookieName: cookieName,
		MaxAge:     DefaultCookieMaxAge,
		Secure:     secure,
	}
}

// Resolve derives the identity from an optional previously issued token,
// the client address and the agent string. A missing or malformed token
// is replaced with a fresh one, which is used immediately.
func (res *Resolver) Resolve(token, ip, userAgent string) (Identity, error) {
	var cookie *http.Cookie
	if ValidateVoterToken(token) != nil {
		fresh, err := GenerateVoterToken()
		if err != nil {
			return Identity{}, err
		}
		token = fresh
		cookie = res.cookie(token)
	}

	return Identity{
		Token:       token,
		Fingerprint: Fingerprint(ip, userAgent, token),
		Cookie:      cookie,
	}, nil
}

// ResolveRequest reads the token cookie and agent from r
func (res *Resolver) ResolveRequest(r *http.Request, ip string) (Identity, error) {
	var token string
	if c, err := r.Cookie(res.CookieName); err == nil {
		token = c.Value
	}
	return res.Resolve(token, ip, r.UserAgent())
}

func (res *Resolver) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     res.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(res.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   res.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Privilege is the configured escape hatch: one exact display name that
// may vote without limit. An empty name disables it.
type Privilege struct {
	name string
}

func NewPrivilege(name string) Privilege {
	return Privilege{name: name}
}

// IsPrivileged reports whether displayName is the privileged name
func (p Privilege) IsPrivileged(displayName string) bool {
	return p.name != "" && displayName == p.name
}
