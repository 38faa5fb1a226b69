// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// TokenLength is the number of characters in a voter token
const TokenLength = 24

// fingerprintSep joins the fingerprint inputs. It cannot appear in a token.
const fingerprintSep = "|"

var (
	ErrInvalidToken = errors.New("invalid token format")
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateVoterToken creates a random token identifying one browser.
// 24 random bytes are drawn so that the URL-safe encoding, once cut to
// TokenLength, still carries 144 bits of entropy.
func GenerateVoterToken() (string, error) {
	b := make([]byte, TokenLength)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate voter token: %w", err)
	}
	// URL-safe base64 without padding
	token := strings.TrimRight(base64.URLEncoding.EncodeToString(b), "=")
	return token[:TokenLength], nil
}

// ValidateVoterToken checks that a token presented by a client has the
// shape of one we issued. Anything else is treated as absent.
func ValidateVoterToken(token string) error {
	if token == "" || !tokenPattern.MatchString(token) {
		return ErrInvalidToken
	}
	return nil
}

// Fingerprint creates a one-way digest of the client address, the agent
// string and the voter token. An empty address is accepted, which
// degrades the fingerprint to agent+token.
func Fingerprint(ip, userAgent, token string) string {
	sum := sha256.Sum256([]byte(ip + fingerprintSep + userAgent + fingerprintSep + token))
	return hex.EncodeToString(sum[:])
}
