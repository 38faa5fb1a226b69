// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate folds votes and comments into the state document.

Everything here is pure: no I/O, no clock reads. Callers pass the time in.

# Validation

	v, err := aggregate.ValidateVote(req, moderator)
	c, err := aggregate.ValidateComment(req, moderator)

Rejections are *Error values carrying the wire code (see Code). Names are
trimmed, at most 30 characters; comments are 3 to 800 characters; prices
must be finite, positive and at most 5,000,000.

# Folding

	aggregate.ApplyVote(doc, v, time.Now())
	aggregate.ApplyComment(doc, c)

Each vote appends one series point whose value is

	100 - unsold/(unsold+len(prices))*100

computed after the vote is counted. Prices keep the last 400 samples,
series the last 500 points, comments the last 200 entries.
*/
package aggregate
