// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package moderation filters names and comments against term lists.

The aggregation code only sees the Filter predicate; the lists themselves
are configuration and can be swapped or localized without touching it.

	m, err := moderation.Load(cfg.TermsFile)
	if m.IsProfane(name) { ... }

# Term File

	profanity:
	  - 垃圾
	restricted:
	  - 總統

Matching is plain substring containment.
*/
package moderation
