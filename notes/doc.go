// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notes reads auction research posts from the companion blog and
// turns their titles into short normalized labels for display next to the
// board. It never touches the state document.
//
// Listing walks the site's sitemap index, keeps /post/auctionNNN entries
// and fetches the newest ones in parallel:
//
//	c := notes.NewClient(cfg.NotesBaseURL, nil)
//	items, err := c.Latest(ctx, 6)
//
// A single post also carries a plain-text excerpt of its first paragraph:
//
//	note, err := c.Note(ctx, "auction314")
package notes
