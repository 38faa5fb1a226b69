// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"time"

	"github.com/danielhkuo/hammerboard/models"
)

// SettleProbability is the percentage of votes so far that did not say
// unsold. It is 0 before any vote.
func SettleProbability(unsold, prices int) float64 {
	total := unsold + prices
	if total == 0 {
		return 0
	}
	return 100 - float64(unsold)/float64(total)*100
}

// ApplyVote folds a validated vote into doc in place and appends a new
// series point computed from the post-update counts. The document is
// request-local, so no other reader sees the intermediate state.
func ApplyVote(doc *models.StateDocument, v Vote, now time.Time) *models.StateDocument {
	doc.Normalize()
	la := doc.Lots[v.Lot]

	switch v.Type {
	case models.VoteUnsold:
		la.Unsold++
	case models.VotePrice:
		la.Prices = keepLast(append(la.Prices, v.Price), models.MaxPrices)
	}

	la.Series = keepLast(append(la.Series, models.SeriesPoint{
		TS: now.UnixMilli(),
		V:  SettleProbability(la.Unsold, len(la.Prices)),
	}), models.MaxSeries)

	return doc
}

// ApplyComment appends c to the comment log, dropping the oldest entries
// beyond MaxComments.
func ApplyComment(doc *models.StateDocument, c models.Comment) *models.StateDocument {
	doc.Normalize()
	doc.Comments = keepLast(append(doc.Comments, c), models.MaxComments)
	return doc
}

// keepLast returns the last n elements of s in a fresh slice when it has
// to cut, so the dropped prefix is not retained.
func keepLast[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	out := make([]T, n)
	copy(out, s[len(s)-n:])
	return out
}
