// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/hammerboard/models"
	"github.com/danielhkuo/hammerboard/moderation"
)

const (
	MaxNameLength    = 30
	MinCommentLength = 3
	MaxCommentLength = 800
	// MaxPrice is the design ceiling in currency units
	MaxPrice = 5_000_000
)

// Vote is a validated vote ready to be applied
type Vote struct {
	Lot   string
	Type  string
	Price float64
	Name  string
}

// ValidateVote checks a vote request in wire order: lot, type, name, price.
// The returned Vote carries the trimmed name.
func ValidateVote(req models.VoteRequest, m *moderation.Moderator) (Vote, error) {
	if !models.IsVoteLot(req.Lot) {
		return Vote{}, ErrBadLot
	}
	if req.Type != models.VoteUnsold && req.Type != models.VotePrice {
		return Vote{}, ErrBadType
	}

	name := strings.TrimSpace(string(req.Name))
	if err := ValidateVoterName(name, m); err != nil {
		return Vote{}, err
	}

	v := Vote{Lot: req.Lot, Type: req.Type, Name: name}
	if req.Type == models.VotePrice {
		p, err := ParsePrice(req.Price)
		if err != nil {
			return Vote{}, err
		}
		if err := ValidatePrice(p); err != nil {
			return Vote{}, err
		}
		v.Price = p
	}
	return v, nil
}

// ValidateComment checks a comment request and returns the comment with
// trimmed fields. ID and TS are left for the caller.
func ValidateComment(req models.CommentRequest, m *moderation.Moderator) (models.Comment, error) {
	if !models.IsCommentLot(req.Lot) {
		return models.Comment{}, ErrBadLot
	}

	name := strings.TrimSpace(string(req.Name))
	if err := ValidateCommenterName(name, m); err != nil {
		return models.Comment{}, err
	}

	text := strings.TrimSpace(string(req.Text))
	if err := ValidateCommentText(text, m); err != nil {
		return models.Comment{}, err
	}

	return models.Comment{Lot: req.Lot, Name: name, Text: text}, nil
}

// ValidateVoterName reports profanity and restricted titles separately
func ValidateVoterName(name string, m *moderation.Moderator) error {
	if err := validateNameLength(name); err != nil {
		return err
	}
	if m.IsProfane(name) {
		return ErrNameProfanity
	}
	if m.IsRestricted(name) {
		return ErrNameDisallowed
	}
	return nil
}

// ValidateCommenterName folds every moderation hit into NAME_DISALLOWED
func ValidateCommenterName(name string, m *moderation.Moderator) error {
	if err := validateNameLength(name); err != nil {
		return err
	}
	if m.IsDisallowed(name) {
		return ErrNameDisallowed
	}
	return nil
}

func validateNameLength(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateCommentText checks length in characters and moderation
func ValidateCommentText(text string, m *moderation.Moderator) error {
	n := utf8.RuneCountInString(text)
	if n < MinCommentLength {
		return ErrCommentTooShort
	}
	if n > MaxCommentLength {
		return ErrCommentTooLong
	}
	if m.IsDisallowed(text) {
		return ErrCommentDisallowed
	}
	return nil
}

// ParsePrice reads a JSON number or a JSON string holding a number
func ParsePrice(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, ErrBadPrice
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, ErrBadPrice
		}
		s = strings.TrimSpace(str)
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrBadPrice
	}
	return p, nil
}

// ValidatePrice accepts finite prices in (0, MaxPrice]
func ValidatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return ErrBadPrice
	}
	if p > MaxPrice {
		return ErrPriceTooHigh
	}
	return nil
}
