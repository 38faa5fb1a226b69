// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package moderation

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Filter reports whether free text contains a disallowed term
type Filter interface {
	IsDisallowed(text string) bool
}

// TermList is a Filter over a fixed set of substrings. Matching is
// case-sensitive; lists that want case folding should carry every form.
type TermList []string

func (l TermList) IsDisallowed(text string) bool {
	for _, term := range l {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// DefaultProfanity is the built-in abuse list
var DefaultProfanity = TermList{"傻", "蠢", "垃圾", "廢物", "滾", "去死", "媽的", "他媽", "操", "屌", "婊", "畜生"}

// DefaultRestricted holds political titles that may not be used as names
// or in comments
var DefaultRestricted = TermList{"總統", "主席", "總書記", "國家主席", "首相", "總理"}

// Moderator groups the two term categories. Callers need to tell them
// apart to report NAME_PROFANITY versus NAME_DISALLOWED.
type Moderator struct {
	Profanity  Filter
	Restricted Filter
}

func NewModerator(profanity, restricted Filter) *Moderator {
	return &Moderator{Profanity: profanity, Restricted: restricted}
}

// Default returns a Moderator over the built-in lists
func Default() *Moderator {
	return NewModerator(DefaultProfanity, DefaultRestricted)
}

// IsProfane reports a profanity hit
func (m *Moderator) IsProfane(text string) bool {
	return m.Profanity != nil && m.Profanity.IsDisallowed(text)
}

// IsRestricted reports a restricted-term hit
func (m *Moderator) IsRestricted(text string) bool {
	return m.Restricted != nil && m.Restricted.IsDisallowed(text)
}

// IsDisallowed reports a hit in either category
func (m *Moderator) IsDisallowed(text string) bool {
	return m.IsProfane(text) || m.IsRestricted(text)
}

// Load reads term lists from a config file (yaml, json or toml, chosen by
// extension). Keys are "profanity" and "restricted"; a missing key keeps
// the built-in list. An empty path returns Default().
func Load(path string) (*Moderator, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("profanity", []string(DefaultProfanity))
	v.SetDefault("restricted", []string(DefaultRestricted))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read term file: %w", err)
	}

	return NewModerator(
		TermList(v.GetStringSlice("profanity")),
		TermList(v.GetStringSlice("restricted")),
	), nil
}
