package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Lot identifiers
const (
	Lot1 = "lot1"
	Lot2 = "lot2"
	// LotAll is only valid as a comment target
	LotAll = "all"
)

// Vote types
const (
	VoteUnsold = "UNSOLD"
	VotePrice  = "PRICE"
)

// Capacity limits for the shared document
const (
	MaxPrices   = 400
	MaxSeries   = 500
	MaxComments = 200
)

// Error codes returned in {ok:false, error:<code>}
const (
	CodeBadJSON           = "BAD_JSON"
	CodeBadLot            = "BAD_LOT"
	CodeBadType           = "BAD_TYPE"
	CodeNameRequired      = "NAME_REQUIRED"
	CodeNameTooLong       = "NAME_TOO_LONG"
	CodeNameProfanity     = "NAME_PROFANITY"
	CodeNameDisallowed    = "NAME_DISALLOWED"
	CodeBadPrice          = "BAD_PRICE"
	CodePriceTooHigh      = "PRICE_TOO_HIGH"
	CodeAlreadyVoted      = "ALREADY_VOTED"
	CodeCommentTooShort   = "COMMENT_TOO_SHORT"
	CodeCommentTooLong    = "COMMENT_TOO_LONG"
	CodeCommentDisallowed = "COMMENT_DISALLOWED"
	CodeStorageError      = "STORAGE_ERROR"
	CodeUnexpectedError   = "UNEXPECTED_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
)

// Request types

// VoteRequest is the body of POST /vote. Price is kept raw: clients send
// it as a number or a numeric string, and a malformed price must be
// reported as BAD_PRICE rather than BAD_JSON.
type VoteRequest struct {
	Lot   string          `json:"lot"`
	Type  string          `json:"type"`
	Price json.RawMessage `json:"price,omitempty"`
	Name  FormText        `json:"name"`
}

type CommentRequest struct {
	Lot  string   `json:"lot"`
	Name FormText `json:"name"`
	Text FormText `json:"text"`
}

// FormText is a free-text field that loose clients may send as a scalar
// of any type. Numbers and true keep their text, while null, false and 0
// read as empty. Objects and arrays are rejected.
type FormText string

func (t *FormText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty text value")
	}

	switch s := string(b); {
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = FormText(v)
	case s == "null" || s == "false":
		*t = ""
	case s == "true":
		*t = "true"
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("bad number %s: %w", s, err)
		}
		if f == 0 {
			*t = ""
			return nil
		}
		*t = FormText(strconv.FormatFloat(f, 'f', -1, 64))
	default:
		return fmt.Errorf("cannot use %s as text", s)
	}
	return nil
}

// Persisted types

// StateDocument is the single shared aggregate, stored under one key.
// Timestamps are unix milliseconds.
type StateDocument struct {
	UpdatedAt int64                    `json:"updatedAt"`
	Lots      map[string]*LotAggregate `json:"lots"`
	Comments  []Comment                `json:"comments"`
}

type LotAggregate struct {
	Unsold int           `json:"unsold"`
	Prices []float64     `json:"prices"`
	Series []SeriesPoint `json:"series"`
}

// SeriesPoint is a snapshot of the settle probability (0-100)
type SeriesPoint struct {
	TS int64   `json:"ts"`
	V  float64 `json:"v"`
}

type Comment struct {
	ID   string `json:"id"`
	TS   int64  `json:"ts"`
	Lot  string `json:"lot"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// NewStateDocument returns the canonical empty document: both lots
// zeroed and an empty comment log.
func NewStateDocument() *StateDocument {
	return &StateDocument{
		Lots: map[string]*LotAggregate{
			Lot1: newLotAggregate(),
			Lot2: newLotAggregate(),
		},
		Comments: []Comment{},
	}
}

func newLotAggregate() *LotAggregate {
	return &LotAggregate{
		Prices: []float64{},
		Series: []SeriesPoint{},
	}
}

// Normalize fills in anything a stored document may be missing so callers
// never have to nil-check lots or slices.
func (d *StateDocument) Normalize() {
	if d.Lots == nil {
		d.Lots = map[string]*LotAggregate{}
	}
	for _, lot := range []string{Lot1, Lot2} {
		la, ok := d.Lots[lot]
		if !ok || la == nil {
			d.Lots[lot] = newLotAggregate()
			continue
		}
		if la.Prices == nil {
			la.Prices = []float64{}
		}
		if la.Series == nil {
			la.Series = []SeriesPoint{}
		}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
}

// IsVoteLot reports whether lot accepts votes
func IsVoteLot(lot string) bool {
	return lot == Lot1 || lot == Lot2
}

// IsCommentLot reports whether lot accepts comments
func IsCommentLot(lot string) bool {
	return IsVoteLot(lot) || lot == LotAll
}

// Response types

type StateResponse struct {
	OK    bool           `json:"ok"`
	State *StateDocument `json:"state"`
}

type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Notes (display decoration only)

type NoteItem struct {
	Slug      string `json:"slug"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	NormTitle string `json:"normTitle"`
	Image     string `json:"image"`
	Excerpt   string `json:"excerpt,omitempty"`
	House     string `json:"house"`
	Year      string `json:"year"`
	Status    string `json:"status"`
	Price     string `json:"price"`
}

type NotesResponse struct {
	OK    bool       `json:"ok"`
	Items []NoteItem `json:"items"`
}

type NoteResponse struct {
	OK   bool     `json:"ok"`
	Note NoteItem `json:"note"`
}
