// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"errors"

	"github.com/danielhkuo/hammerboard/models"
)

// Error is a validation or policy rejection carrying the wire code
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

var (
	ErrBadLot            = &Error{Code: models.CodeBadLot}
	ErrBadType           = &Error{Code: models.CodeBadType}
	ErrNameRequired      = &Error{Code: models.CodeNameRequired}
	ErrNameTooLong       = &Error{Code: models.CodeNameTooLong}
	ErrNameProfanity     = &Error{Code: models.CodeNameProfanity}
	ErrNameDisallowed    = &Error{Code: models.CodeNameDisallowed}
	ErrBadPrice          = &Error{Code: models.CodeBadPrice}
	ErrPriceTooHigh      = &Error{Code: models.CodePriceTooHigh}
	ErrAlreadyVoted      = &Error{Code: models.CodeAlreadyVoted}
	ErrCommentTooShort   = &Error{Code: models.CodeCommentTooShort}
	ErrCommentTooLong    = &Error{Code: models.CodeCommentTooLong}
	ErrCommentDisallowed = &Error{Code: models.CodeCommentDisallowed}
)

// Code returns the wire code for err, or "" if err is not a rejection
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
