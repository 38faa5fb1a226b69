// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/hammerboard/aggregate"
	"github.com/danielhkuo/hammerboard/middleware"
	"github.com/danielhkuo/hammerboard/models"
)

// writeError maps err onto the wire. Rejections carry their own code;
// anything else came from the store.
func writeError(w http.ResponseWriter, err error) {
	var rej *aggregate.Error
	switch {
	case errors.Is(err, aggregate.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, models.CodeAlreadyVoted)
	case errors.As(err, &rej):
		middleware.ErrorResponse(w, http.StatusBadRequest, rej.Code)
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeStorageError)
	}
}
