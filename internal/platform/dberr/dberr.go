// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/spevnik/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Errors already classified upstream pass through unchanged.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations become client-visible conflicts. A unique
	// violation on the song code constraint is the allocation-race signal the
	// service retries on.
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
		conflict := apperr.Conflict("Resource already exists")
		conflict.Cause = err
		return conflict
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsConflict reports whether err classifies as a uniqueness conflict.
func IsConflict(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.Code == "CONFLICT"
}
