// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how offset-based navigation is requested via query
// parameters and how the resulting metadata is delivered in the API response
// envelope. Out-of-range values are clamped, never rejected.
package pagination

import (
	"net/http"

	"github.com/taibuivan/spevnik/pkg/convert"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 50
	// MaxLimit is the upper bound for items per page to bound response cost.
	MaxLimit = 100
)

// Params holds the parsed offset and limit from a request's query string.
type Params struct {
	Offset int
	Limit  int
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// NewMeta constructs pagination metadata for a response.
//
// returned is the number of records actually included in this page.
func NewMeta(params Params, total, returned int) Meta {
	return Meta{
		Offset:  params.Offset,
		Limit:   params.Limit,
		Total:   total,
		HasMore: params.Offset+returned < total,
	}
}

// FromRequest parses "offset" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid or negative offsets become 0; invalid, non-positive, or excessive
// limits become [DefaultLimit] or [MaxLimit].
func FromRequest(request *http.Request) Params {
	offset := parseIntParam(request, "offset", 0)
	limit := parseIntParam(request, "limit", DefaultLimit)

	return Clamp(offset, limit)
}

// Clamp bounds raw offset/limit values to the valid range.
func Clamp(offset, limit int) Params {
	if offset < 0 {
		offset = 0
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Offset: offset, Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(request *http.Request, key string, defaultVal int) int {
	return convert.ToIntD(request.URL.Query().Get(key), defaultVal)
}
