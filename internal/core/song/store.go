// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import "context"

// # Song Data Access

// Repository defines the data access contract for the song domain.
type Repository interface {

	/*
		Search returns a filtered, paginated slice of songs and the total count.

		Description: The filter's query must already be normalized by the
		caller; the repository matches it as a substring of the stored search
		text. Results are ordered by song code, then by primary key, so
		pagination windows are stable and contiguous.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Normalized query, flags, category intersection)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Song: Slice of matching song records
		  - int: Total count of records matching the filter before pagination
		  - error: Database retrieval failures
	*/
	Search(context context.Context, filter Filter, limit, offset int) ([]*Song, int, error)

	/*
		Count returns the number of songs matching the filter.

		Description: Shares the exact predicate semantics of Search. Used by
		faceted category counting, which issues one count per catalogue entry.

		Parameters:
		  - context: context.Context
		  - filter: Filter

		Returns:
		  - int: Matching record count
		  - error: Database retrieval failures
	*/
	Count(context context.Context, filter Filter) (int, error)

	/*
		FindByID returns the song with the given internal primary key.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Song: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id int64) (*Song, error)

	/*
		FindByCode returns the first song carrying the given code, ordered by
		version name.

		Parameters:
		  - context: context.Context
		  - code: string (e.g. "A-001")

		Returns:
		  - *Song: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindByCode(context context.Context, code string) (*Song, error)

	/*
		ListByCodes returns every song whose code appears in codes.

		Description: Result order is storage order; the caller re-orders to
		match the requested sequence.

		Parameters:
		  - context: context.Context
		  - codes: []string

		Returns:
		  - []*Song: Matching songs (possibly fewer than requested)
		  - error: Database retrieval failures
	*/
	ListByCodes(context context.Context, codes []string) ([]*Song, error)

	/*
		Create persists a new song.

		Description: Runs in a single transaction. When the song carries no
		code, the repository derives the letter from the title, serializes
		against concurrent allocators for that letter, claims the smallest
		unused sequence number, and stamps the code before insert. The caller
		must have computed SearchText already; the insert is atomic with the
		allocation. A duplicate (code, version name) surfaces as a Conflict.

		Parameters:
		  - context: context.Context
		  - song: *Song (ID, SongID, CreatedAt, UpdatedAt are set on success)

		Returns:
		  - error: Validation, allocation, or constraint failures
	*/
	Create(context context.Context, song *Song) error

	/*
		Update persists changes to an existing song.

		Description: Runs in a single transaction so the search text is never
		stale relative to a committed textual change. With reassignCode set,
		the repository re-derives the letter from the current title and
		allocates a fresh sequence number under the same serialization as
		Create; otherwise the code on the struct is written as-is.

		Parameters:
		  - context: context.Context
		  - song: *Song
		  - reassignCode: bool (True when the title's first letter changed)

		Returns:
		  - error: ErrNotFound, allocation, or constraint failures
	*/
	Update(context context.Context, song *Song, reassignCode bool) error

	/*
		Delete removes a song and its derived fields.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, id int64) error

	/*
		ListAssociations returns code+title pairs for the association picker.

		Description: Codes matching the prefix sort first, then everything
		else; both partitions are ordered by code, then title. The excluded
		code is omitted entirely.

		Parameters:
		  - context: context.Context
		  - prefix: string (Code prefix, e.g. "A")
		  - excludeCode: string (Code to omit, may be empty)

		Returns:
		  - []Association: Ordered picker rows
		  - error: Database retrieval failures
	*/
	ListAssociations(context context.Context, prefix, excludeCode string) ([]Association, error)

	/*
		Stats returns whole-catalogue statistics.

		Parameters:
		  - context: context.Context

		Returns:
		  - *Stats: Totals and per-category counts over the full catalogue
		  - error: Database retrieval failures
	*/
	Stats(context context.Context) (*Stats, error)
}
