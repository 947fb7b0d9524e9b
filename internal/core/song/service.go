// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/taibuivan/spevnik/internal/platform/apperr"
	"github.com/taibuivan/spevnik/internal/platform/dberr"
	"github.com/taibuivan/spevnik/internal/platform/sec"
	"github.com/taibuivan/spevnik/internal/platform/validate"
	"github.com/taibuivan/spevnik/pkg/songid"
)

// # Service Layer

// codeAllocationRetries bounds how often a create/update is retried after a
// code uniqueness conflict before the conflict is surfaced to the caller.
const codeAllocationRetries = 3

// Service orchestrates the business logic for the song catalogue.
//
// Every create and update recomputes the search text synchronously before the
// repository transaction runs, so a committed record is never observable with
// search text stale relative to its own title or lyrics.
type Service struct {
	repo               Repository
	cache              *FacetCache
	logger             *slog.Logger
	deletePasswordHash string
}

// NewService constructs a new [Service].
//
// cache may be nil; facet and statistics caching is then disabled.
// deletePasswordHash is the bcrypt hash guarding song deletion.
func NewService(repo Repository, cache *FacetCache, deletePasswordHash string, logger *slog.Logger) *Service {
	return &Service{
		repo:               repo,
		cache:              cache,
		logger:             logger,
		deletePasswordHash: deletePasswordHash,
	}
}

// # Song Lookups

/*
GetSong fetches a single song by internal ID or by song code.

Description: A purely numeric identifier is treated as the internal primary
key; anything else resolves as a song code ("A-001").

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Song: The hydrated domain entity
  - error: NotFound if no match is found
*/
func (service *Service) GetSong(context context.Context, identifier string) (*Song, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return service.repo.FindByID(context, id)
	}

	return service.repo.FindByCode(context, identifier)
}

/*
ListSongs retrieves a catalogue page ordered by song code.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Song: The page of records
  - int: Total catalogue size
  - error: Repository failures
*/
func (service *Service) ListSongs(context context.Context, limit, offset int) ([]*Song, int, error) {
	return service.repo.Search(context, Filter{}, limit, offset)
}

// # Song Management

/*
CreateSong validates and persists a new song.

Description: The search text is computed before the insert and becomes durable
atomically with it. The song code is allocated inside the repository
transaction; when a concurrent allocator wins the same code, the create is
retried against a re-read allocation set.

Parameters:
  - context: context.Context
  - song: *Song (ID, SongID, SearchText are assigned here)

Returns:
  - error: Validation, allocation, or persistence errors
*/
func (service *Service) CreateSong(context context.Context, song *Song) error {
	if err := validateSong(song); err != nil {
		return err
	}

	song.SongID = ""
	song.SearchText = BuildSearchText(song)

	var err error
	for attempt := 0; attempt < codeAllocationRetries; attempt++ {
		err = service.repo.Create(context, song)
		if !dberr.IsConflict(err) {
			break
		}

		// Lost the allocation race: re-derive the code from a fresh read.
		service.logger.WarnContext(context, "song_code_conflict_retry",
			slog.String("title", song.Title),
			slog.Int("attempt", attempt+1),
		)
		song.SongID = ""
	}

	if err != nil {
		return err
	}

	service.invalidateCaches(context)
	service.logger.InfoContext(context, "song_created",
		slog.Int64("id", song.ID),
		slog.String("song_id", song.SongID),
	)
	return nil
}

/*
UpdateSong applies changes to an existing song.

Description: The incoming record's textual attributes replace the stored ones;
the search text is recomputed before the transaction. The song code is kept
unless the title's first letter changed, in which case a fresh code is
allocated for the new letter (with the same conflict retry as CreateSong).

Parameters:
  - context: context.Context
  - id: int64
  - incoming: *Song (Textual attributes, flags, and asset paths to apply)

Returns:
  - *Song: The updated record
  - error: NotFound, validation, or persistence errors
*/
func (service *Service) UpdateSong(context context.Context, id int64, incoming *Song) (*Song, error) {
	existing, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := validateSong(incoming); err != nil {
		return nil, err
	}

	incoming.ID = existing.ID
	incoming.SongID = existing.SongID
	incoming.CreatedAt = existing.CreatedAt
	incoming.SearchText = BuildSearchText(incoming)

	reassignCode := letterChanged(existing.Title, incoming.Title)

	for attempt := 0; attempt < codeAllocationRetries; attempt++ {
		err = service.repo.Update(context, incoming, reassignCode)
		if !reassignCode || !dberr.IsConflict(err) {
			break
		}

		service.logger.WarnContext(context, "song_code_conflict_retry",
			slog.Int64("id", id),
			slog.Int("attempt", attempt+1),
		)
	}

	if err != nil {
		return nil, err
	}

	service.invalidateCaches(context)
	return incoming, nil
}

/*
DeleteSong removes a song after verifying the shared delete password.

Parameters:
  - context: context.Context
  - id: int64
  - password: string (Plain-text delete password)

Returns:
  - error: Forbidden on a wrong password, NotFound if the song is missing
*/
func (service *Service) DeleteSong(context context.Context, id int64, password string) error {
	if err := service.CheckDeletePassword(password); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.invalidateCaches(context)
	service.logger.InfoContext(context, "song_deleted", slog.Int64("id", id))
	return nil
}

/*
CheckDeletePassword verifies the shared delete password against the configured
bcrypt hash without touching any record.

Parameters:
  - password: string

Returns:
  - error: Forbidden when the password does not match
*/
func (service *Service) CheckDeletePassword(password string) error {
	if service.deletePasswordHash == "" || !sec.CheckPasswordHash(password, service.deletePasswordHash) {
		return apperr.Forbidden("Wrong delete password")
	}
	return nil
}

/*
Associate makes a song adopt another song's code and title.

Description: Used to group a variant recording under an existing song: the
variant keeps its own version name but shares the target's code and title.
The (song_id, version_name) constraint still applies, so two identically
named versions of one code conflict.

Parameters:
  - context: context.Context
  - id: int64 (The song being re-pointed)
  - targetCode: string (Code of the song to associate with)

Returns:
  - *Song: The updated record
  - error: NotFound for either side, Conflict on a duplicate version
*/
func (service *Service) Associate(context context.Context, id int64, targetCode string) (*Song, error) {
	target, err := service.repo.FindByCode(context, targetCode)
	if err != nil {
		return nil, apperr.NotFound("Associated song")
	}

	current, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	current.SongID = target.SongID
	current.Title = target.Title
	current.SearchText = BuildSearchText(current)

	if err := service.repo.Update(context, current, false); err != nil {
		return nil, err
	}

	service.invalidateCaches(context)
	service.logger.InfoContext(context, "song_associated",
		slog.Int64("id", id),
		slog.String("song_id", current.SongID),
	)
	return current, nil
}

// # Internal Helpers

// validateSong enforces the business rules common to create and update.
func validateSong(song *Song) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, song.Title).MaxLen(FieldTitle, song.Title, 500)
	validator.MaxLen(FieldVersionName, song.VersionName, 100)

	// A non-empty title can still transliterate to nothing; such a title
	// cannot carry a song code.
	if !validator.HasErrors() {
		_, hasLetter := songid.Letter(song.Title)
		validator.Custom(FieldTitle, !hasLetter, "A title is required to assign a song code")
	}

	return validator.Err()
}

// letterChanged reports whether the identifier letter derived from the two
// titles differs. A song whose letter is stable keeps its code.
func letterChanged(oldTitle, newTitle string) bool {
	oldLetter, _ := songid.Letter(oldTitle)
	newLetter, _ := songid.Letter(newTitle)
	return oldLetter != newLetter
}

// invalidateCaches drops derived facet/statistics caches after a mutation.
func (service *Service) invalidateCaches(context context.Context) {
	if service.cache == nil {
		return
	}

	if err := service.cache.Invalidate(context); err != nil {
		// Cache trouble must never fail the mutation; entries expire by TTL.
		service.logger.WarnContext(context, "facet_cache_invalidate_failed", slog.Any("error", err))
	}
}
