// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spevnik/internal/core/category"
	"github.com/taibuivan/spevnik/internal/core/song"
	"github.com/taibuivan/spevnik/internal/platform/apperr"
	"github.com/taibuivan/spevnik/internal/platform/sec"
	"github.com/taibuivan/spevnik/pkg/songid"
)

// # In-Memory Repository

// fakeRepository is an in-memory [song.Repository] mirroring the behavior of
// the PostgreSQL implementation: letter-sequence code allocation, stable
// code ordering, and filter intersection.
type fakeRepository struct {
	songs  []*song.Song
	nextID int64

	// conflictsLeft forces this many uniqueness conflicts before writes
	// succeed, simulating a lost allocation race.
	conflictsLeft int
}

func (repository *fakeRepository) allocateCode(title string) (string, error) {
	letter, ok := songid.Letter(title)
	if !ok {
		return "", apperr.ValidationError("Validation failed")
	}

	codes := make([]string, 0, len(repository.songs))
	for _, record := range repository.songs {
		codes = append(codes, record.SongID)
	}

	return songid.Format(letter, songid.Next(songid.UsedNumbers(letter, codes))), nil
}

func (repository *fakeRepository) matches(record *song.Song, filter song.Filter) bool {
	if filter.Query != "" && !strings.Contains(record.SearchText, filter.Query) {
		return false
	}
	if filter.Printed != nil && record.Printed != *filter.Printed {
		return false
	}
	if filter.Unchecked && record.AdminChecked {
		return false
	}

	joined := record.CategoryString()
	for _, label := range filter.Categories {
		if !category.Matches(joined, label) {
			return false
		}
	}
	return true
}

func (repository *fakeRepository) filtered(filter song.Filter) []*song.Song {
	var matched []*song.Song
	for _, record := range repository.songs {
		if repository.matches(record, filter) {
			matched = append(matched, record)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SongID != matched[j].SongID {
			return matched[i].SongID < matched[j].SongID
		}
		return matched[i].VersionName < matched[j].VersionName
	})
	return matched
}

func (repository *fakeRepository) Search(_ context.Context, filter song.Filter, limit, offset int) ([]*song.Song, int, error) {
	matched := repository.filtered(filter)
	total := len(matched)

	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (repository *fakeRepository) Count(_ context.Context, filter song.Filter) (int, error) {
	return len(repository.filtered(filter)), nil
}

func (repository *fakeRepository) FindByID(_ context.Context, id int64) (*song.Song, error) {
	for _, record := range repository.songs {
		if record.ID == id {
			clone := *record
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Song")
}

func (repository *fakeRepository) FindByCode(_ context.Context, code string) (*song.Song, error) {
	var matched []*song.Song
	for _, record := range repository.songs {
		if record.SongID == code {
			matched = append(matched, record)
		}
	}
	if len(matched) == 0 {
		return nil, apperr.NotFound("Song")
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].VersionName < matched[j].VersionName })
	clone := *matched[0]
	return &clone, nil
}

func (repository *fakeRepository) ListByCodes(_ context.Context, codes []string) ([]*song.Song, error) {
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	var matched []*song.Song
	for _, record := range repository.songs {
		if wanted[record.SongID] {
			clone := *record
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

func (repository *fakeRepository) Create(_ context.Context, record *song.Song) error {
	if repository.conflictsLeft > 0 {
		repository.conflictsLeft--
		return apperr.Conflict("Resource already exists")
	}

	if record.SongID == "" {
		code, err := repository.allocateCode(record.Title)
		if err != nil {
			return err
		}
		record.SongID = code
	}

	repository.nextID++
	record.ID = repository.nextID

	clone := *record
	repository.songs = append(repository.songs, &clone)
	return nil
}

func (repository *fakeRepository) Update(_ context.Context, record *song.Song, reassignCode bool) error {
	if repository.conflictsLeft > 0 {
		repository.conflictsLeft--
		return apperr.Conflict("Resource already exists")
	}

	for index, existing := range repository.songs {
		if existing.ID != record.ID {
			continue
		}

		if reassignCode {
			code, err := repository.allocateCode(record.Title)
			if err != nil {
				return err
			}
			record.SongID = code
		}

		clone := *record
		repository.songs[index] = &clone
		return nil
	}
	return apperr.NotFound("Song")
}

func (repository *fakeRepository) Delete(_ context.Context, id int64) error {
	for index, record := range repository.songs {
		if record.ID == id {
			repository.songs = append(repository.songs[:index], repository.songs[index+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Song")
}

func (repository *fakeRepository) ListAssociations(_ context.Context, prefix, excludeCode string) ([]song.Association, error) {
	titles := make(map[string]string)
	for _, record := range repository.songs {
		if record.SongID == excludeCode {
			continue
		}
		if _, seen := titles[record.SongID]; !seen {
			titles[record.SongID] = record.Title
		}
	}

	associations := make([]song.Association, 0, len(titles))
	for code, title := range titles {
		associations = append(associations, song.Association{SongID: code, Title: title})
	}

	sort.Slice(associations, func(i, j int) bool {
		iPrefixed := prefix != "" && strings.HasPrefix(associations[i].SongID, prefix)
		jPrefixed := prefix != "" && strings.HasPrefix(associations[j].SongID, prefix)
		if iPrefixed != jPrefixed {
			return iPrefixed
		}
		return associations[i].SongID < associations[j].SongID
	})
	return associations, nil
}

func (repository *fakeRepository) Stats(_ context.Context) (*song.Stats, error) {
	stats := &song.Stats{CategoryCounts: make(map[string]int)}
	for _, label := range category.Catalog {
		stats.CategoryCounts[label] = 0
	}

	for _, record := range repository.songs {
		stats.TotalSongs++
		if record.AdminChecked {
			stats.TotalAdminChecked++
		}
		if record.Printed {
			stats.TotalPrinted++
		}
		joined := record.CategoryString()
		for _, label := range category.Catalog {
			if category.Matches(joined, label) {
				stats.CategoryCounts[label]++
			}
		}
	}
	return stats, nil
}

// # Test Fixtures

func newTestService(repository *fakeRepository, deletePasswordHash string) *song.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return song.NewService(repository, nil, deletePasswordHash, logger)
}

func mustCreate(t *testing.T, service *song.Service, record *song.Song) *song.Song {
	t.Helper()
	require.NoError(t, service.CreateSong(context.Background(), record))
	return record
}

// # Lookup & Creation

/*
TestService_GetSong verifies that numeric identifiers resolve by primary key
and anything else resolves as a song code.
*/
func TestService_GetSong(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	byID, err := service.GetSong(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byCode, err := service.GetSong(context.Background(), "A-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	_, err = service.GetSong(context.Background(), "Z-999")
	assert.Error(t, err)
}

/*
TestService_CreateSong_AllocatesSequentialCodes verifies letter-sequence
allocation including gap filling.
*/
func TestService_CreateSong_AllocatesSequentialCodes(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	first := mustCreate(t, service, &song.Song{Title: "Aleluja"})
	second := mustCreate(t, service, &song.Song{Title: "Anjelske chvály"})
	other := mustCreate(t, service, &song.Song{Title: "Blízko je Pán"})

	assert.Equal(t, "A-001", first.SongID)
	assert.Equal(t, "A-002", second.SongID)
	assert.Equal(t, "B-001", other.SongID)

	// Deleting A-001 leaves a gap that the next allocation reuses.
	require.NoError(t, repository.Delete(context.Background(), first.ID))
	refill := mustCreate(t, service, &song.Song{Title: "Ave Mária"})
	assert.Equal(t, "A-001", refill.SongID)
}

/*
TestService_CreateSong_TransliteratesLeadingLetter verifies that a diacritic
first letter maps to its base letter for the code.
*/
func TestService_CreateSong_TransliteratesLeadingLetter(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	created := mustCreate(t, service, &song.Song{Title: "Čistá láska"})
	assert.Equal(t, "C-001", created.SongID)
}

/*
TestService_CreateSong_ComputesSearchText verifies that the search text is
durable with the record itself.
*/
func TestService_CreateSong_ComputesSearchText(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	mustCreate(t, service, &song.Song{
		Title: "Tichá noc",
		Parts: []song.Part{{Type: "sloka", Lines: []string{"Tichá noc, svätá noc"}}},
	})

	require.Len(t, repository.songs, 1)
	assert.Equal(t, "ticha noc ticha noc svata noc", repository.songs[0].SearchText)
}

/*
TestService_CreateSong_Validation verifies rejection of invalid payloads.
*/
func TestService_CreateSong_Validation(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	tests := []struct {
		name  string
		title string
	}{
		{name: "empty_title", title: ""},
		{name: "title_without_any_characters", title: "   "},
		{name: "title_too_long", title: strings.Repeat("a", 501)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := service.CreateSong(context.Background(), &song.Song{Title: testCase.title})

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}

	assert.Empty(t, repository.songs)
}

/*
TestService_CreateSong_RetriesOnAllocationConflict verifies that a lost
allocation race is retried and eventually succeeds.
*/
func TestService_CreateSong_RetriesOnAllocationConflict(t *testing.T) {
	repository := &fakeRepository{conflictsLeft: 2}
	service := newTestService(repository, "")

	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})
	assert.Equal(t, "A-001", created.SongID)
}

/*
TestService_CreateSong_SurfacesPersistentConflict verifies that the retry
budget is bounded.
*/
func TestService_CreateSong_SurfacesPersistentConflict(t *testing.T) {
	repository := &fakeRepository{conflictsLeft: 10}
	service := newTestService(repository, "")

	err := service.CreateSong(context.Background(), &song.Song{Title: "Aleluja"})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

// # Updates & Identifier Stability

/*
TestService_UpdateSong_KeepsCodeWhenLetterStable verifies that an edit which
does not change the title's first letter keeps the song code.
*/
func TestService_UpdateSong_KeepsCodeWhenLetterStable(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	updated, err := service.UpdateSong(context.Background(), created.ID, &song.Song{Title: "Ave Mária"})
	require.NoError(t, err)

	assert.Equal(t, "A-001", updated.SongID)
	assert.Equal(t, "Ave Mária", updated.Title)
}

/*
TestService_UpdateSong_ReassignsCodeOnLetterChange verifies that a retitle
across letters allocates a fresh code in the new sequence.
*/
func TestService_UpdateSong_ReassignsCodeOnLetterChange(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	mustCreate(t, service, &song.Song{Title: "Blízko je Pán"})
	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	updated, err := service.UpdateSong(context.Background(), created.ID, &song.Song{Title: "Buď pochválený"})
	require.NoError(t, err)

	assert.Equal(t, "B-002", updated.SongID)
}

/*
TestService_UpdateSong_RecomputesSearchText verifies that an edit refreshes
the search text together with the change.
*/
func TestService_UpdateSong_RecomputesSearchText(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	_, err := service.UpdateSong(context.Background(), created.ID, &song.Song{
		Title: "Anjel Pána",
		Parts: []song.Part{{Type: "refren", Lines: []string{"Zdravas', Mária"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "anjel pana zdravas' maria", repository.songs[0].SearchText)
}

// # Search

func seedSearchCatalog(t *testing.T, service *song.Service) {
	t.Helper()

	mustCreate(t, service, &song.Song{
		Title:        "Adventná pieseň",
		Categories:   []string{"advent"},
		Printed:      true,
		AdminChecked: true,
	})
	mustCreate(t, service, &song.Song{
		Title:      "Anjelik",
		Categories: []string{"advent", "detské"},
	})
	mustCreate(t, service, &song.Song{
		Title:        "Betlehemská hviezda",
		Categories:   []string{"vianoce"},
		AdminChecked: true,
	})
}

/*
TestService_Search_NormalizedQuery verifies that a diacritic query matches
the normalized search text.
*/
func TestService_Search_NormalizedQuery(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	results, total, err := service.Search(context.Background(), song.Filter{Query: "Adventná"}, 0, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Adventná pieseň", results[0].Title)
}

/*
TestService_Search_CategoryIntersection verifies that multiple category
filters require every category.
*/
func TestService_Search_CategoryIntersection(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	results, total, err := service.Search(context.Background(),
		song.Filter{Categories: []string{"advent", "detské"}}, 0, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Anjelik", results[0].Title)
}

/*
TestService_Search_UncheckedFilter verifies the admin review queue filter.
*/
func TestService_Search_UncheckedFilter(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	results, total, err := service.Search(context.Background(), song.Filter{Unchecked: true}, 0, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Anjelik", results[0].Title)
}

/*
TestService_Search_Pagination verifies stable windows and clamped totals.
*/
func TestService_Search_Pagination(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	firstPage, total, err := service.Search(context.Background(), song.Filter{}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, firstPage, 2)
	assert.Equal(t, "A-001", firstPage[0].SongID)
	assert.Equal(t, "A-002", firstPage[1].SongID)

	secondPage, total, err := service.Search(context.Background(), song.Filter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, secondPage, 1)
	assert.Equal(t, "B-001", secondPage[0].SongID)

	// An offset past the end yields an empty window, not an error.
	pastEnd, total, err := service.Search(context.Background(), song.Filter{}, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, pastEnd)
}

/*
TestService_Search_AttachesPreviews verifies that result rows carry verse and
chorus previews.
*/
func TestService_Search_AttachesPreviews(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	mustCreate(t, service, &song.Song{
		Title: "Tichá noc",
		Parts: []song.Part{
			{Type: "sloka", Lines: []string{"Tichá noc, svätá noc"}},
			{Type: "refren", Lines: []string{"Spí všetko, spí"}},
		},
	})

	results, _, err := service.Search(context.Background(), song.Filter{}, 0, 50)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Tichá noc, svätá noc", results[0].Verse1Preview)
	assert.Equal(t, "Spí všetko, spí", results[0].ChorusPreview)
}

// # Facets & Statistics

/*
TestService_CategoryCounts verifies facet counting with dual-case keys and
self-exclusion of the counted category.
*/
func TestService_CategoryCounts(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	counts, err := service.CategoryCounts(context.Background(), song.Filter{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, counts["advent"])
	assert.Equal(t, 1, counts["vianoce"])
	assert.Equal(t, 1, counts["detské"])

	// Every catalogue category is present, zero-filled when unused.
	assert.Equal(t, 0, counts["pôst"])

	// Mixed-case labels are reported under both their lowercase and their
	// original-case key.
	_, hasLower := counts["taizé"]
	_, hasOriginal := counts["Taizé"]
	assert.True(t, hasLower)
	assert.True(t, hasOriginal)
}

/*
TestService_CategoryCounts_ActiveIntersection verifies that active categories
constrain every facet except the one being counted.
*/
func TestService_CategoryCounts_ActiveIntersection(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	counts, err := service.CategoryCounts(context.Background(), song.Filter{}, []string{"detské"})
	require.NoError(t, err)

	// 'advent' is counted among songs that also carry 'detské'.
	assert.Equal(t, 1, counts["advent"])
	// 'detské' itself is not self-constrained; it keeps its full count.
	assert.Equal(t, 1, counts["detské"])
	// 'vianoce' has no overlap with 'detské'.
	assert.Equal(t, 0, counts["vianoce"])
}

/*
TestService_Stats verifies whole-catalogue statistics.
*/
func TestService_Stats(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalSongs)
	assert.Equal(t, 2, stats.TotalAdminChecked)
	assert.Equal(t, 1, stats.TotalPrinted)
	assert.Equal(t, 2, stats.CategoryCounts["advent"])
}

// # Deletion & Association

/*
TestService_DeleteSong verifies the shared delete password guard.
*/
func TestService_DeleteSong(t *testing.T) {
	hash, err := sec.HashPassword("tajné-heslo")
	require.NoError(t, err)

	repository := &fakeRepository{}
	service := newTestService(repository, hash)
	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	// Wrong password leaves the record untouched.
	err = service.DeleteSong(context.Background(), created.ID, "nesprávne")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Len(t, repository.songs, 1)

	// Correct password removes it.
	require.NoError(t, service.DeleteSong(context.Background(), created.ID, "tajné-heslo"))
	assert.Empty(t, repository.songs)
}

/*
TestService_DeleteSong_DisabledWithoutHash verifies that deletion is always
refused when no password hash is configured.
*/
func TestService_DeleteSong_DisabledWithoutHash(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	err := service.DeleteSong(context.Background(), created.ID, "čokoľvek")

	require.Error(t, err)
	assert.Len(t, repository.songs, 1)
}

/*
TestService_CheckDeletePassword verifies the standalone password check.
*/
func TestService_CheckDeletePassword(t *testing.T) {
	hash, err := sec.HashPassword("tajné-heslo")
	require.NoError(t, err)

	service := newTestService(&fakeRepository{}, hash)

	assert.NoError(t, service.CheckDeletePassword("tajné-heslo"))
	assert.Error(t, service.CheckDeletePassword("nesprávne"))
}

/*
TestService_Associate verifies that a song adopts the target's code and title
while keeping its own version name.
*/
func TestService_Associate(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")

	mustCreate(t, service, &song.Song{Title: "Aleluja"})
	variant := mustCreate(t, service, &song.Song{Title: "Aleluja zborová", VersionName: "zborová"})

	associated, err := service.Associate(context.Background(), variant.ID, "A-001")
	require.NoError(t, err)

	assert.Equal(t, "A-001", associated.SongID)
	assert.Equal(t, "Aleluja", associated.Title)
	assert.Equal(t, "zborová", associated.VersionName)
}

/*
TestService_Associate_UnknownTarget verifies the missing-target error.
*/
func TestService_Associate_UnknownTarget(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	created := mustCreate(t, service, &song.Song{Title: "Aleluja"})

	_, err := service.Associate(context.Background(), created.ID, "Z-999")

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

// # Batch Retrieval

/*
TestService_SongsByCodes verifies request ordering, duplicate collapsing, and
missing-code reporting.
*/
func TestService_SongsByCodes(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	songs, missing, err := service.SongsByCodes(context.Background(),
		[]string{"B-001", "Z-999", "A-001", "B-001"})
	require.NoError(t, err)

	require.Len(t, songs, 2)
	assert.Equal(t, "B-001", songs[0].SongID)
	assert.Equal(t, "A-001", songs[1].SongID)
	assert.Equal(t, []string{"Z-999"}, missing)
}

/*
TestService_Associations verifies picker ordering with prefix priority.
*/
func TestService_Associations(t *testing.T) {
	repository := &fakeRepository{}
	service := newTestService(repository, "")
	seedSearchCatalog(t, service)

	associations, err := service.Associations(context.Background(), "b", "")
	require.NoError(t, err)

	require.Len(t, associations, 3)
	assert.Equal(t, "B-001", associations[0].SongID)
}
