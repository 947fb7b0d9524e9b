// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/spevnik/internal/core/category"
	"github.com/taibuivan/spevnik/pkg/normtext"
	"github.com/taibuivan/spevnik/pkg/pagination"
	"github.com/taibuivan/spevnik/pkg/slice"
)

// # Query Engine

/*
Search runs a free-text catalogue query with filter intersection.

Description: The raw query is normalized with the exact pipeline used when
maintaining the search text — that symmetry makes substring matching on the
precomputed column correct. All active predicates combine with AND; results
are a stable window ordered by song code, and the total is computed over the
full filtered set before pagination. Offset and limit are clamped, never
rejected.

Parameters:
  - context: context.Context
  - filter: Filter (Raw query, flags, required categories)
  - offset: int
  - limit: int

Returns:
  - []Summary: Result rows with verse/chorus previews attached
  - int: Total match count before pagination
  - error: Repository failures
*/
func (service *Service) Search(context context.Context, filter Filter, offset, limit int) ([]Summary, int, error) {
	params := pagination.Clamp(offset, limit)

	filter.Query = normtext.Normalize(filter.Query)
	filter.Categories = cleanLabels(filter.Categories)

	songs, total, err := service.repo.Search(context, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}

	return slice.Map(songs, summarize), total, nil
}

/*
CategoryCounts computes faceted category counts under the active filters.

Description: For every catalogue category, the count of songs matching the
base filters AND carrying that category AND carrying every other currently
active category. The category being counted is excluded from the active set,
so a facet button shows what adding that category would yield rather than
suppressing itself. Each category is reported under both its lowercase and
its original-case key; clients look up whichever casing they hold.

Parameters:
  - context: context.Context
  - base: Filter (Query and flag filters; its Categories field is ignored)
  - activeCategories: []string (Labels currently toggled on by the caller)

Returns:
  - map[string]int: category label → count
  - error: Repository failures
*/
func (service *Service) CategoryCounts(context context.Context, base Filter, activeCategories []string) (map[string]int, error) {
	base.Query = normtext.Normalize(base.Query)
	active := cleanLabels(activeCategories)

	// The unfiltered facet map is the landing-page default and worth caching.
	cacheable := service.cache != nil && base.Query == "" &&
		base.Printed == nil && !base.Unchecked && len(active) == 0

	if cacheable {
		if counts, ok := service.cache.GetFacetCounts(context); ok {
			return counts, nil
		}
	}

	counts := make(map[string]int, 2*len(category.Catalog))

	for _, label := range category.Catalog {
		lowered := strings.ToLower(label)

		filter := base
		filter.Categories = append([]string{lowered}, withoutLabel(active, lowered)...)

		count, err := service.repo.Count(context, filter)
		if err != nil {
			return nil, err
		}

		counts[lowered] = count
		counts[label] = count
	}

	if cacheable {
		if err := service.cache.SetFacetCounts(context, counts); err != nil {
			service.logger.WarnContext(context, "facet_cache_set_failed", slog.Any("error", err))
		}
	}

	return counts, nil
}

/*
Stats returns whole-catalogue statistics, served from cache when fresh.

Parameters:
  - context: context.Context

Returns:
  - *Stats: Totals and per-category counts
  - error: Repository failures
*/
func (service *Service) Stats(context context.Context) (*Stats, error) {
	if service.cache != nil {
		if stats, ok := service.cache.GetStats(context); ok {
			return stats, nil
		}
	}

	stats, err := service.repo.Stats(context)
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		if err := service.cache.SetStats(context, stats); err != nil {
			service.logger.WarnContext(context, "stats_cache_set_failed", slog.Any("error", err))
		}
	}

	return stats, nil
}

/*
Associations lists code+title pairs for the association picker, codes with the
given prefix first.

Parameters:
  - context: context.Context
  - prefix: string (Upper-cased before matching)
  - excludeCode: string (Code to omit, typically the song being edited)

Returns:
  - []Association: Ordered picker rows
  - error: Repository failures
*/
func (service *Service) Associations(context context.Context, prefix, excludeCode string) ([]Association, error) {
	return service.repo.ListAssociations(context, strings.ToUpper(strings.TrimSpace(prefix)), excludeCode)
}

/*
SongsByCodes returns the songs for an explicit code list, in request order.

Description: Codes that resolve to nothing are reported back rather than
silently dropped, so the caller can tell the user which entries of a shared
set list are gone. A code with several versions contributes all of them, in
version order, at the code's position.

Parameters:
  - context: context.Context
  - codes: []string

Returns:
  - []*Song: Found songs, ordered to match codes
  - []string: Codes with no match, in request order
  - error: Repository failures
*/
func (service *Service) SongsByCodes(context context.Context, codes []string) ([]*Song, []string, error) {
	songs, err := service.repo.ListByCodes(context, codes)
	if err != nil {
		return nil, nil, err
	}

	byCode := make(map[string][]*Song, len(codes))
	for _, s := range songs {
		byCode[s.SongID] = append(byCode[s.SongID], s)
	}

	ordered := make([]*Song, 0, len(songs))
	var missing []string
	seen := make(map[string]bool, len(codes))

	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true

		matched, ok := byCode[code]
		if !ok {
			missing = append(missing, code)
			continue
		}
		ordered = append(ordered, matched...)
	}

	return ordered, missing, nil
}

// # Internal Helpers

// summarize projects a song onto its search-result row, deriving previews.
func summarize(s *Song) Summary {
	versePreview, chorusPreview := Previews(s.Parts)

	return Summary{
		ID:                s.ID,
		SongID:            s.SongID,
		Title:             s.Title,
		Author:            s.Author,
		AuthorOriginal:    s.AuthorOriginal,
		VersionName:       s.VersionName,
		TitleOriginal:     s.TitleOriginal,
		AdminChecked:      s.AdminChecked,
		Printed:           s.Printed,
		Categories:        s.Categories,
		AlternativeTitles: s.AlternativeTitles,
		Verse1Preview:     versePreview,
		ChorusPreview:     chorusPreview,
		MP3Paths:          s.MP3Paths,
		SheetPDFPaths:     s.SheetPDFPaths,
		PDFLyricsPath:     s.PDFLyricsPath,
		PDFChordsPath:     s.PDFChordsPath,
		TexPath:           s.TexPath,
	}
}

// cleanLabels trims and lowercases filter labels, dropping empties.
func cleanLabels(labels []string) []string {
	var clean []string
	for _, label := range labels {
		trimmed := strings.ToLower(strings.TrimSpace(label))
		if trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	return clean
}

// withoutLabel filters one label out of the active set.
func withoutLabel(labels []string, excluded string) []string {
	return slice.Filter(labels, func(label string) bool { return label != excluded })
}
