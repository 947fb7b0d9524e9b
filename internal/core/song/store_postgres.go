// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package song provides the PostgreSQL implementation for the catalogue's data access.

The repository leans on a few Postgres features for the discovery workload:
  - Precomputed Search Text: Substring LIKE over the normalized search_text
    column (trigram-indexed), avoiding any query-time renormalization.
  - Window Functions: COUNT(*) OVER() delivers the total match count without a
    second query.
  - Advisory Locks: pg_advisory_xact_lock serializes identifier allocation per
    letter without blocking readers or writers of other letters.
  - Unique Constraint: (song_id, version_name) backstops the allocation path;
    a violation surfaces as a Conflict the service retries.
*/
package song

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/spevnik/internal/core/category"
	"github.com/taibuivan/spevnik/internal/platform/apperr"
	"github.com/taibuivan/spevnik/internal/platform/database/schema"
	"github.com/taibuivan/spevnik/internal/platform/dberr"
	"github.com/taibuivan/spevnik/pkg/songid"
)

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed song store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// songColumns renders the full column list for SELECTs, in scan order.
func songColumns(alias string) string {
	t := schema.CoreSong
	columns := []string{
		t.ID, t.SongID, t.VersionName, t.Title, t.Author,
		t.TitleOriginal, t.AuthorOriginal, t.AlternativeTitles, t.Categories, t.Parts,
		t.AdminChecked, t.Printed, t.SearchText,
		t.PDFLyricsPath, t.PDFChordsPath, t.TexPath,
		t.MP3Paths, t.MIDIPaths, t.SheetPDFPaths, t.SheetMsczPaths,
		t.CreatedAt, t.UpdatedAt,
	}

	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

// scanSong hydrates one row in [songColumns] order, plus any extra targets.
func scanSong(row pgx.Row, extra ...any) (*Song, error) {
	s := &Song{}
	var rawParts []byte

	targets := []any{
		&s.ID, &s.SongID, &s.VersionName, &s.Title, &s.Author,
		&s.TitleOriginal, &s.AuthorOriginal, &s.AlternativeTitles, &s.Categories, &rawParts,
		&s.AdminChecked, &s.Printed, &s.SearchText,
		&s.PDFLyricsPath, &s.PDFChordsPath, &s.TexPath,
		&s.MP3Paths, &s.MIDIPaths, &s.SheetPDFPaths, &s.SheetMsczPaths,
		&s.CreatedAt, &s.UpdatedAt,
	}
	targets = append(targets, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	// Corrupt lyrics JSON degrades to an empty body, never an error.
	s.Parts = DecodeParts(rawParts)
	return s, nil
}

// appendFilter translates a [Filter] into WHERE predicates.
//
// The query is matched as a plain substring of the precomputed search text.
// Category labels are matched, each one, as a case-insensitive substring of
// the joined category string — the legacy contract the stored data was
// written against.
func appendFilter(builder *strings.Builder, filter Filter, args *[]any) {
	t := schema.CoreSong

	if filter.Query != "" {
		*args = append(*args, "%"+filter.Query+"%")
		fmt.Fprintf(builder, " AND s.%s LIKE $%d", t.SearchText, len(*args))
	}

	if filter.Printed != nil {
		*args = append(*args, *filter.Printed)
		fmt.Fprintf(builder, " AND s.%s = $%d", t.Printed, len(*args))
	}

	if filter.Unchecked {
		fmt.Fprintf(builder, " AND s.%s = FALSE", t.AdminChecked)
	}

	for _, label := range filter.Categories {
		*args = append(*args, "%"+label+"%")
		fmt.Fprintf(builder, " AND array_to_string(s.%s, '%s') ILIKE $%d",
			t.Categories, category.Separator, len(*args))
	}
}

// # Repository Implementation

/*
Search returns a filtered, paginated slice of songs and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total alongside the page.
When the requested window lies past the last match the window count is
unavailable, so the total falls back to a dedicated Count query.
*/
func (repository *postgresRepository) Search(context context.Context, filter Filter, limit, offset int) ([]*Song, int, error) {
	t := schema.CoreSong

	var builder strings.Builder
	var args []any

	fmt.Fprintf(&builder, `SELECT %s, COUNT(*) OVER() AS total_count FROM %s s WHERE TRUE`,
		songColumns("s"), t.Table)

	appendFilter(&builder, filter, &args)

	args = append(args, limit)
	fmt.Fprintf(&builder, " ORDER BY s.%s ASC, s.%s ASC LIMIT $%d", t.SongID, t.ID, len(args))
	args = append(args, offset)
	fmt.Fprintf(&builder, " OFFSET $%d", len(args))

	rows, err := repository.pool.Query(context, builder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_songs")
	}
	defer rows.Close()

	songs := make([]*Song, 0)
	total := 0

	for rows.Next() {
		s, err := scanSong(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_song")
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "search_songs_rows")
	}

	// Empty window past the end: the total still has to reflect the full
	// filtered set.
	if len(songs) == 0 && offset > 0 {
		total, err = repository.Count(context, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return songs, total, nil
}

/*
Count returns the number of songs matching the filter, sharing Search's
predicate semantics exactly.
*/
func (repository *postgresRepository) Count(context context.Context, filter Filter) (int, error) {
	var builder strings.Builder
	var args []any

	fmt.Fprintf(&builder, `SELECT COUNT(*) FROM %s s WHERE TRUE`, schema.CoreSong.Table)
	appendFilter(&builder, filter, &args)

	count := 0
	if err := repository.pool.QueryRow(context, builder.String(), args...).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_songs")
	}

	return count, nil
}

/*
FindByID returns the song with the given internal primary key.
*/
func (repository *postgresRepository) FindByID(context context.Context, id int64) (*Song, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s s WHERE s.%s = $1`, songColumns("s"), t.Table, t.ID)

	s, err := scanSong(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_song_by_id")
	}

	return s, nil
}

/*
FindByCode returns the first song carrying the given code, ordered by version
name so the base version wins over named variants.
*/
func (repository *postgresRepository) FindByCode(context context.Context, code string) (*Song, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s s WHERE s.%s = $1 ORDER BY s.%s ASC LIMIT 1`,
		songColumns("s"), t.Table, t.SongID, t.VersionName)

	s, err := scanSong(repository.pool.QueryRow(context, query, code))
	if err != nil {
		return nil, dberr.Wrap(err, "find_song_by_code")
	}

	return s, nil
}

/*
ListByCodes returns every song whose code appears in codes.
*/
func (repository *postgresRepository) ListByCodes(context context.Context, codes []string) ([]*Song, error) {
	if len(codes) == 0 {
		return []*Song{}, nil
	}

	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s s WHERE s.%s = ANY($1) ORDER BY s.%s ASC, s.%s ASC`,
		songColumns("s"), t.Table, t.SongID, t.SongID, t.ID)

	rows, err := repository.pool.Query(context, query, codes)
	if err != nil {
		return nil, dberr.Wrap(err, "list_songs_by_codes")
	}
	defer rows.Close()

	songs := make([]*Song, 0, len(codes))
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_song")
		}
		songs = append(songs, s)
	}

	return songs, rows.Err()
}

/*
Create persists a new song inside a single transaction.

Description: When the song carries no code yet, allocation runs first under
the per-letter advisory lock, so concurrent creates for the same letter
serialize on read-then-claim. The insert carries the precomputed search text;
both become durable together or not at all.
*/
func (repository *postgresRepository) Create(context context.Context, song *Song) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if song.SongID == "" {
		code, err := allocateCode(context, transaction, song.Title)
		if err != nil {
			return err
		}
		song.SongID = code
	}

	t := schema.CoreSong
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s,
			%s, %s, %s, %s, %s,
			%s, %s, %s,
			%s, %s, %s,
			%s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING %s, %s, %s
	`,
		t.Table,
		t.SongID, t.VersionName, t.Title, t.Author,
		t.TitleOriginal, t.AuthorOriginal, t.AlternativeTitles, t.Categories, t.Parts,
		t.AdminChecked, t.Printed, t.SearchText,
		t.PDFLyricsPath, t.PDFChordsPath, t.TexPath,
		t.MP3Paths, t.MIDIPaths, t.SheetPDFPaths, t.SheetMsczPaths,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		song.SongID,
		song.VersionName,
		song.Title,
		song.Author,
		song.TitleOriginal,
		song.AuthorOriginal,
		stringSliceOrEmpty(song.AlternativeTitles),
		stringSliceOrEmpty(song.Categories),
		EncodeParts(song.Parts),
		song.AdminChecked,
		song.Printed,
		song.SearchText,
		song.PDFLyricsPath,
		song.PDFChordsPath,
		song.TexPath,
		stringSliceOrEmpty(song.MP3Paths),
		stringSliceOrEmpty(song.MIDIPaths),
		stringSliceOrEmpty(song.SheetPDFPaths),
		stringSliceOrEmpty(song.SheetMsczPaths),
	).Scan(&song.ID, &song.CreatedAt, &song.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "create_song")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit create transaction: %w", err)
	}

	return nil
}

/*
Update persists changes to an existing song inside a single transaction.

Description: With reassignCode set, a fresh code is allocated from the current
title under the same per-letter serialization as Create. The search text
column is always written from the struct, keeping it atomic with the textual
change that triggered the recompute.
*/
func (repository *postgresRepository) Update(context context.Context, song *Song, reassignCode bool) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if reassignCode {
		code, err := allocateCode(context, transaction, song.Title)
		if err != nil {
			return err
		}
		song.SongID = code
	}

	t := schema.CoreSong
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2, %s = $3, %s = $4,
			%s = $5, %s = $6, %s = $7, %s = $8, %s = $9,
			%s = $10, %s = $11, %s = $12,
			%s = $13, %s = $14, %s = $15,
			%s = $16, %s = $17, %s = $18, %s = $19,
			%s = now()
		WHERE %s = $20
		RETURNING %s
	`,
		t.Table,
		t.SongID, t.VersionName, t.Title, t.Author,
		t.TitleOriginal, t.AuthorOriginal, t.AlternativeTitles, t.Categories, t.Parts,
		t.AdminChecked, t.Printed, t.SearchText,
		t.PDFLyricsPath, t.PDFChordsPath, t.TexPath,
		t.MP3Paths, t.MIDIPaths, t.SheetPDFPaths, t.SheetMsczPaths,
		t.UpdatedAt,
		t.ID,
		t.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		song.SongID,
		song.VersionName,
		song.Title,
		song.Author,
		song.TitleOriginal,
		song.AuthorOriginal,
		stringSliceOrEmpty(song.AlternativeTitles),
		stringSliceOrEmpty(song.Categories),
		EncodeParts(song.Parts),
		song.AdminChecked,
		song.Printed,
		song.SearchText,
		song.PDFLyricsPath,
		song.PDFChordsPath,
		song.TexPath,
		stringSliceOrEmpty(song.MP3Paths),
		stringSliceOrEmpty(song.MIDIPaths),
		stringSliceOrEmpty(song.SheetPDFPaths),
		stringSliceOrEmpty(song.SheetMsczPaths),
		song.ID,
	).Scan(&song.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "update_song")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit update transaction: %w", err)
	}

	return nil
}

/*
Delete removes a song row; the derived search text lives on the same row and
disappears with it.
*/
func (repository *postgresRepository) Delete(context context.Context, id int64) error {
	t := schema.CoreSong
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_song")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
ListAssociations returns code+title pairs: prefix matches first, then the
rest, both partitions ordered by code and title.
*/
func (repository *postgresRepository) ListAssociations(context context.Context, prefix, excludeCode string) ([]Association, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE ($2 = '' OR %s <> $2)
		ORDER BY CASE WHEN %s LIKE $1 || '%%' THEN 0 ELSE 1 END, %s ASC, %s ASC
	`,
		t.SongID, t.Title, t.Table,
		t.SongID,
		t.SongID, t.SongID, t.Title,
	)

	rows, err := repository.pool.Query(context, query, prefix, excludeCode)
	if err != nil {
		return nil, dberr.Wrap(err, "list_associations")
	}
	defer rows.Close()

	associations := make([]Association, 0)
	for rows.Next() {
		var a Association
		if err := rows.Scan(&a.SongID, &a.Title); err != nil {
			return nil, dberr.Wrap(err, "scan_association")
		}
		associations = append(associations, a)
	}

	return associations, rows.Err()
}

/*
Stats returns whole-catalogue statistics in two round-trips: one aggregate
query for the totals and one category-string sweep for the facet counts.
*/
func (repository *postgresRepository) Stats(context context.Context) (*Stats, error) {
	t := schema.CoreSong

	stats := &Stats{CategoryCounts: make(map[string]int, len(category.Catalog))}

	totalsQuery := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE %s),
		       COUNT(*) FILTER (WHERE %s)
		FROM %s
	`, t.AdminChecked, t.Printed, t.Table)

	err := repository.pool.QueryRow(context, totalsQuery).
		Scan(&stats.TotalSongs, &stats.TotalAdminChecked, &stats.TotalPrinted)
	if err != nil {
		return nil, dberr.Wrap(err, "song_stats_totals")
	}

	sweepQuery := fmt.Sprintf(`SELECT array_to_string(%s, '%s') FROM %s`,
		t.Categories, category.Separator, t.Table)

	rows, err := repository.pool.Query(context, sweepQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "song_stats_categories")
	}
	defer rows.Close()

	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, dberr.Wrap(err, "scan_category_string")
		}

		for _, label := range category.Catalog {
			if category.Matches(joined, label) {
				stats.CategoryCounts[label]++
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "song_stats_rows")
	}

	// Zero-count categories still appear in the result.
	for _, label := range category.Catalog {
		if _, ok := stats.CategoryCounts[label]; !ok {
			stats.CategoryCounts[label] = 0
		}
	}

	return stats, nil
}

// # Identifier Allocation

/*
allocateCode claims the next free code for the song's title letter.

Description: Takes a transaction-scoped advisory lock keyed on the letter, so
two allocators for "A" serialize while an allocator for "B" proceeds, then
reads the letter's claimed codes and picks the smallest unused sequence
number. The (song_id, version_name) unique constraint remains the backstop
for anything that slips through.
*/
func allocateCode(context context.Context, transaction pgx.Tx, title string) (string, error) {
	letter, ok := songid.Letter(title)
	if !ok {
		return "", apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldTitle,
			Message: "A title is required to assign a song code",
		})
	}

	if _, err := transaction.Exec(context,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, "song_code:"+letter); err != nil {
		return "", fmt.Errorf("postgres: failed to lock code allocation: %w", err)
	}

	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s LIKE $1`, t.SongID, t.Table, t.SongID)

	rows, err := transaction.Query(context, query, letter+"-%")
	if err != nil {
		return "", fmt.Errorf("postgres: failed to read claimed codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", fmt.Errorf("postgres: failed to scan claimed code: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("postgres: failed to read claimed codes: %w", err)
	}

	used := songid.UsedNumbers(letter, codes)
	return songid.Format(letter, songid.Next(used)), nil
}

// stringSliceOrEmpty keeps array columns NOT NULL friendly.
func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
