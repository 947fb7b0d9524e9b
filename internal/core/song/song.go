// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package song defines the core domain entities for the Spevnik catalogue.

It manages the lifecycle of liturgical songs: titles, authorship, structured
lyrics, classification, and the derived search text that powers free-text
discovery.

Core Responsibility:

  - Catalogue: Stores song metadata, versions, and alternative titles.
  - Discovery: Maintains the normalized search text and serves substring
    queries with filter intersection and faceted category counts.
  - Identity: Assigns the human-facing letter-sequence code (e.g. "A-001").

Asset files (audio, MIDI, sheet PDFs, score-editor sources) are referenced by
path only; their storage and rendering live outside this service.
*/
package song

import (
	"time"

	"github.com/taibuivan/spevnik/internal/core/category"
)

// # Core Entities

// Part is one structural unit of a song's lyrics (a verse, a chorus, ...).
// Lines may carry inline chord annotations in square brackets.
type Part struct {
	Type  string   `json:"type"`
	Lines []string `json:"lines"`
}

// Song is the central aggregate of the Spevnik domain.
type Song struct {
	// ID is the internal numeric primary key, used for relationships and
	// ordering-independent lookup.
	ID int64 `json:"id"`

	// SongID is the human-facing identifier, e.g. "A-001". The letter is
	// derived from the title; multiple versions of one song share the code
	// and differ by VersionName.
	SongID string `json:"song_id"`

	Title          string `json:"title"`
	VersionName    string `json:"version_name,omitempty"`
	Author         string `json:"author,omitempty"`
	TitleOriginal  string `json:"title_original,omitempty"`
	AuthorOriginal string `json:"author_original,omitempty"`

	// AlternativeTitles holds other names the song is known by. Order is
	// insignificant for search but preserved for display.
	AlternativeTitles []string `json:"alternative_titles"`

	// Categories is the set of classification labels. Matching against
	// filters follows the legacy substring contract (see package category).
	Categories []string `json:"categories"`

	// Parts is the ordered lyrics body.
	Parts []Part `json:"parts"`

	AdminChecked bool `json:"admin_checked"`
	Printed      bool `json:"printed"`

	// SearchText is the derived, normalized concatenation of all textual
	// attributes. It is recomputed on every create/update and is never
	// user-editable.
	SearchText string `json:"-"`

	// # Asset Path Metadata
	// Paths into external storage. This service only bookkeeps them.
	PDFLyricsPath  string   `json:"pdf_lyrics_path,omitempty"`
	PDFChordsPath  string   `json:"pdf_chords_path,omitempty"`
	TexPath        string   `json:"tex_path,omitempty"`
	MP3Paths       []string `json:"mp3_paths"`
	MIDIPaths      []string `json:"midi_paths"`
	SheetPDFPaths  []string `json:"sheet_pdf_paths"`
	SheetMsczPaths []string `json:"sheet_mscz_paths"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryString renders the stored category labels as the joined form the
// substring matching contract is defined against.
func (s *Song) CategoryString() string {
	return category.Join(s.Categories)
}

// # Search & Filtering

// Filter holds the predicates of a search or facet-count query. All set
// predicates are combined with AND.
type Filter struct {
	// Query is the raw user query; it is normalized before matching and an
	// empty query matches everything.
	Query string `json:"q,omitempty"`

	// Printed filters on the printed flag when non-nil.
	Printed *bool `json:"printed,omitempty"`

	// Unchecked, when true, restricts to songs not yet admin-checked.
	Unchecked bool `json:"unchecked,omitempty"`

	// Categories lists labels the song must all carry (intersection).
	Categories []string `json:"categories,omitempty"`
}

// Summary is the search-result projection of a [Song], enriched with lyric
// previews for the result list.
type Summary struct {
	ID                int64    `json:"id"`
	SongID            string   `json:"song_id"`
	Title             string   `json:"title"`
	Author            string   `json:"author,omitempty"`
	AuthorOriginal    string   `json:"author_original,omitempty"`
	VersionName       string   `json:"version_name,omitempty"`
	TitleOriginal     string   `json:"title_original,omitempty"`
	AdminChecked      bool     `json:"admin_checked"`
	Printed           bool     `json:"printed"`
	Categories        []string `json:"categories"`
	AlternativeTitles []string `json:"alternative_titles"`

	// Verse1Preview and ChorusPreview are the first few words of the first
	// verse and chorus, chord annotations stripped.
	Verse1Preview string `json:"verse1_preview"`
	ChorusPreview string `json:"chorus_preview"`

	MP3Paths      []string `json:"mp3_paths"`
	SheetPDFPaths []string `json:"sheet_pdf_paths"`
	PDFLyricsPath string   `json:"pdf_lyrics_path,omitempty"`
	PDFChordsPath string   `json:"pdf_chords_path,omitempty"`
	TexPath       string   `json:"tex_path,omitempty"`
}

// Association is the lightweight code+title row served to the association
// picker UI.
type Association struct {
	SongID string `json:"song_id"`
	Title  string `json:"title"`
}

// Stats aggregates whole-catalogue statistics for the landing page.
type Stats struct {
	TotalSongs        int            `json:"total_songs"`
	TotalAdminChecked int            `json:"total_admin_checked"`
	TotalPrinted      int            `json:"total_printed"`
	CategoryCounts    map[string]int `json:"category_counts"`
}

// # Field Identifiers

// Global field names for validation and request decoding.
const (
	FieldID                = "id"
	FieldSongID            = "song_id"
	FieldTitle             = "title"
	FieldVersionName       = "version_name"
	FieldAuthor            = "author"
	FieldTitleOriginal     = "title_original"
	FieldAuthorOriginal    = "author_original"
	FieldAlternativeTitles = "alternative_titles"
	FieldCategories        = "categories"
	FieldParts             = "parts"
	FieldAdminChecked      = "admin_checked"
	FieldPrinted           = "printed"
	FieldPassword          = "password"
)
