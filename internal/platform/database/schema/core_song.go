// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema centralizes table and column identifiers used by the
// PostgreSQL repositories, keeping SQL construction free of magic strings.
package schema

// CoreSongTable represents the 'core.song' table
type CoreSongTable struct {
	Table             string
	ID                string
	SongID            string
	VersionName       string
	Title             string
	Author            string
	TitleOriginal     string
	AuthorOriginal    string
	AlternativeTitles string
	Categories        string
	Parts             string
	AdminChecked      string
	Printed           string
	SearchText        string
	PDFLyricsPath     string
	PDFChordsPath     string
	TexPath           string
	MP3Paths          string
	MIDIPaths         string
	SheetPDFPaths     string
	SheetMsczPaths    string
	CreatedAt         string
	UpdatedAt         string
}

// CoreSong is the schema definition for core.song
var CoreSong = CoreSongTable{
	Table:             "core.song",
	ID:                "id",
	SongID:            "song_id",
	VersionName:       "version_name",
	Title:             "title",
	Author:            "author",
	TitleOriginal:     "title_original",
	AuthorOriginal:    "author_original",
	AlternativeTitles: "alternative_titles",
	Categories:        "categories",
	Parts:             "parts",
	AdminChecked:      "admin_checked",
	Printed:           "printed",
	SearchText:        "search_text",
	PDFLyricsPath:     "pdf_lyrics_path",
	PDFChordsPath:     "pdf_chords_path",
	TexPath:           "tex_path",
	MP3Paths:          "mp3_paths",
	MIDIPaths:         "midi_paths",
	SheetPDFPaths:     "sheet_pdf_paths",
	SheetMsczPaths:    "sheet_mscz_paths",
	CreatedAt:         "created_at",
	UpdatedAt:         "updated_at",
}
