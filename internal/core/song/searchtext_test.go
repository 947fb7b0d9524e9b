// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spevnik/internal/core/song"
)

/*
TestBuildSearchText verifies the fixed attribute order and normalization of
the denormalized search column.
*/
func TestBuildSearchText(t *testing.T) {
	record := &song.Song{
		Title:             "Aleluja, chváľme Pána",
		VersionName:       "mládežnícka",
		Author:            "Ján Novák",
		TitleOriginal:     "Alleluia",
		AlternativeTitles: []string{"Chváľme Pána"},
		Parts: []song.Part{
			{Type: "sloka", Lines: []string{"[C]Pane, Ty si [G]môj"}},
			{Type: "refren", Lines: []string{"Aleluja, aleluja"}},
		},
	}

	searchText := song.BuildSearchText(record)

	assert.Equal(t,
		"aleluja chvalme pana mladeznicka jan novak alleluia chvalme pana pane ty si moj aleluja aleluja",
		searchText,
	)
}

/*
TestBuildSearchText_SkipsEmptyAttributes verifies that absent attributes do
not produce doubled spaces.
*/
func TestBuildSearchText_SkipsEmptyAttributes(t *testing.T) {
	record := &song.Song{Title: "Tichá noc"}

	assert.Equal(t, "ticha noc", song.BuildSearchText(record))
}

/*
TestBuildSearchText_QuerySymmetry verifies that a normalized query is a
substring of the search text built from the matching source text.
*/
func TestBuildSearchText_QuerySymmetry(t *testing.T) {
	record := &song.Song{
		Title: "Príď, Duchu Svätý",
		Parts: []song.Part{{Type: "verse", Lines: []string{"Príď k nám, ó Duchu"}}},
	}

	searchText := song.BuildSearchText(record)

	assert.Contains(t, searchText, "duchu svaty")
	assert.Contains(t, searchText, "prid k nam")
}

/*
TestDecodeParts verifies tolerant parsing of stored lyrics bodies.
*/
func TestDecodeParts(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []song.Part
	}{
		{
			name:     "valid_parts",
			raw:      `[{"type":"sloka","lines":["prvý riadok","druhý riadok"]}]`,
			expected: []song.Part{{Type: "sloka", Lines: []string{"prvý riadok", "druhý riadok"}}},
		},
		{
			name:     "empty_input",
			raw:      "",
			expected: nil,
		},
		{
			name:     "corrupt_json_degrades_to_nil",
			raw:      `{"type": "sloka`,
			expected: nil,
		},
		{
			name:     "wrong_shape_degrades_to_nil",
			raw:      `{"not":"an array"}`,
			expected: nil,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, song.DecodeParts([]byte(testCase.raw)))
		})
	}
}

/*
TestEncodeParts_NilBecomesEmptyArray verifies that nil lyrics never serialize
to SQL NULL.
*/
func TestEncodeParts_NilBecomesEmptyArray(t *testing.T) {
	assert.Equal(t, "[]", string(song.EncodeParts(nil)))
}
