// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spevnik/internal/core/song"
)

/*
TestPreviews verifies verse/chorus preview derivation from lyrics parts.
*/
func TestPreviews(t *testing.T) {
	tests := []struct {
		name           string
		parts          []song.Part
		expectedVerse  string
		expectedChorus string
	}{
		{
			name: "first_part_of_each_kind_wins",
			parts: []song.Part{
				{Type: "sloka", Lines: []string{"Prvá sloka prvý riadok"}},
				{Type: "refren", Lines: []string{"Refrén prvý riadok"}},
				{Type: "sloka", Lines: []string{"Druhá sloka"}},
				{Type: "refren", Lines: []string{"Iný refrén"}},
			},
			expectedVerse:  "Prvá sloka prvý riadok",
			expectedChorus: "Refrén prvý riadok",
		},
		{
			name: "truncates_to_nine_words",
			parts: []song.Part{
				{Type: "verse", Lines: []string{"jeden dva tri štyri päť šesť sedem osem deväť desať jedenásť"}},
			},
			expectedVerse: "jeden dva tri štyri päť šesť sedem osem deväť",
		},
		{
			name: "chord_brackets_stripped",
			parts: []song.Part{
				{Type: "chorus", Lines: []string{"[C]Spievaj [G]Pánovi [Ami]pieseň"}},
			},
			expectedChorus: "Spievaj Pánovi pieseň",
		},
		{
			name: "type_synonyms_and_case",
			parts: []song.Part{
				{Type: "Verse1", Lines: []string{"anglická sloka"}},
				{Type: "Refrén", Lines: []string{"slovenský refrén"}},
			},
			expectedVerse:  "anglická sloka",
			expectedChorus: "slovenský refrén",
		},
		{
			name: "skips_empty_leading_lines",
			parts: []song.Part{
				{Type: "sloka", Lines: []string{"", "   ", "tretí riadok je prvý neprázdny"}},
			},
			expectedVerse: "tretí riadok je prvý neprázdny",
		},
		{
			name: "unknown_part_types_ignored",
			parts: []song.Part{
				{Type: "bridge", Lines: []string{"most"}},
			},
		},
		{
			name: "no_parts",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			versePreview, chorusPreview := song.Previews(testCase.parts)

			assert.Equal(t, testCase.expectedVerse, versePreview)
			assert.Equal(t, testCase.expectedChorus, chorusPreview)
		})
	}
}
