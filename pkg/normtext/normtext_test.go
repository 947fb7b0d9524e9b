// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package normtext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spevnik/pkg/normtext"
)

/*
TestNormalize covers the canonical transformation pipeline.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain_lowercase", "aleluja", "aleluja"},
		{"uppercase", "ALELUJA", "aleluja"},
		{"chord_stripping", "Hello [C]World [Am7]", "hello world"},
		{"chord_inside_word", "Ale[G]luja", "aleluja"},
		{"diacritics", "Dobrý deň, ľúbosť", "dobry den lubost"},
		{"exclamation_preserved", "Dobrý deň, ľúbosť!", "dobry den lubost!"},
		{"punctuation_set", "a,b.c-d_e;f", "a b c d e f"},
		{"question_mark_preserved", "kto je?", "kto je?"},
		{"whitespace_collapse", "  veľa    medzier \t tu  ", "vela medzier tu"},
		{"trailing_chord", "Pane [G]", "pane"},
		{"only_chords", "[C][Am][F]", ""},
		{"mixed", "Ó, [D]Pane môj - príď!", "o pane moj prid!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normtext.Normalize(tt.input))
		})
	}
}

/*
TestNormalize_Idempotent verifies that canonical output is a fixed point.
*/
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Dobrý deň, ľúbosť!",
		"Hello [C]World",
		"  A - B _ C  ",
		"už normalizované slová",
	}

	for _, input := range inputs {
		once := normtext.Normalize(input)
		assert.Equal(t, once, normtext.Normalize(once), "input %q", input)
	}
}

/*
TestNormalize_NoGapFromChordRemoval verifies that removing a bracket token does
not inject a word boundary, while real spaces stay significant.
*/
func TestNormalize_NoGapFromChordRemoval(t *testing.T) {
	assert.Equal(t, "aleluja pane", normtext.Normalize("[C]Aleluja [G]Pane"))
	assert.Equal(t, "aleluja", normtext.Normalize("Ale[C]lu[G]ja"))
}

func TestStripChords(t *testing.T) {
	assert.Equal(t, "Aleluja Pane", normtext.StripChords("[C]Aleluja [G]Pane"))
	assert.Equal(t, "Dobrý deň", normtext.StripChords("Dobrý deň"))
	assert.Equal(t, "", normtext.StripChords("[C]"))
}

func TestTransliterate(t *testing.T) {
	assert.Equal(t, "Lubost", normtext.Transliterate("Ľúbosť"))
	assert.Equal(t, "Citara", normtext.Transliterate("Čitara"))
	assert.Equal(t, "7 divov", normtext.Transliterate("7 divov"))
}
