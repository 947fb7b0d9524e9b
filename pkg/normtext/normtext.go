// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normtext canonicalizes song text for substring search.
//
// # Usage
//
// The same normal form is used for the stored search text of a song and for
// incoming search queries, so a query and an index entry built from the same
// conceptual text always compare equal. This symmetry is what makes plain
// substring matching on the precomputed column correct.
package normtext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// chordBracket matches inline chord annotations such as [C], [Am7] or [F#m].
	chordBracket = regexp.MustCompile(`\[[^\]]*\]`)
	// multiSpace collapses runs of whitespace into one space.
	multiSpace = regexp.MustCompile(`\s+`)

	// transliterate decomposes accented characters and drops the combining
	// marks (ľ → l, é → e), yielding a plain ASCII-comparable form.
	transliterate = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// punctuationReplacer maps the exact punctuation set of the search contract to
// spaces. Characters outside this set (e.g. '!', '?') are preserved.
var punctuationReplacer = strings.NewReplacer(
	",", " ",
	".", " ",
	"-", " ",
	"_", " ",
	";", " ",
)

// Normalize converts arbitrary song text into its canonical searchable form.
//
// # Transformation Pipeline
//
// 1. Strips chord annotations ("[C]Aleluja" → "Aleluja"). The bracket token is
// replaced by the empty string, not a space, so a chord in the middle of a
// word does not split it.
// 2. Removes diacritics ("ľúbosť" → "lubost") and lowercases.
// 3. Replaces each of , . - _ ; with a single space.
// 4. Collapses whitespace runs and trims the ends.
//
// Empty input yields an empty string. The function is pure and deterministic.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// 1. Chord annotations contribute nothing to the searchable text.
	result := chordBracket.ReplaceAllString(text, "")

	// 2. Transliterate and lowercase.
	result, _, _ = transform.String(transliterate, result)
	result = strings.ToLower(result)

	// 3. Punctuation-to-space mapping.
	result = punctuationReplacer.Replace(result)

	// 4. Whitespace cleanup.
	result = multiSpace.ReplaceAllString(result, " ")

	return strings.TrimSpace(result)
}

// StripChords removes chord annotations without any further normalization.
// Used where the original casing and accents must survive, e.g. lyric previews.
func StripChords(text string) string {
	return chordBracket.ReplaceAllString(text, "")
}

// Transliterate removes diacritics from text without lowercasing or touching
// punctuation. Song identifier letters are derived from this form.
func Transliterate(text string) string {
	result, _, _ := transform.String(transliterate, text)
	return result
}
