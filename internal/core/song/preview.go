// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	"strings"

	"github.com/taibuivan/spevnik/pkg/normtext"
)

// # Lyric Previews

// previewWordCount is how many leading words of a part's first line appear in
// search result previews.
const previewWordCount = 9

// Part type tags recognised as verses and choruses. The catalogue carries a
// mix of Slovak and English tags from different eras of data entry.
var (
	verseTypes = map[string]bool{
		"sloka":  true,
		"verse":  true,
		"verse1": true,
		"verš":   true,
	}
	chorusTypes = map[string]bool{
		"refren": true,
		"chorus": true,
		"refrén": true,
	}
)

// Previews derives the verse and chorus preview strings for a result row.
//
// For each of the two part kinds, the first part of that kind wins: its first
// non-empty line, chord brackets stripped, truncated to the leading
// [previewWordCount] words. Later parts of a kind already previewed are
// skipped. A song without a matching part yields an empty preview.
func Previews(parts []Part) (versePreview, chorusPreview string) {
	for _, part := range parts {
		kind := strings.ToLower(part.Type)

		switch {
		case verseTypes[kind] && versePreview == "":
			versePreview = previewLine(part.Lines)
		case chorusTypes[kind] && chorusPreview == "":
			chorusPreview = previewLine(part.Lines)
		}

		if versePreview != "" && chorusPreview != "" {
			break
		}
	}
	return versePreview, chorusPreview
}

// previewLine extracts the preview words from the first non-empty line.
func previewLine(lines []string) string {
	for _, line := range lines {
		clean := strings.TrimSpace(normtext.StripChords(line))
		if clean == "" {
			continue
		}

		words := strings.Fields(clean)
		if len(words) > previewWordCount {
			words = words[:previewWordCount]
		}
		return strings.Join(words, " ")
	}
	return ""
}
