// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package song

import (
	"encoding/json"
	"strings"

	"github.com/taibuivan/spevnik/pkg/normtext"
)

// # Search Index Maintenance

// BuildSearchText computes the denormalized search text of a song: every
// textual attribute normalized and concatenated in a fixed order.
//
// # Order
//
// Title, version name, author, original title, original author, each
// alternative title in stored order, then every line of every lyrics part in
// order. Empty attributes contribute nothing. The result has no leading,
// trailing, or doubled spaces.
//
// The caller persists the result atomically with the textual change that
// triggered it; search text is never recomputed lazily at query time.
func BuildSearchText(s *Song) string {
	pieces := make([]string, 0, 8+len(s.AlternativeTitles))

	pieces = append(pieces,
		normtext.Normalize(s.Title),
		normtext.Normalize(s.VersionName),
		normtext.Normalize(s.Author),
		normtext.Normalize(s.TitleOriginal),
		normtext.Normalize(s.AuthorOriginal),
	)

	for _, alternative := range s.AlternativeTitles {
		pieces = append(pieces, normtext.Normalize(alternative))
	}

	for _, part := range s.Parts {
		for _, line := range part.Lines {
			pieces = append(pieces, normtext.Normalize(line))
		}
	}

	nonEmpty := pieces[:0]
	for _, piece := range pieces {
		if piece != "" {
			nonEmpty = append(nonEmpty, piece)
		}
	}

	return strings.Join(nonEmpty, " ")
}

// DecodeParts parses a stored lyrics body.
//
// Corrupt or unexpectedly shaped JSON degrades to "no lyrics parts" — the
// record still indexes and previews from its remaining attributes. Bad data
// from an external writer must never make a song unreadable.
func DecodeParts(raw []byte) []Part {
	if len(raw) == 0 {
		return nil
	}

	var parts []Part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil
	}
	return parts
}

// EncodeParts renders a lyrics body for storage. A nil body is stored as an
// empty array so legacy readers never see SQL NULL.
func EncodeParts(parts []Part) []byte {
	if parts == nil {
		parts = []Part{}
	}

	raw, err := json.Marshal(parts)
	if err != nil {
		// Part holds only strings and slices; marshaling cannot fail.
		return []byte("[]")
	}
	return raw
}
