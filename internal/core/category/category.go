// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category defines the fixed catalogue of liturgical song categories.

Categories are free-form labels on a song record; this package is the single
ordered list the faceted UI iterates over. Membership testing follows the
legacy contract: case-insensitive substring containment against the record's
joined category string, so a stored label and a filter label do not need to
match exactly.
*/
package category

import "strings"

// Catalog is the fixed, ordered list of known categories. Facet counts are
// reported in exactly this order.
var Catalog = []string{
	"stále omšové spevy",
	"úvod",
	"medzispevy (žalmy; aleluja)",
	"obetovanie",
	"prijímanie",
	"poďakovanie po prijímaní",
	"záver",
	"adorácia",
	"advent",
	"vianoce",
	"pôst",
	"veľká noc",
	"cez rok",
	"k Duchu Svätému",
	"mariánske",
	"k svätcom",
	"detské",
	"iné",
	"liturgia hodín",
	"sobášne",
	"Taizé",
	"krížová cesta",
	"nevhodné",
}

// Separator joins a record's category labels into its stored category string.
// Legacy records used the same token, so substring matching stays compatible.
const Separator = ";;"

// Join renders a label set as the stored category string.
func Join(labels []string) string {
	return strings.Join(labels, Separator)
}

// Matches reports whether the filter label is contained in the joined
// category string, ignoring case. An unknown or empty label simply matches
// nothing; it is never an error.
func Matches(joined, label string) bool {
	if label == "" {
		return false
	}
	return strings.Contains(strings.ToLower(joined), strings.ToLower(label))
}
