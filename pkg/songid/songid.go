// Copyright (c) 2026 Spevnik. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package songid derives and allocates human-facing song identifiers.

A song identifier is a letter prefix plus a zero-padded three-digit sequence
number, e.g. "A-001". The letter comes from the first character of the
transliterated title; the sequence number is the smallest unused number among
codes already claimed for that letter.

The allocation routine is pure: it operates on a used-number set passed in by
the caller. Transactional isolation around read-then-claim is the storage
layer's responsibility.
*/
package songid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/taibuivan/spevnik/pkg/normtext"
)

// codePattern matches a well-formed identifier: one character prefix, a dash
// and exactly three digits.
var codePattern = regexp.MustCompile(`^(.)-(\d{3})$`)

// Letter returns the identifier prefix for a title: the uppercased first
// character after transliteration and trimming.
//
// An empty or whitespace-only title returns ("", false) — a song cannot be
// assigned an identifier without a title.
func Letter(title string) (string, bool) {
	normalized := strings.TrimSpace(normtext.Transliterate(title))
	if normalized == "" {
		return "", false
	}

	runes := []rune(normalized)
	return strings.ToUpper(string(runes[0])), true
}

// Next returns the smallest positive sequence number absent from used.
//
// Gaps are filled before the maximum is extended: used {1, 3} yields 2,
// used {1, 2, 3} yields 4. Duplicates and non-positive entries are ignored.
func Next(used []int) int {
	taken := make(map[int]bool, len(used))
	for _, n := range used {
		if n > 0 {
			taken[n] = true
		}
	}

	candidate := 1
	for taken[candidate] {
		candidate++
	}
	return candidate
}

// Format renders a letter and sequence number as an identifier string.
func Format(letter string, number int) string {
	return fmt.Sprintf("%s-%03d", letter, number)
}

// Parse splits an identifier into its letter and sequence number.
// It returns ok=false for anything that does not match the LETTER-NNN shape.
func Parse(code string) (letter string, number int, ok bool) {
	match := codePattern.FindStringSubmatch(code)
	if match == nil {
		return "", 0, false
	}

	number, err := strconv.Atoi(match[2])
	if err != nil {
		return "", 0, false
	}

	return match[1], number, true
}

// UsedNumbers extracts the sequence numbers of all codes carrying the given
// letter prefix. Codes with other prefixes or malformed codes are skipped.
func UsedNumbers(letter string, codes []string) []int {
	var used []int
	for _, code := range codes {
		codeLetter, number, ok := Parse(code)
		if ok && codeLetter == letter {
			used = append(used, number)
		}
	}
	return used
}
