// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package handle normalizes channel handles into their canonical stored form.
//
// # Usage
//
// Handles are the unique, user-chosen identifiers for channels
// (e.g., "ann_codes"). This package handles case folding, accent removal,
// and character sanitization so that "Ann Codes" and "ann_codes" resolve
// to the same stored handle.
package handle

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonHandleChars matches any sequence of characters outside the handle alphabet.
	nonHandleChars = regexp.MustCompile(`[^a-z0-9_]+`)
	// multiUnderscore collapses multiple consecutive underscores into one.
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// Normalize converts an arbitrary Unicode string into a canonical lowercase handle.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces disallowed characters with underscores.
// 5. Collapses multiple underscores and trims leading/trailing underscores.
func Normalize(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(strings.TrimSpace(result))

	// 3. Replace whitespace and special chars with underscores
	result = nonHandleChars.ReplaceAllString(result, "_")

	// 4. Clean up underscore runs
	result = multiUnderscore.ReplaceAllString(result, "_")

	return strings.Trim(result, "_")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
