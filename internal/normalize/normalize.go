// Package normalize provides text normalization for catalog data: display
// cleanup, case-folded search keys, LIKE patterns and genre slugs.
package normalize

import (
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

//nolint:gochecknoglobals // cases.Caser is stateless for Fold and safe to share
var folder = cases.Fold()

// Text trims s, drops control characters (including NUL) and collapses runs
// of whitespace into a single space. Used for names and titles before storage.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// SearchKey returns the case-folded, NFKC-normalized form of s used for
// case-insensitive matching and ordering. "Straße" and "STRASSE" share a key.
func SearchKey(s string) string {
	return folder.String(norm.NFKC.String(Text(s)))
}

// LikeContains returns a LIKE pattern matching any value whose search key
// contains term. Wildcards in term are escaped with a backslash, so the
// query must declare ESCAPE '\'.
func LikeContains(term string) string {
	key := SearchKey(term)
	var b strings.Builder
	b.Grow(len(key) + 2)
	b.WriteByte('%')
	for _, r := range key {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}

// GenreSlug converts a genre name to its canonical slug.
// "Science Fiction", "science-fiction" and "SCIENCE  fiction" all map to
// "science-fiction".
func GenreSlug(name string) string {
	return slug.Make(norm.NFKC.String(Text(name)))
}
