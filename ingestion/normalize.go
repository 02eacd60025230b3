package ingestion

import (
	"strings"
	"unicode"
)

// Preprocess normalizes raw regulatory text for chunking: embedded NUL
// bytes are dropped, runs of whitespace collapse to a single space, and the
// abbreviation "art." (any case) is expanded to "Articolo " so article
// headings take a single canonical form. Collapsing whitespace also
// normalizes comma spacing as a side effect.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		if r == 0 {
			continue
		}
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	return expandArticleAbbrev(b.String())
}

// expandArticleAbbrev rewrites every standalone "art." token (any case),
// plus any spaces after it, as "Articolo ". Occurrences inside a longer
// word, like "parte.", are left alone.
func expandArticleAbbrev(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		if atTokenStart(s, i) && hasFoldPrefix(s[i:], "art.") {
			b.WriteString("Articolo ")
			i += len("art.")
			for i < len(s) && s[i] == ' ' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// atTokenStart reports whether position i is not preceded by a letter.
func atTokenStart(s string, i int) bool {
	return i == 0 || !isASCIILetter(s[i-1])
}

// hasFoldPrefix reports whether s starts with prefix, ASCII case-insensitively.
func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
