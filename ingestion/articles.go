package ingestion

// heading marks one recognized article heading: the byte offset where the
// heading token starts and the article number that follows it.
type heading struct {
	start  int
	number string
}

// articleHeadings scans text for article headings: a standalone "Art" or
// "Articolo" token (any case, optionally followed by a period) with a
// number after it. The scan is structural, not pattern-matched, so it makes
// a single pass over the bytes.
func articleHeadings(text string) []heading {
	var headings []heading

	for i := 0; i < len(text); i++ {
		if !atTokenStart(text, i) {
			continue
		}
		tokenLen := articleTokenLen(text[i:])
		if tokenLen == 0 {
			continue
		}

		// Skip an optional period and the spaces before the number
		j := i + tokenLen
		if j < len(text) && text[j] == '.' {
			j++
		}
		for j < len(text) && text[j] == ' ' {
			j++
		}

		numStart := j
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j == numStart {
			continue // no number, not a heading
		}

		headings = append(headings, heading{start: i, number: text[numStart:j]})
		i = j - 1
	}
	return headings
}

// articleTokenLen returns the length of the "Articolo" or "Art" token at
// the start of s, or 0 when s starts with neither. The longer form is
// checked first so "Articolo" is never read as "Art" + trailing letters.
func articleTokenLen(s string) int {
	if hasFoldPrefix(s, "articolo") && wordEndsAt(s, len("articolo")) {
		return len("articolo")
	}
	if hasFoldPrefix(s, "art") && wordEndsAt(s, len("art")) {
		return len("art")
	}
	return 0
}

// wordEndsAt reports whether the letter run in s ends at position i.
func wordEndsAt(s string, i int) bool {
	return i >= len(s) || !isASCIILetter(s[i])
}

// lawTypes are the recognized citation introducers, dotted forms first so
// they win over their undotted prefixes. Values are the canonical stored
// law type.
var lawTypes = []struct {
	token     string
	canonical string
}{
	{"legge regionale", "Legge Regionale"},
	{"l.r.", "LR"},
	{"lr", "LR"},
	{"d.p.r.", "DPR"},
	{"dpr", "DPR"},
	{"decreto", "Decreto"},
}

// lawCitation finds the first law citation in text: a recognized law type
// followed by a number and a four-digit year, separated by a slash or
// whitespace, with an optional "n." between type and number. Returns the
// canonical law type, number, and year. ok is false when no citation is
// present, which is a normal outcome for most chunks.
func lawCitation(text string) (lawType, number, year string, ok bool) {
	for i := 0; i < len(text); i++ {
		if !atTokenStart(text, i) {
			continue
		}
		for _, lt := range lawTypes {
			if !hasFoldPrefix(text[i:], lt.token) {
				continue
			}
			end := i + len(lt.token)
			if isASCIILetter(lastByteOf(lt.token)) && !wordEndsAt(text, end) {
				continue // "lr" inside a longer word
			}
			if num, yr, found := citationNumbers(text[end:]); found {
				return lt.canonical, num, yr, true
			}
		}
	}
	return "", "", "", false
}

func lastByteOf(s string) byte {
	return s[len(s)-1]
}

// citationNumbers parses " n. <number>/<year>" (slash or spaces between
// number and year, "n." optional) from the text immediately after a law
// type token.
func citationNumbers(s string) (number, year string, ok bool) {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	// Optional "n" or "n." prefix
	if i < len(s) && (s[i] == 'n' || s[i] == 'N') && wordEndsAt(s, i+1) {
		i++
		if i < len(s) && s[i] == '.' {
			i++
		}
		for i < len(s) && s[i] == ' ' {
			i++
		}
	}

	numStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == numStart {
		return "", "", false
	}
	number = s[numStart:i]

	sep := false
	for i < len(s) && (s[i] == '/' || s[i] == ' ') {
		sep = true
		i++
	}
	if !sep {
		return "", "", false
	}

	yearStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i-yearStart != 4 {
		return "", "", false
	}
	return number, s[yearStart:i], true
}

// firstArticleNumber returns the number of the first article heading in
// text, or "" when none is recognized.
func firstArticleNumber(text string) string {
	if h := articleHeadings(text); len(h) > 0 {
		return h[0].number
	}
	return ""
}
