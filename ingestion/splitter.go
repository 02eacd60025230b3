package ingestion

import "strings"

// Default chunking geometry. An article longer than the nominal size times
// the overflow factor is subdivided instead of kept whole.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	articleOverflowFactor = 1.5
)

// defaultSeparators is the boundary hierarchy for the fallback splitter,
// most preferred first: article headings, paragraph break, line break,
// sentence end, word break, then a hard character cut.
var defaultSeparators = []string{
	"\n\nArt.",
	"\n\nArticolo",
	"\n\n",
	"\n",
	". ",
	" ",
	"",
}

// splitter is the fallback sliding-window splitter used when a document
// has no recognizable article structure, and for subdividing over-long
// articles. It cuts at the most preferred boundary present in the text,
// recursing into less preferred boundaries for fragments still over size,
// then packs fragments into windows no longer than chunkSize with up to
// overlap bytes repeated between consecutive windows.
type splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func newSplitter(chunkSize, overlap int) *splitter {
	return &splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split divides text into chunks of at most chunkSize bytes.
func (s *splitter) Split(text string) []string {
	fragments := s.fragment(text, s.separators)
	return s.pack(fragments)
}

// fragment recursively divides text until every piece fits chunkSize.
// Separators are kept attached to the fragment that follows them, so
// article headings stay at the start of their fragment.
func (s *splitter) fragment(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	sep, rest := s.pickSeparator(text, separators)
	if sep == "" {
		return s.hardCut(text)
	}

	var fragments []string
	for _, piece := range splitKeepingSeparator(text, sep) {
		if len(piece) > s.chunkSize {
			fragments = append(fragments, s.fragment(piece, rest)...)
		} else if piece != "" {
			fragments = append(fragments, piece)
		}
	}
	return fragments
}

// pickSeparator returns the most preferred separator present in text and
// the remaining hierarchy below it.
func (s *splitter) pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// hardCut slices text at fixed size when no boundary is available.
func (s *splitter) hardCut(text string) []string {
	var pieces []string
	for len(text) > s.chunkSize {
		pieces = append(pieces, text[:s.chunkSize])
		text = text[s.chunkSize:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// splitKeepingSeparator splits text on sep, re-attaching each separator to
// the start of the fragment it introduced.
func splitKeepingSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// pack merges fragments into windows of at most chunkSize bytes. When a
// window fills, the trailing fragments of the previous window, up to
// overlap bytes, seed the next window so no boundary loses its context.
func (s *splitter) pack(fragments []string) []string {
	var chunks []string
	var window []string
	windowLen := 0
	fresh := false // window holds content not yet emitted

	flush := func() {
		if windowLen == 0 || !fresh {
			return
		}
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Seed next window with the overlap tail
		var tail []string
		tailLen := 0
		for i := len(window) - 1; i >= 0; i-- {
			if tailLen+len(window[i]) > s.overlap {
				break
			}
			tail = append([]string{window[i]}, tail...)
			tailLen += len(window[i])
		}
		window = tail
		windowLen = tailLen
		fresh = false
	}

	for _, frag := range fragments {
		if windowLen+len(frag) > s.chunkSize {
			flush()
			// Overlap tail plus fragment may still overflow; drop the tail
			if windowLen+len(frag) > s.chunkSize {
				window = nil
				windowLen = 0
			}
		}
		window = append(window, frag)
		windowLen += len(frag)
		fresh = true
	}
	if fresh {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
