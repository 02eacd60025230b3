package search

import (
	"strconv"
	"strings"

	"github.com/edilaw/normakit/core"
)

// contextSeparator is the horizontal rule between formatted chunks.
const contextSeparator = "\n---\n\n"

// FormatContext renders retrieved chunks as a prompt context block. Each
// chunk is prefixed with a synthesized reference label built from, in
// priority order, its law citation, article number, and geographic
// qualifier; a chunk with none of these is labeled "Documento <ordinal>".
func FormatContext(chunks []core.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		var b strings.Builder
		b.WriteString("[")
		b.WriteString(referenceLabel(&c, i+1))
		b.WriteString("]\n")
		b.WriteString(c.Text)
		b.WriteString("\n")
		parts = append(parts, b.String())
	}
	return strings.Join(parts, contextSeparator)
}

// referenceLabel builds the chunk's normative reference.
func referenceLabel(c *core.Chunk, ordinal int) string {
	var refs []string
	if c.Metadata.HasLaw() {
		refs = append(refs, c.Metadata.LawRef())
	}
	if c.Metadata.Article != "" {
		refs = append(refs, "Art. "+c.Metadata.Article)
	}
	switch {
	case c.Metadata.Level == core.LevelComunale && c.Metadata.Municipality != "":
		refs = append(refs, "Comune di "+c.Metadata.Municipality)
	case c.Metadata.Level == core.LevelRegionale && c.Metadata.Region != "":
		refs = append(refs, "Regione "+c.Metadata.Region)
	}
	if len(refs) == 0 {
		return "Documento " + strconv.Itoa(ordinal)
	}
	return strings.Join(refs, " - ")
}

// Citations derives one citation per chunk for presentation.
func Citations(chunks []core.Chunk) []core.Citation {
	citations := make([]core.Citation, len(chunks))
	for i := range chunks {
		citations[i] = core.CitationFromChunk(&chunks[i])
	}
	return citations
}
