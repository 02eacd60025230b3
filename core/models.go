package core

import (
	"encoding/binary"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// Level identifies a normative jurisdiction tier. Provincial law is stored
// alongside regional law, so there is no separate provincial level.
type Level string

const (
	LevelNazionale Level = "nazionale"
	LevelRegionale Level = "regionale"
	LevelComunale  Level = "comunale"
)

// Levels lists all recognized jurisdiction tiers in descending generality.
var Levels = []Level{LevelNazionale, LevelRegionale, LevelComunale}

// ParseLevel converts a string into a Level.
// Returns ErrUnknownLevel for unrecognized values.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelNazionale, LevelRegionale, LevelComunale:
		return Level(s), nil
	}
	return "", ErrUnknownLevel
}

// HierarchyLevel is the presentation label a chunk is stamped with during
// hierarchical search. Unlike Level it distinguishes provincial results.
type HierarchyLevel string

const (
	HierarchyNazionale   HierarchyLevel = "Nazionale"
	HierarchyRegionale   HierarchyLevel = "Regionale"
	HierarchyProvinciale HierarchyLevel = "Provinciale"
	HierarchyComunale    HierarchyLevel = "Comunale"
)

// NationalScope is the context scope stamped on national-tier results.
const NationalScope = "Italia"

// ID is a unique identifier for indexed records.
// It is generated from chunk content so that re-ingesting the same text
// with the same metadata overwrites rather than duplicates.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a raw regulatory text together with its jurisdiction
// assignment. Immutable once loaded; geographic fields are kept as supplied
// and validated by callers that care.
type Document struct {
	Source       string // file path or logical origin
	Text         string
	Level        Level
	Region       string
	Province     string
	Municipality string
}

// Metadata carries the jurisdiction and legal attributes of a chunk.
// String fields are unset when empty; ArticlePart is unset when zero.
type Metadata struct {
	Level         Level
	Region        string
	Province      string
	Municipality  string
	Article       string // article number as digits, when one leading heading was recognized
	LawType       string
	LawNumber     string
	LawYear       string
	ProcessedDate time.Time
	ArticlePart   int // 1-based ordinal when an over-long article was subdivided

	// Set transiently at search time, never written by ingestion.
	HierarchyLevel HierarchyLevel
	ContextScope   string
	Score          float32
	Scored         bool
}

// HasLaw reports whether a law citation was recognized in the chunk.
func (m *Metadata) HasLaw() bool {
	return m.LawType != "" && m.LawNumber != ""
}

// LawRef renders the law citation as "<type> <number>/<year>".
// Returns "" when no citation is present.
func (m *Metadata) LawRef() string {
	if !m.HasLaw() {
		return ""
	}
	return m.LawType + " " + m.LawNumber + "/" + m.LawYear
}

// Metadata map keys used by the index backend and its filters.
const (
	KeyLevel          = "normative_level"
	KeyRegion         = "region"
	KeyProvince       = "province"
	KeyMunicipality   = "municipality"
	KeyArticle        = "article"
	KeyLawType        = "law_type"
	KeyLawNumber      = "law_number"
	KeyLawYear        = "law_year"
	KeyProcessedDate  = "processed_date"
	KeyArticlePart    = "article_part"
	KeyHierarchyLevel = "hierarchy_level"
	KeyContextScope   = "context_scope"
	KeyScore          = "score"
)

// ToMap flattens the metadata into the string map stored by the index
// backend. Unset fields produce no key.
func (m *Metadata) ToMap() map[string]string {
	out := map[string]string{KeyLevel: string(m.Level)}
	put := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	put(KeyRegion, m.Region)
	put(KeyProvince, m.Province)
	put(KeyMunicipality, m.Municipality)
	put(KeyArticle, m.Article)
	put(KeyLawType, m.LawType)
	put(KeyLawNumber, m.LawNumber)
	put(KeyLawYear, m.LawYear)
	put(KeyHierarchyLevel, string(m.HierarchyLevel))
	put(KeyContextScope, m.ContextScope)
	if !m.ProcessedDate.IsZero() {
		out[KeyProcessedDate] = m.ProcessedDate.UTC().Format(time.RFC3339)
	}
	if m.ArticlePart > 0 {
		out[KeyArticlePart] = strconv.Itoa(m.ArticlePart)
	}
	if m.Scored {
		out[KeyScore] = strconv.FormatFloat(float64(m.Score), 'f', -1, 32)
	}
	return out
}

// MetadataFromMap rebuilds Metadata from the backend's string map.
// Unparseable optional values are ignored rather than failing the read.
func MetadataFromMap(in map[string]string) Metadata {
	m := Metadata{
		Level:          Level(in[KeyLevel]),
		Region:         in[KeyRegion],
		Province:       in[KeyProvince],
		Municipality:   in[KeyMunicipality],
		Article:        in[KeyArticle],
		LawType:        in[KeyLawType],
		LawNumber:      in[KeyLawNumber],
		LawYear:        in[KeyLawYear],
		HierarchyLevel: HierarchyLevel(in[KeyHierarchyLevel]),
		ContextScope:   in[KeyContextScope],
	}
	if v, ok := in[KeyProcessedDate]; ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			m.ProcessedDate = ts
		}
	}
	if v, ok := in[KeyArticlePart]; ok {
		if part, err := strconv.Atoi(v); err == nil {
			m.ArticlePart = part
		}
	}
	if v, ok := in[KeyScore]; ok {
		if score, err := strconv.ParseFloat(v, 32); err == nil {
			m.Score = float32(score)
			m.Scored = true
		}
	}
	return m
}

// Chunk is the retrievable unit: a span of regulatory text plus its
// jurisdiction metadata. Created once at ingestion time and never mutated.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// RecordID generates the deterministic index identifier for a chunk.
// The hash covers the text and the identity-bearing metadata so that the
// same article ingested for two municipalities yields distinct records.
func (c *Chunk) RecordID() ID {
	key := c.Text +
		"|" + string(c.Metadata.Level) +
		"|" + c.Metadata.Region +
		"|" + c.Metadata.Province +
		"|" + c.Metadata.Municipality +
		"|" + strconv.Itoa(c.Metadata.ArticlePart)
	return IDFromContent(key)
}

// ScoredChunk pairs a chunk with its similarity score during ranking.
// The score is ephemeral and not persisted.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// citationPreviewLen bounds the text preview attached to a citation.
const citationPreviewLen = 200

// Citation is a read-only projection of a chunk's metadata for
// presentation: jurisdiction level, law reference, article, geographic
// scope, and a short text preview.
type Citation struct {
	Level        Level
	Law          string
	Article      string
	Municipality string
	Region       string
	Text         string
}

// CitationFromChunk derives a citation from a chunk.
// Municipality wins over region when both are present.
func CitationFromChunk(c *Chunk) Citation {
	cit := Citation{
		Level:   c.Metadata.Level,
		Law:     c.Metadata.LawRef(),
		Article: c.Metadata.Article,
		Text:    preview(c.Text),
	}
	if c.Metadata.Municipality != "" {
		cit.Municipality = c.Metadata.Municipality
	} else if c.Metadata.Region != "" {
		cit.Region = c.Metadata.Region
	}
	return cit
}

func preview(text string) string {
	if len(text) <= citationPreviewLen {
		return text
	}
	// Back up to a rune boundary so accented text is never cut mid-rune
	cut := citationPreviewLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
