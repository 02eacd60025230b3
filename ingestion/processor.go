// Copyright 2026 Edilaw Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"log/slog"
	"time"

	"github.com/edilaw/normakit/core"
)

// Processor turns raw regulatory documents into article-aligned chunks
// with jurisdiction and legal metadata attached. It never writes to
// storage; geographic fields are stored as supplied and validated by the
// caller that owns tier routing.
type Processor struct {
	chunkSize int
	overlap   int
	now       func() time.Time
	logger    *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor) error

// WithChunkSize sets the nominal chunk size in bytes.
// Default is DefaultChunkSize.
func WithChunkSize(size int) ProcessorOption {
	return func(p *Processor) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithChunkOverlap sets the overlap between consecutive fallback chunks.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) ProcessorOption {
	return func(p *Processor) error {
		if overlap >= 0 {
			p.overlap = overlap
		}
		return nil
	}
}

// WithProcessorLogger sets a custom logger.
// Default is slog.Default().
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// withClock fixes the ingestion timestamp source. Test hook.
func withClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) error {
		p.now = now
		return nil
	}
}

// NewProcessor creates a document processor.
func NewProcessor(opts ...ProcessorOption) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "document-processor")
	return p, nil
}

// Process normalizes a document's text, splits it into article-aligned
// chunks, and attaches metadata to each. Article-aligned splitting needs at
// least two recognizable headings; otherwise the whole document goes
// through the fallback splitter.
func (p *Processor) Process(doc core.Document) ([]core.Chunk, error) {
	if err := core.ValidateDocument(&doc); err != nil {
		return nil, err
	}

	text := Preprocess(doc.Text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	base := core.Metadata{
		Level:         doc.Level,
		Region:        doc.Region,
		Province:      doc.Province,
		Municipality:  doc.Municipality,
		ProcessedDate: p.now().UTC(),
	}

	chunks := p.splitByArticles(text, base)
	if chunks == nil {
		chunks = p.splitFallback(text, base)
		p.logger.Info("document split with fallback windows",
			"source", doc.Source, "chunks", len(chunks))
	} else {
		p.logger.Info("document split by articles",
			"source", doc.Source, "chunks", len(chunks))
	}
	return chunks, nil
}

// splitByArticles cuts the text at article headings, one chunk per
// article. Articles longer than the overflow bound are subdivided with the
// fallback splitter, each piece carrying a 1-based part ordinal. Returns
// nil when fewer than two headings are recognized.
func (p *Processor) splitByArticles(text string, base core.Metadata) []core.Chunk {
	headings := articleHeadings(text)
	if len(headings) < 2 {
		return nil
	}

	overflow := int(float64(p.chunkSize) * articleOverflowFactor)
	split := newSplitter(p.chunkSize, p.overlap)

	var chunks []core.Chunk
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].start
		}
		articleText := trimSpaces(text[h.start:end])
		if articleText == "" {
			continue
		}

		// The heading defines the article; subdivided pieces inherit the
		// whole article's metadata plus their part ordinal.
		meta := base
		meta.Article = h.number
		if lawType, number, year, ok := lawCitation(articleText); ok {
			meta.LawType = lawType
			meta.LawNumber = number
			meta.LawYear = year
		}

		if len(articleText) > overflow {
			for part, piece := range split.Split(articleText) {
				m := meta
				m.ArticlePart = part + 1
				chunks = append(chunks, core.Chunk{Text: piece, Metadata: m})
			}
			continue
		}
		chunks = append(chunks, core.Chunk{Text: articleText, Metadata: meta})
	}
	return chunks
}

// splitFallback windows the whole text with the layered splitter.
func (p *Processor) splitFallback(text string, base core.Metadata) []core.Chunk {
	split := newSplitter(p.chunkSize, p.overlap)
	pieces := split.Split(text)
	chunks := make([]core.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, p.buildChunk(piece, base))
	}
	return chunks
}

// buildChunk attaches per-chunk metadata for fallback windows: the first
// article number found in the text and the first law citation. A missing
// article or citation is normal, not an error.
func (p *Processor) buildChunk(text string, base core.Metadata) core.Chunk {
	meta := base
	meta.Article = firstArticleNumber(text)
	if lawType, number, year, ok := lawCitation(text); ok {
		meta.LawType = lawType
		meta.LawNumber = number
		meta.LawYear = year
	}
	return core.Chunk{Text: text, Metadata: meta}
}

func trimSpaces(s string) string {
	start := 0
	for start < len(s) && s[start] == ' ' {
		start++
	}
	end := len(s)
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}
