// Package ingestion turns raw regulatory documents into indexed chunks.
//
// The processor normalizes text and splits it along article boundaries,
// falling back to a layered sliding-window splitter when a document has no
// recognizable article structure. Article and law-citation metadata is
// recognized with single-pass structural scans rather than patterns. The
// pipeline layers file loading, concurrent directory walks, and per-file
// failure isolation on top, committing chunks through the multi-level
// index router.
package ingestion
