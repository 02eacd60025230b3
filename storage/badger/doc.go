// Package badger provides a BadgerDB-backed implementation of
// storage.Backend. Records are serialized with MUS and stored under
// per-collection key prefixes, so any number of collections share one
// database directory. Similarity queries are exact cosine scans over a
// collection's prefix.
package badger
