// Package index manages the per-tier vector collections for normative
// documents. A LevelIndex owns one jurisdiction tier's collection, handling
// batched embedding, commits, scoped search, and maintenance; MultiLevel
// routes documents and queries across all tiers and runs hierarchical
// searches that fan out over the tiers concurrently.
//
// National, regional, and communal law live in separate collections.
// Provincial documents are stored in the regional collection and reached
// through a province metadata filter, so a missing provincial corpus never
// leaves a hole in the hierarchy.
package index
