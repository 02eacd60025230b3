// Package core defines the domain model for normative text retrieval:
// jurisdiction levels, documents, chunks, citations, and the deterministic
// identifiers used by the index layer.
package core
