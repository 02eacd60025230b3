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

package index

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendRequired is returned when a nil storage backend is supplied.
	ErrBackendRequired = errors.New("storage backend is required")

	// ErrLevelMismatch is returned when a chunk's metadata level does not
	// match the index it was submitted to.
	ErrLevelMismatch = errors.New("chunk level does not match index level")

	// ErrEmptyQuery is returned for a blank search query.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrEmbeddingCountMismatch is returned when the embedder produces a
	// different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedder returned wrong number of vectors")

	// ErrRouterClosed is returned when operations are attempted on a
	// closed router.
	ErrRouterClosed = errors.New("router is closed")
)

// BatchError reports a failure while committing one batch of an indexing
// run. Batch is the zero-based batch ordinal; chunks in earlier batches
// were committed and remain in the index.
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("indexing batch %d failed: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
