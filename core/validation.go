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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Metadata.Level must be a recognized tier
//   - ArticlePart, when set, must be positive
//
// NOT validated:
//   - Geographic fields (required-or-forbidden per tier is a caller concern;
//     the processor stores whatever was supplied)
//   - Article and law fields (absence is a normal no-metadata outcome)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if _, err := ParseLevel(string(chunk.Metadata.Level)); err != nil {
		return fmt.Errorf("%w: %w: %q", ErrInvalidChunk, err, chunk.Metadata.Level)
	}

	if chunk.Metadata.ArticlePart < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidArticlePart)
	}

	return nil
}

// ValidateDocument validates a Document before processing.
//
// Validation rules:
//   - Text must not be empty
//   - Level must be a recognized tier
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	if doc.Text == "" {
		return ErrEmptyText
	}

	if _, err := ParseLevel(string(doc.Level)); err != nil {
		return fmt.Errorf("%w: %q", err, doc.Level)
	}

	return nil
}
