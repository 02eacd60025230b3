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

import "errors"

// Domain validation errors
var (
	// ErrUnknownLevel indicates an unrecognized jurisdiction tier.
	ErrUnknownLevel = errors.New("unknown normative level")

	// ErrEmptyText indicates a document or chunk with no text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidArticlePart indicates a negative article part ordinal.
	ErrInvalidArticlePart = errors.New("article part must be positive")
)
