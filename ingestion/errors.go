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

import "errors"

var (
	// ErrUnsupportedFormat is returned for source files whose extension is
	// not one of the recognized document formats.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument is returned when a source document contains no text
	// after normalization.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrRouterRequired is returned when a pipeline is built without an
	// index router.
	ErrRouterRequired = errors.New("index router is required")
)
