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

package search

import "errors"

var (
	// ErrRouterRequired is returned when a retriever is built without an
	// index router.
	ErrRouterRequired = errors.New("index router is required")

	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrUnknownTier is returned when an explicit tier name is not one of
	// nazionale, regionale, provinciale, comunale.
	ErrUnknownTier = errors.New("unknown normative tier")
)
