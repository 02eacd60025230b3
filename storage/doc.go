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


// Package storage defines the persistent vector-index capability consumed
// by the index layer, its record serialization, and its error taxonomy.
//
// The Backend interface keeps the index implementation swappable: the
// bundled BadgerDB backend (storage/badger) performs an exact similarity
// scan, and a managed ANN service can be substituted behind the same
// interface without touching callers.
package storage
