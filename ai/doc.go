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


// Package ai defines the interfaces for the AI capabilities consumed by the
// retrieval core: text embedding and LLM-based relevance re-ranking.
//
// Two implementations are provided:
//   - ai/openai: production services via OpenAI-compatible APIs
//   - ai/mock: test doubles with injectable behavior
//
// The package also ships StaticEmbedder, the degraded mode used when no
// embedding service is available: ingestion and retrieval keep working on
// keyword signal alone.
package ai
