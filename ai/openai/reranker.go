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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edilaw/normakit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker using an OpenAI-compatible chat API.
// The model is asked to select the passages relevant to the query; callers
// fall back to their original ranking when the selection fails.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

// selection is the wrapper structure for the LLM's JSON response.
type selection struct {
	Relevant []int `json:"relevant"`
}

const rerankSystemPrompt = `You are a relevance filter for Italian building and zoning regulations.
Given a query and a numbered list of passages, select the passages that help answer the query.

Output ONLY valid JSON of the form {"relevant": [<passage numbers>]}, most relevant first.
Passage numbers are 1-based. Do not include any preamble, explanation, or markdown.
Select a passage only if it bears on the query; an empty list is a valid answer.`

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.RerankHost),
		openai.WithToken("none"),
		openai.WithModel(config.RerankModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new re-ranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// Rerank asks the model which passages are relevant to the query and
// returns their 0-based indexes, most relevant first.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string) ([]int, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nPassages:\n", query)
	for i, passage := range passages {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, passage)
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(rerankSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(sb.String()),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result selection
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			r.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			r.logger.Debug("no choices returned from model")
			return nil, fmt.Errorf("reranker returned no choices")
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			r.logger.Warn("error parsing reranker response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		r.logger.Error("failed to parse reranker response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Convert 1-based passage numbers, dropping out-of-range values
	indexes := make([]int, 0, len(result.Relevant))
	for _, n := range result.Relevant {
		if n >= 1 && n <= len(passages) {
			indexes = append(indexes, n-1)
		}
	}

	r.logger.Debug("reranked passages", "candidates", len(passages), "selected", len(indexes))
	return indexes, nil
}
