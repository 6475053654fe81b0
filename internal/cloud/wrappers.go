// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a wrapper around the standard Generative AI client.
// The wrapper uses the Decorator design pattern to add rate limiting to the
// Generative AI model without altering its code.
//
// Services like Vertex AI have quotas on how many requests you can make per
// minute; the wrapper keeps the application inside those limits. The wrapper
// deliberately performs no retries: a call is a single attempt that either
// succeeds or fails, and the failure is surfaced to the caller, which decides
// what a partial result means for the request as a whole.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a model name, its generation config,
//     and a rate limiter around the shared `genai.Models` handle.
//
// Functions:
//   - NewQuotaAwareModel: A constructor to create a new instance of the wrapped model.
//   - GenerateContent: The rate-limited call into the model.
//   - ResponseText: Collects the text parts of a response into one string.
package cloud

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel is a decorator struct that pairs a configured
// generative model with a rate limiter. All provider adapters go through this
// wrapper so that fan-out requests cannot blow through the project quota.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation parameters applied to every call.
	ModelName               string                       // The Vertex AI model identifier.
	ModelHandle             *genai.Models                // The shared handle into the GenAI model collection.
	RateLimit               *rate.Limiter                // Controls request frequency across concurrent callers.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel. It takes the generation config, the model name,
// the shared model handle, and a rate limit in requests per second.
//
// Inputs:
//   - wrapped: The *genai.GenerateContentConfig applied to every request.
//   - name: The Vertex AI model identifier.
//   - handle: The shared *genai.Models collection from the GenAI client.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             handle,
		// Allows a burst of `requestsPerSecond` events and replenishes the
		// token bucket once per second.
		RateLimit: rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent waits for the rate limiter and then issues exactly one
// request to the generative model. The wait honors the caller's context, so
// a cancelled fan-out sibling never holds a quota slot.
//
// Inputs:
//   - ctx: The context for the request, used for cancellation and deadlines.
//   - content: The parts of the multi-modal prompt (text, media, etc.).
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the AI model if successful.
//   - error: The wait or API error. No retries are attempted here.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}

// GenerateContentWith behaves like GenerateContent but applies a per-request
// generation config instead of the wrapper's default. The text adapter uses
// this to honor per-capability output length and randomness overrides while
// still sharing the model's rate limit.
func (q *QuotaAwareGenerativeAIModel) GenerateContentWith(ctx context.Context, content []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, config)
}

// ResponseText concatenates the text parts of every candidate in a response
// into a single string, trimming the Markdown code fences Gemini tends to wrap
// around JSON output.
//
// Inputs:
//   - resp: The response returned by GenerateContent.
//
// Outputs:
//   - string: The concatenated text content of the response.
func ResponseText(resp *genai.GenerateContentResponse) string {
	value := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += part.Text
			}
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value)
}
