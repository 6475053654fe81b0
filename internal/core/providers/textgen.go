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

// Package providers contains the boundary components for external generative
// backends. This file implements the text synthesis adapter on top of the
// rate-limited Gemini wrapper.
//
// Logic Flow:
//  1. Bound the call with the configured provider timeout.
//  2. Apply any per-request overrides (max tokens, temperature) to a copy of
//     the model's generation config.
//  3. Issue exactly one generation request.
//  4. Record token usage counters and return the trimmed text of the first
//     completion; an empty candidate list is a provider failure.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/telemetry"
)

// GeminiTextGenerator is the TextGenerator implementation backed by a Vertex
// AI LLM through the quota-aware wrapper.
type GeminiTextGenerator struct {
	model              *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	timeout            time.Duration                      // Upper bound for one generation call.
	inputTokenCounter  metric.Int64Counter                // OTel counter for prompt tokens.
	outputTokenCounter metric.Int64Counter                // OTel counter for completion tokens.
}

// NewGeminiTextGenerator is the constructor for the text adapter.
//
// Inputs:
//   - name: A logical name for this adapter instance, used in metric names.
//   - model: The rate-limited wrapper for the generative model client.
//   - timeout: The per-call deadline.
//
// Outputs:
//   - *GeminiTextGenerator: The adapter with its telemetry counters initialized.
func NewGeminiTextGenerator(name string, model *cloud.QuotaAwareGenerativeAIModel, timeout time.Duration) *GeminiTextGenerator {
	out := &GeminiTextGenerator{model: model, timeout: timeout}
	meter := otel.Meter(telemetry.MeterNamespace)
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	return out
}

// Generate issues one text completion request and returns the trimmed text of
// the first choice. Quota errors, transport errors, and an empty choice list
// all collapse into a ProviderError.
func (g *GeminiTextGenerator) Generate(ctx context.Context, req TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Copy the model's generation config so per-request overrides never leak
	// into concurrent calls sharing the same wrapper.
	config := *g.model.GenerativeContentConfig
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr[float32](req.Temperature)
	}

	resp, err := g.model.GenerateContentWith(ctx, genai.Text(req.Prompt), &config)
	if err != nil {
		return "", NewProviderError("text", err)
	}
	if resp.UsageMetadata != nil {
		g.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		g.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", NewProviderError("text", errors.New("model returned no completion choices"))
	}

	value := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		value += part.Text
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", NewProviderError("text", errors.New("model returned an empty completion"))
	}
	return value, nil
}
