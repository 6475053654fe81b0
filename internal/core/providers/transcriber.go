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
// backends. This file implements the transcription adapter.
//
// Logic Flow:
//  1. Fetch the raw media bytes from the video's hosted URL, bounded by the
//     configured timeout.
//  2. Sniff the MIME type from the leading bytes so the model receives the
//     correct media kind.
//  3. Render the transcription prompt from its template. The prompt embeds a
//     complete example of the expected JSON output (few-shot prompting),
//     which significantly improves the reliability of the model's response.
//  4. Send prompt + inline media in one multi-modal request.
//  5. Strip Markdown fences and unmarshal the JSON into a
//     TranscriptionResult. A response without segments or text is rejected
//     whole; no partial transcripts are accepted.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/h2non/filetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/telemetry"
)

// GeminiTranscriber is the Transcriber implementation backed by a multi-modal
// Gemini model. The media is delivered inline, so this adapter is meant for
// the platform's short-form uploads rather than feature-length files.
type GeminiTranscriber struct {
	model              *cloud.QuotaAwareGenerativeAIModel // The rate-limited multi-modal model client.
	template           *template.Template                 // The Go template for building the transcription prompt.
	httpClient         *http.Client                       // Fetches the media bytes from the hosting service.
	timeout            time.Duration                      // Upper bound for fetch + transcription together.
	inputTokenCounter  metric.Int64Counter                // OTel counter for prompt tokens.
	outputTokenCounter metric.Int64Counter                // OTel counter for response tokens.
}

// NewGeminiTranscriber is the constructor for the transcription adapter.
//
// Inputs:
//   - name: A logical name for this adapter instance, used in metric names.
//   - model: The rate-limited wrapper for the multi-modal model client.
//   - promptTemplate: The raw template text from configuration.
//   - timeout: The per-call deadline covering both the media fetch and the model call.
//
// Outputs:
//   - *GeminiTranscriber: The adapter with its telemetry counters initialized.
//   - error: An error if the prompt template fails to parse.
func NewGeminiTranscriber(name string, model *cloud.QuotaAwareGenerativeAIModel, promptTemplate string, timeout time.Duration) (*GeminiTranscriber, error) {
	tmpl, err := template.New(name).Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription prompt template: %w", err)
	}
	out := &GeminiTranscriber{
		model:      model,
		template:   tmpl,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
	meter := otel.Meter(telemetry.MeterNamespace)
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	return out, nil
}

// Transcribe fetches the media and runs one transcription request. Any
// network, decode, or backend error collapses into a single ProviderError.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, mediaURL string) (*model.TranscriptionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	data, mimeType, err := t.fetchMedia(ctx, mediaURL)
	if err != nil {
		return nil, NewProviderError("transcription", err)
	}

	var buffer bytes.Buffer
	exampleJSON, _ := json.Marshal(model.GetExampleTranscript())
	params := map[string]interface{}{"EXAMPLE_JSON": string(exampleJSON)}
	if err := t.template.Execute(&buffer, params); err != nil {
		return nil, NewProviderError("transcription", fmt.Errorf("failed to execute prompt template: %w", err))
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buffer.String()},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	resp, err := t.model.GenerateContent(ctx, contents)
	if err != nil {
		return nil, NewProviderError("transcription", err)
	}
	if resp.UsageMetadata != nil {
		t.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		t.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	raw := cloud.ResponseText(resp)
	result := &model.TranscriptionResult{}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, NewProviderError("transcription", fmt.Errorf("failed to decode transcript JSON: %w", err))
	}
	// A transcript without text or segments is useless downstream; reject the
	// whole response rather than persist a partial result.
	if result.FullText == "" || len(result.Segments) == 0 {
		return nil, NewProviderError("transcription", errors.New("model returned an empty or partial transcript"))
	}
	if result.Language == "" {
		result.Language = "en"
	}
	return result, nil
}

// fetchMedia downloads the media bytes and sniffs their MIME type. The
// hosting service serves public video URLs, so no credentials are attached.
func (t *GeminiTranscriber) fetchMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid media url %q: %w", mediaURL, err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media body: %w", err)
	}

	mimeType := "video/mp4"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mimeType = kind.MIME.Value
	}
	return data, mimeType, nil
}
