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

// Package providers contains the boundary components that normalize each
// external generative backend's request/response shape and failure mode.
// This file defines the capability-tagged adapter interfaces consumed by the
// generation services. The capability set is fixed and small (transcription,
// image synthesis, text synthesis, durable image hosting), so there is one
// implementation per interface rather than an open-ended plugin registry.
//
// Contract shared by all adapters: a call is exactly one attempt against the
// backend, bounded by the configured timeout. Adapters never retry; retry
// policy, if any, belongs to the caller.
package providers

import (
	"context"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// Transcriber converts a media file, addressed by URL, into time-coded
// captions, a flat transcript, and a detected language.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (*model.TranscriptionResult, error)
}

// ImageGenerator renders exactly one image for a prompt and returns the
// provider-hosted URL. Provider URLs may be ephemeral; callers must re-host
// the image through an ImageStore before treating it as durable.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageStore re-hosts an arbitrary source URL and returns a permanent,
// publicly servable URL.
type ImageStore interface {
	Rehost(ctx context.Context, sourceURL string) (string, error)
}

// TextRequest is the structured input for one text generation call. MaxTokens
// and Temperature override the model defaults when non-zero; the system
// instructions remain those of the configured model.
type TextRequest struct {
	Prompt      string  // The fully rendered user prompt.
	MaxTokens   int32   // Optional cap on the completion length.
	Temperature float32 // Optional randomness override.
}

// TextGenerator produces trimmed free text from the first completion choice
// for a structured prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (string, error)
}
