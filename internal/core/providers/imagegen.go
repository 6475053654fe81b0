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
// backends. This file implements the image synthesis adapter on top of the
// Imagen family of models.
//
// The adapter requests exactly one image per call at the configured aspect
// ratio and directs the model to write its output into a staging bucket.
// The returned URL points at that staged object, which is treated as
// ephemeral: staged objects are expired by a bucket lifecycle rule, so the
// caller must re-host the image through an ImageStore before persisting it.
package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ImagenGenerator is the ImageGenerator implementation backed by Vertex AI
// image synthesis.
type ImagenGenerator struct {
	models        *genai.Models // The shared handle into the GenAI model collection.
	modelName     string        // The Imagen model identifier.
	aspectRatio   string        // Target aspect ratio, "16:9" for video thumbnails.
	stagingBucket string        // GCS bucket the model writes generated images into.
	limiter       *rate.Limiter // Controls request frequency.
	timeout       time.Duration // Upper bound for one generation call.
}

// NewImagenGenerator is the constructor for the image adapter.
//
// Inputs:
//   - models: The *genai.Models collection from the GenAI client.
//   - modelName: The Imagen model identifier.
//   - aspectRatio: The aspect ratio requested from the model.
//   - stagingBucket: The scratch bucket receiving generated images.
//   - requestsPerSecond: The rate limit for generation calls.
//   - timeout: The per-call deadline.
//
// Outputs:
//   - *ImagenGenerator: The configured adapter.
func NewImagenGenerator(models *genai.Models, modelName, aspectRatio, stagingBucket string, requestsPerSecond int, timeout time.Duration) *ImagenGenerator {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &ImagenGenerator{
		models:        models,
		modelName:     modelName,
		aspectRatio:   aspectRatio,
		stagingBucket: stagingBucket,
		limiter:       rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
		timeout:       timeout,
	}
}

// Generate renders one image for the prompt and returns the staged GCS URL.
// Generation errors, an empty image list, and responses filtered by the
// responsible-AI layer all collapse into a single ProviderError.
func (g *ImagenGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.limiter.Wait(ctx); err != nil {
		return "", NewProviderError("image", err)
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      g.aspectRatio,
		IncludeRAIReason: true,
		// Each request stages under its own prefix so concurrent generations
		// never collide on object names.
		OutputGCSURI: fmt.Sprintf("gs://%s/staged/%s/", g.stagingBucket, uuid.NewString()),
	}
	resp, err := g.models.GenerateImages(ctx, g.modelName, prompt, config)
	if err != nil {
		return "", NewProviderError("image", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", NewProviderError("image", errors.New("model returned no images"))
	}
	generated := resp.GeneratedImages[0]
	if generated.RAIFilteredReason != "" {
		return "", NewProviderError("image", fmt.Errorf("image filtered: %s", generated.RAIFilteredReason))
	}
	if generated.Image.GCSURI == "" {
		return "", NewProviderError("image", errors.New("model did not stage the image"))
	}
	return generated.Image.GCSURI, nil
}
