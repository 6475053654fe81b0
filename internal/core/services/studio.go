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

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
)

// transcriptExcerptLimit bounds the transcript prefix embedded in the
// description prompt so a long video cannot blow up the prompt size.
const transcriptExcerptLimit = 500

// Generation parameters per capability. Social captions run hotter and
// shorter than the long-form description.
const (
	socialMaxTokens      = 150
	socialTemperature    = 0.9
	tagsMaxTokens        = 120
	tagsTemperature      = 0.6
	descriptionMaxTokens = 500
)

// promptParams carries the fields a capability's prompt template may
// reference. Each template uses the subset it needs.
type promptParams struct {
	Title             string
	Description       string
	Platform          string
	Guidance          string
	TranscriptExcerpt string
}

// StudioService implements the five generation capabilities. Each method is a
// stateless request to result transformation over already-validated inputs;
// resolution, authorization, and persistence live in GenerationService.
type StudioService struct {
	transcriber providers.Transcriber
	images      providers.ImageGenerator
	imageStore  providers.ImageStore
	text        providers.TextGenerator

	thumbnailTmpl   *template.Template
	socialTmpl      *template.Template
	tagsTmpl        *template.Template
	descriptionTmpl *template.Template

	platforms map[string]cloud.Platform
}

// NewStudioService is the constructor for the capability operations. The
// prompt template sources come from configuration; a malformed template is a
// startup failure, not a per-request one.
func NewStudioService(
	transcriber providers.Transcriber,
	images providers.ImageGenerator,
	imageStore providers.ImageStore,
	text providers.TextGenerator,
	prompts cloud.PromptTemplates,
	platforms map[string]cloud.Platform,
) (*StudioService, error) {
	thumbnailTmpl, err := template.New("thumbnail").Parse(prompts.ThumbnailPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse thumbnail prompt: %w", err)
	}
	socialTmpl, err := template.New("social").Parse(prompts.SocialPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse social prompt: %w", err)
	}
	tagsTmpl, err := template.New("tags").Parse(prompts.TagsPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse tags prompt: %w", err)
	}
	descriptionTmpl, err := template.New("description").Parse(prompts.DescriptionPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse description prompt: %w", err)
	}
	// The "all" scope expands to the fixed platform set, so every entry must
	// have a configuration section; a gap would otherwise surface at request
	// time as a caption generated with zero-value guidance and stored under
	// an empty map key.
	for _, name := range model.Platforms {
		platform, ok := platforms[name]
		if !ok {
			return nil, fmt.Errorf("social platform %q missing from configuration", name)
		}
		if platform.Name != name {
			return nil, fmt.Errorf("social platform %q configured with mismatched name %q", name, platform.Name)
		}
	}
	return &StudioService{
		transcriber:     transcriber,
		images:          images,
		imageStore:      imageStore,
		text:            text,
		thumbnailTmpl:   thumbnailTmpl,
		socialTmpl:      socialTmpl,
		tagsTmpl:        tagsTmpl,
		descriptionTmpl: descriptionTmpl,
		platforms:       platforms,
	}, nil
}

// Transcribe produces the time-coded captions, flat transcript, and detected
// language for the media file. The segment shape is passed through verbatim
// from the transcription adapter.
func (s *StudioService) Transcribe(ctx context.Context, mediaURL string) (*model.TranscriptionResult, error) {
	return s.transcriber.Transcribe(ctx, mediaURL)
}

// RenderThumbnail generates a thumbnail image for the title and re-hosts it
// into durable storage. A failure at either step fails the operation; no
// half-hosted URL is ever returned.
func (s *StudioService) RenderThumbnail(ctx context.Context, title string) (string, error) {
	prompt, err := renderPrompt(s.thumbnailTmpl, promptParams{Title: title})
	if err != nil {
		return "", err
	}
	stagedURL, err := s.images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return s.imageStore.Rehost(ctx, stagedURL)
}

// CraftSocialCaptions writes one caption per platform in scope. The scope is
// a single platform name or PlatformScopeAll, which expands to the full
// platform set. Per-platform calls run concurrently and all must succeed: a
// single platform's failure fails the whole operation, so no partial caption
// set is ever returned.
func (s *StudioService) CraftSocialCaptions(ctx context.Context, title, description, scope string) (map[string]string, error) {
	targets, err := s.expandScope(scope)
	if err != nil {
		return nil, err
	}

	captions := make(map[string]string, len(targets))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range targets {
		platform := s.platforms[name]
		g.Go(func() error {
			prompt, err := renderPrompt(s.socialTmpl, promptParams{
				Title:       title,
				Description: description,
				Platform:    platform.Name,
				Guidance:    platform.Guidance,
			})
			if err != nil {
				return err
			}
			caption, err := s.text.Generate(ctx, providers.TextRequest{
				Prompt:      prompt,
				MaxTokens:   socialMaxTokens,
				Temperature: socialTemperature,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			captions[platform.Name] = caption
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return captions, nil
}

// GenerateTags produces discovery tags for the video. The model is prompted
// for a comma-separated list; the output is split on commas, each tag
// trimmed, and empty tags dropped. The target count in the prompt is a hint,
// not an enforced bound.
func (s *StudioService) GenerateTags(ctx context.Context, title, description string) ([]string, error) {
	prompt, err := renderPrompt(s.tagsTmpl, promptParams{Title: title, Description: description})
	if err != nil {
		return nil, err
	}
	raw, err := s.text.Generate(ctx, providers.TextRequest{
		Prompt:      prompt,
		MaxTokens:   tagsMaxTokens,
		Temperature: tagsTemperature,
	})
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, 16)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// GenerateDescription writes a long-form description from the title and an
// optional transcript excerpt. The excerpt is truncated before it is embedded
// in the prompt; pass an empty string when no transcript is available.
func (s *StudioService) GenerateDescription(ctx context.Context, title, transcript string) (string, error) {
	excerpt := transcript
	if runes := []rune(excerpt); len(runes) > transcriptExcerptLimit {
		excerpt = string(runes[:transcriptExcerptLimit])
	}
	prompt, err := renderPrompt(s.descriptionTmpl, promptParams{
		Title:             title,
		TranscriptExcerpt: excerpt,
	})
	if err != nil {
		return "", err
	}
	return s.text.Generate(ctx, providers.TextRequest{
		Prompt:    prompt,
		MaxTokens: descriptionMaxTokens,
	})
}

// expandScope resolves the requested platform scope to the list of platform
// names to generate for. The order of the full expansion follows
// model.Platforms so fan-out order is stable across requests.
func (s *StudioService) expandScope(scope string) ([]string, error) {
	if scope == "" || scope == model.PlatformScopeAll {
		return model.Platforms, nil
	}
	if _, ok := s.platforms[scope]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, scope)
	}
	return []string{scope}, nil
}

func renderPrompt(tmpl *template.Template, params promptParams) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, params); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
