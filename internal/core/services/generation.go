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
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/telemetry"
)

// Capability names a generation operation in completion events, metrics, and
// logs.
const (
	CapabilityCaptions       = "captions"
	CapabilityThumbnail      = "thumbnail"
	CapabilitySocialCaptions = "social-captions"
	CapabilityTags           = "tags"
	CapabilityDescription    = "description"
)

// Capabilities lists every generation capability, in fan-out order.
var Capabilities = []string{
	CapabilityCaptions,
	CapabilityThumbnail,
	CapabilitySocialCaptions,
	CapabilityTags,
	CapabilityDescription,
}

// GenerationService is the orchestrator. Every request moves through the same
// stages: resolve the video, check ownership, run one or all capabilities,
// then commit the produced fields in a single partial update. Validation and
// ownership failures short-circuit before any provider call, and a provider
// failure aborts the request without touching the store.
type GenerationService struct {
	store     VideoStore
	studio    *StudioService
	publisher *cloud.GenerationPublisher

	successCounters map[string]metric.Int64Counter // Per-capability commit counters.
	errorCounters   map[string]metric.Int64Counter // Per-capability provider failure counters.
}

// NewGenerationService is the constructor for the orchestrator. The publisher
// may be nil, in which case no completion events are emitted. Each capability
// gets a success and an error counter so generation health is visible per
// capability, not just in aggregate.
func NewGenerationService(store VideoStore, studio *StudioService, publisher *cloud.GenerationPublisher) *GenerationService {
	g := &GenerationService{
		store:           store,
		studio:          studio,
		publisher:       publisher,
		successCounters: make(map[string]metric.Int64Counter, len(Capabilities)),
		errorCounters:   make(map[string]metric.Int64Counter, len(Capabilities)),
	}
	meter := otel.Meter(telemetry.MeterNamespace)
	for _, capability := range Capabilities {
		g.successCounters[capability], _ = meter.Int64Counter(fmt.Sprintf("generation.%s.counter.success", capability))
		g.errorCounters[capability], _ = meter.Int64Counter(fmt.Sprintf("generation.%s.counter.error", capability))
	}
	return g
}

// run executes one capability's work function and keeps its error counter
// honest: a provider failure is recorded against the capability that failed,
// which in all mode attributes the failure even though only the first error
// propagates.
func (g *GenerationService) run(ctx context.Context, capability string, work func() error) error {
	if err := work(); err != nil {
		g.errorCounters[capability].Add(ctx, 1)
		return err
	}
	return nil
}

// GenerateCaptions transcribes the video and commits captions, transcript,
// and detected language.
func (g *GenerationService) GenerateCaptions(ctx context.Context, requester, videoID string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}
	result, err := g.studio.Transcribe(ctx, video.VideoFile)
	if err != nil {
		g.errorCounters[CapabilityCaptions].Add(ctx, 1)
		return nil, err
	}
	return g.commit(ctx, video.ID, bson.M{
		"captions":   result.Segments,
		"transcript": result.FullText,
		"language":   result.Language,
	}, CapabilityCaptions)
}

// GenerateThumbnail renders a thumbnail for the video title and commits its
// durable URL.
func (g *GenerationService) GenerateThumbnail(ctx context.Context, requester, videoID string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}
	url, err := g.studio.RenderThumbnail(ctx, video.Title)
	if err != nil {
		g.errorCounters[CapabilityThumbnail].Add(ctx, 1)
		return nil, err
	}
	return g.commit(ctx, video.ID, bson.M{"aiGeneratedThumbnail": url}, CapabilityThumbnail)
}

// GenerateSocialCaptions writes captions for the platforms in scope and
// commits the whole mapping. The scope defaults to all platforms.
func (g *GenerationService) GenerateSocialCaptions(ctx context.Context, requester, videoID, scope string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}
	captions, err := g.studio.CraftSocialCaptions(ctx, video.Title, video.Description, scope)
	if err != nil {
		g.errorCounters[CapabilitySocialCaptions].Add(ctx, 1)
		return nil, err
	}
	return g.commit(ctx, video.ID, bson.M{"socialMediaCaptions": captions}, CapabilitySocialCaptions)
}

// GenerateTags produces discovery tags and commits the full replacement list.
// Regeneration overwrites; tag lists from successive calls are never merged.
func (g *GenerationService) GenerateTags(ctx context.Context, requester, videoID string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}
	tags, err := g.studio.GenerateTags(ctx, video.Title, video.Description)
	if err != nil {
		g.errorCounters[CapabilityTags].Add(ctx, 1)
		return nil, err
	}
	return g.commit(ctx, video.ID, bson.M{"tags": tags}, CapabilityTags)
}

// GenerateDescription writes a long-form description and commits it. When the
// video already has a transcript, an excerpt of it seeds the prompt.
func (g *GenerationService) GenerateDescription(ctx context.Context, requester, videoID string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}
	description, err := g.studio.GenerateDescription(ctx, video.Title, video.Transcript)
	if err != nil {
		g.errorCounters[CapabilityDescription].Add(ctx, 1)
		return nil, err
	}
	return g.commit(ctx, video.ID, bson.M{"aiGeneratedDescription": description}, CapabilityDescription)
}

// GenerateAll runs all five capabilities concurrently and commits their
// results in one update. The contract is all-or-nothing: the first failure
// cancels the in-flight siblings and nothing is persisted, not even the
// results of capabilities that finished before the failure.
//
// The capabilities are independent within the request. In particular the
// description is generated from the title alone, because the transcript being
// produced in parallel is not visible to it.
func (g *GenerationService) GenerateAll(ctx context.Context, requester, videoID string) (*model.Video, error) {
	video, err := g.resolveOwned(ctx, requester, videoID)
	if err != nil {
		return nil, err
	}

	var (
		transcription *model.TranscriptionResult
		thumbnailURL  string
		socials       map[string]string
		tags          []string
		description   string
	)
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return g.run(gctx, CapabilityCaptions, func() (err error) {
			transcription, err = g.studio.Transcribe(gctx, video.VideoFile)
			return err
		})
	})
	grp.Go(func() error {
		return g.run(gctx, CapabilityThumbnail, func() (err error) {
			thumbnailURL, err = g.studio.RenderThumbnail(gctx, video.Title)
			return err
		})
	})
	grp.Go(func() error {
		return g.run(gctx, CapabilitySocialCaptions, func() (err error) {
			socials, err = g.studio.CraftSocialCaptions(gctx, video.Title, video.Description, model.PlatformScopeAll)
			return err
		})
	})
	grp.Go(func() error {
		return g.run(gctx, CapabilityTags, func() (err error) {
			tags, err = g.studio.GenerateTags(gctx, video.Title, video.Description)
			return err
		})
	})
	grp.Go(func() error {
		return g.run(gctx, CapabilityDescription, func() (err error) {
			description, err = g.studio.GenerateDescription(gctx, video.Title, "")
			return err
		})
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return g.commit(ctx, video.ID, bson.M{
		"captions":               transcription.Segments,
		"transcript":             transcription.FullText,
		"language":               transcription.Language,
		"aiGeneratedThumbnail":   thumbnailURL,
		"socialMediaCaptions":    socials,
		"tags":                   tags,
		"aiGeneratedDescription": description,
	}, CapabilityCaptions, CapabilityThumbnail, CapabilitySocialCaptions, CapabilityTags, CapabilityDescription)
}

// GetGeneratedContent is the public read path. Generated content is readable
// by anyone once present; only existence is checked.
func (g *GenerationService) GetGeneratedContent(ctx context.Context, videoID string) (*model.GeneratedContent, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, ErrInvalidVideoID
	}
	video, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.GeneratedContentOf(video), nil
}

// resolveOwned looks up the video and verifies the requester owns it. Both
// checks run before any provider is contacted.
func (g *GenerationService) resolveOwned(ctx context.Context, requester, videoID string) (*model.Video, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, ErrInvalidVideoID
	}
	video, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Owner.Hex() != requester {
		return nil, ErrNotOwner
	}
	return video, nil
}

// commit applies the produced fields as one partial update and announces the
// completion. A request writes the store exactly once, here. Success counters
// tick only after the write lands, so the metrics count persisted results.
func (g *GenerationService) commit(ctx context.Context, id primitive.ObjectID, fields bson.M, capabilities ...string) (*model.Video, error) {
	updated, err := g.store.ApplyGeneratedFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	for _, capability := range capabilities {
		g.successCounters[capability].Add(ctx, 1)
	}
	g.publisher.Publish(ctx, cloud.GenerationEvent{
		VideoID:      id.Hex(),
		Capabilities: capabilities,
		CompletedAt:  time.Now().UTC(),
	})
	slog.InfoContext(ctx, "generation committed",
		slog.String("video_id", id.Hex()),
		slog.Any("capabilities", capabilities))
	return updated, nil
}
