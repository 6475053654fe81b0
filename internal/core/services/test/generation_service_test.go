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

// Package services_test contains the test suite for the services package.
// This file tests the generation orchestrator: request validation and
// ownership checks, the all-or-nothing contract of the generate-all fan-out,
// its observable concurrency, and the public read path.
package services_test

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// TestMalformedIDRejectedBeforeLookup verifies that a request with an
// unparseable video id is rejected before the store is ever consulted and
// before any provider is called.
func TestMalformedIDRejectedBeforeLookup(t *testing.T) {
	store := newFakeStore()
	h := newHarness(store)

	_, err := h.generation.GenerateTags(context.Background(), primitive.NewObjectID().Hex(), "not-a-hex-id")

	assert.ErrorIs(t, err, services.ErrInvalidVideoID)
	gets, writes := store.counts()
	assert.Equal(t, 0, gets)
	assert.Equal(t, 0, writes)
	assert.Equal(t, 0, h.providerCallCount())
}

// TestMissingVideoRejected verifies the not-found rejection for an id that
// parses but matches no document.
func TestMissingVideoRejected(t *testing.T) {
	store := newFakeStore()
	h := newHarness(store)

	_, err := h.generation.GenerateCaptions(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())

	assert.ErrorIs(t, err, services.ErrVideoNotFound)
	assert.Equal(t, 0, h.providerCallCount())
}

// TestNonOwnerRejectedWithoutProviderCalls verifies the ownership check: a
// valid video requested by someone other than its creator is rejected with
// zero provider calls and zero writes, for every generation operation.
func TestNonOwnerRejectedWithoutProviderCalls(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	stranger := primitive.NewObjectID().Hex()

	ops := map[string]func(h *studioHarness) error{
		"captions": func(h *studioHarness) error {
			_, err := h.generation.GenerateCaptions(context.Background(), stranger, video.ID.Hex())
			return err
		},
		"thumbnail": func(h *studioHarness) error {
			_, err := h.generation.GenerateThumbnail(context.Background(), stranger, video.ID.Hex())
			return err
		},
		"social": func(h *studioHarness) error {
			_, err := h.generation.GenerateSocialCaptions(context.Background(), stranger, video.ID.Hex(), model.PlatformScopeAll)
			return err
		},
		"tags": func(h *studioHarness) error {
			_, err := h.generation.GenerateTags(context.Background(), stranger, video.ID.Hex())
			return err
		},
		"description": func(h *studioHarness) error {
			_, err := h.generation.GenerateDescription(context.Background(), stranger, video.ID.Hex())
			return err
		},
		"all": func(h *studioHarness) error {
			_, err := h.generation.GenerateAll(context.Background(), stranger, video.ID.Hex())
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore(video)
			h := newHarness(store)

			err := op(h)

			assert.ErrorIs(t, err, services.ErrNotOwner)
			_, writes := store.counts()
			assert.Equal(t, 0, writes)
			assert.Equal(t, 0, h.providerCallCount())
		})
	}
}

// TestGenerateTagsOverwritesWholeList verifies tag parsing end to end and
// that regeneration replaces the stored list instead of merging with it.
func TestGenerateTagsOverwritesWholeList(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	video.Tags = []string{"stale", "leftover"}
	store := newFakeStore(video)
	h := newHarness(store)
	h.text.response = " woodworking, diy ,, cedar projects , "

	updated, err := h.generation.GenerateTags(context.Background(), owner.Hex(), video.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, []string{"woodworking", "diy", "cedar projects"}, updated.Tags)
	// The old list is gone entirely, not merged.
	assert.Equal(t, []string{"woodworking", "diy", "cedar projects"}, store.current(video.ID).Tags)
}

// TestPartialFieldIndependence runs two single-capability requests in
// sequence and verifies each commit touches only its own fields: the
// thumbnail survives the tag generation and vice versa.
func TestPartialFieldIndependence(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	h := newHarness(store)
	h.text.response = "alpha, beta"

	_, err := h.generation.GenerateThumbnail(context.Background(), owner.Hex(), video.ID.Hex())
	assert.NoError(t, err)
	_, err = h.generation.GenerateTags(context.Background(), owner.Hex(), video.ID.Hex())
	assert.NoError(t, err)

	final := store.current(video.ID)
	assert.NotNil(t, final.AIGeneratedThumbnail)
	assert.Equal(t, []string{"alpha", "beta"}, final.Tags)
	// Fields no capability produced stay at their seeded values.
	assert.Equal(t, video.Description, final.Description)
	assert.Equal(t, video.Language, final.Language)
	// Exactly one write per successful request.
	_, writes := store.counts()
	assert.Equal(t, 2, writes)
}

// TestGenerateAllCommitsEverything verifies the success path of the fan-out:
// all seven generated fields land in one write, and the description prompt is
// built from the title alone since the transcript is being produced in
// parallel.
func TestGenerateAllCommitsEverything(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	h := newHarness(store)

	updated, err := h.generation.GenerateAll(context.Background(), owner.Hex(), video.ID.Hex())

	assert.NoError(t, err)
	assert.NotEmpty(t, updated.Captions)
	assert.NotEmpty(t, updated.Transcript)
	assert.Equal(t, "en", updated.Language)
	assert.NotNil(t, updated.AIGeneratedThumbnail)
	assert.Equal(t, len(model.Platforms), len(updated.SocialMediaCaptions))
	assert.NotEmpty(t, updated.Tags)
	assert.NotEmpty(t, updated.AIGeneratedDescription)

	_, writes := store.counts()
	assert.Equal(t, 1, writes)

	// The description prompt must not embed a transcript excerpt in all mode.
	for _, prompt := range h.text.promptLog() {
		if strings.HasPrefix(prompt, "DESC") {
			assert.Contains(t, prompt, "[]")
		}
	}
}

// TestGenerateAllIsAllOrNothing injects a failure into exactly one of the
// five capabilities (tags) and verifies that nothing is persisted, including
// the results of capabilities that completed successfully.
func TestGenerateAllIsAllOrNothing(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	h := newHarness(store)
	h.text.failOn = "TAGS"

	_, err := h.generation.GenerateAll(context.Background(), owner.Hex(), video.ID.Hex())

	var provErr *providers.ProviderError
	assert.ErrorAs(t, err, &provErr)
	_, writes := store.counts()
	assert.Equal(t, 0, writes)
	// The stored document is byte-for-byte what was seeded.
	assert.Equal(t, video, store.current(video.ID))
}

// TestGenerateAllRunsConcurrently proves the fan-out is concurrent rather
// than sequential. Every provider fake blocks at a shared barrier; the test
// only progresses once all calls of the batch are in flight simultaneously,
// which a serialized implementation can never achieve.
func TestGenerateAllRunsConcurrently(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	h := newHarness(store)

	// One transcription, one image render, and seven text completions (five
	// social platforms, tags, description) all block at the barrier.
	barrier := newCallBarrier(9)
	h.transcriber.barrier = barrier
	h.images.barrier = barrier
	h.text.barrier = barrier

	done := make(chan error, 1)
	go func() {
		_, err := h.generation.GenerateAll(context.Background(), owner.Hex(), video.ID.Hex())
		done <- err
	}()

	barrier.awaitAllInFlight()
	assert.NoError(t, <-done)
}

// TestReadPathIgnoresIdentity verifies the public read path: it returns the
// generated fields for any caller, rejects a malformed id, and reports
// not-found for an absent one.
func TestReadPathIgnoresIdentity(t *testing.T) {
	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	video.Tags = []string{"public", "content"}
	store := newFakeStore(video)
	h := newHarness(store)

	content, err := h.generation.GetGeneratedContent(context.Background(), video.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, video.Tags, content.Tags)

	_, err = h.generation.GetGeneratedContent(context.Background(), "garbage")
	assert.ErrorIs(t, err, services.ErrInvalidVideoID)

	_, err = h.generation.GetGeneratedContent(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrVideoNotFound)
}
