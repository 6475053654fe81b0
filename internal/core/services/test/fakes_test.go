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
// This file defines the in-memory test doubles: a video store with the same
// partial-update semantics as the MongoDB implementation, and one fake per
// provider adapter interface. The fakes count their calls so tests can assert
// that rejected requests never reach a provider, and they can share a barrier
// that proves fan-out calls are in flight simultaneously.
package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
)

// callBarrier makes provider concurrency observable. Every fake call arrives
// at the barrier and then blocks until the test releases it, so the test can
// wait for N simultaneous in-flight calls before letting any complete.
type callBarrier struct {
	arrived sync.WaitGroup
	release chan struct{}
}

func newCallBarrier(expectedCalls int) *callBarrier {
	b := &callBarrier{release: make(chan struct{})}
	b.arrived.Add(expectedCalls)
	return b
}

// pass blocks the calling fake until the barrier is released. A nil barrier
// passes through immediately.
func (b *callBarrier) pass() {
	if b == nil {
		return
	}
	b.arrived.Done()
	<-b.release
}

// awaitAllInFlight returns once every expected call has arrived and is
// blocked inside the barrier, then unblocks them all.
func (b *callBarrier) awaitAllInFlight() {
	b.arrived.Wait()
	close(b.release)
}

// fakeStore is an in-memory VideoStore that mirrors the $set semantics of the
// MongoDB implementation: an update touches exactly the named fields.
type fakeStore struct {
	mu     sync.Mutex
	videos map[primitive.ObjectID]*model.Video
	gets   int
	writes int
}

func newFakeStore(videos ...*model.Video) *fakeStore {
	s := &fakeStore{videos: make(map[primitive.ObjectID]*model.Video)}
	for _, v := range videos {
		copied := *v
		s.videos[v.ID] = &copied
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id primitive.ObjectID) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	video, ok := s.videos[id]
	if !ok {
		return nil, services.ErrVideoNotFound
	}
	copied := *video
	return &copied, nil
}

func (s *fakeStore) ApplyGeneratedFields(_ context.Context, id primitive.ObjectID, fields bson.M) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	video, ok := s.videos[id]
	if !ok {
		return nil, services.ErrVideoNotFound
	}
	for key, value := range fields {
		switch key {
		case "captions":
			video.Captions = value.([]model.CaptionSegment)
		case "transcript":
			video.Transcript = value.(string)
		case "language":
			video.Language = value.(string)
		case "aiGeneratedThumbnail":
			url := value.(string)
			video.AIGeneratedThumbnail = &url
		case "socialMediaCaptions":
			video.SocialMediaCaptions = value.(map[string]string)
		case "tags":
			video.Tags = value.([]string)
		case "aiGeneratedDescription":
			video.AIGeneratedDescription = value.(string)
		default:
			return nil, errors.New("unexpected update field: " + key)
		}
	}
	copied := *video
	return &copied, nil
}

// counts returns the lookup and write totals under the lock.
func (s *fakeStore) counts() (gets, writes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.writes
}

// current returns the stored document for direct state assertions.
func (s *fakeStore) current(id primitive.ObjectID) *model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.videos[id]
	return &copied
}

// fakeTranscriber returns a canned transcription result or error.
type fakeTranscriber struct {
	mu      sync.Mutex
	calls   int
	result  *model.TranscriptionResult
	err     error
	barrier *callBarrier
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (*model.TranscriptionResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.barrier.pass()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeImageGenerator returns a canned staged URL.
type fakeImageGenerator struct {
	mu      sync.Mutex
	calls   int
	url     string
	err     error
	barrier *callBarrier
}

func (f *fakeImageGenerator) Generate(context.Context, string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.barrier.pass()
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeImageGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeImageStore re-hosts by prefixing the source URL.
type fakeImageStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeImageStore) Rehost(_ context.Context, sourceURL string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "https://public.example.com/" + strings.TrimPrefix(sourceURL, "gs://"), nil
}

// fakeTextGenerator echoes a canned response and records every prompt it
// receives. When failOn is set, any prompt containing that marker fails with
// a provider error, which lets a test break exactly one capability inside a
// fan-out.
type fakeTextGenerator struct {
	mu       sync.Mutex
	prompts  []string
	response string
	failOn   string
	barrier  *callBarrier
}

func (f *fakeTextGenerator) Generate(_ context.Context, req providers.TextRequest) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	f.barrier.pass()
	if f.failOn != "" && strings.Contains(req.Prompt, f.failOn) {
		return "", providers.NewProviderError("text", errors.New("injected failure"))
	}
	return f.response, nil
}

func (f *fakeTextGenerator) promptLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Prompt templates for the fakes. Each capability's rendered prompt starts
// with a distinct marker so tests can tell the text-adapter calls apart.
var testPrompts = cloud.PromptTemplates{
	ThumbnailPrompt:   "THUMB {{.Title}}",
	SocialPrompt:      "SOCIAL {{.Platform}} {{.Guidance}} {{.Title}}",
	TagsPrompt:        "TAGS {{.Title}} {{.Description}}",
	DescriptionPrompt: "DESC {{.Title}} [{{.TranscriptExcerpt}}]",
}

func cloudPlatform(name, guidance string) cloud.Platform {
	return cloud.Platform{Name: name, Guidance: guidance}
}

func testPlatforms() map[string]cloud.Platform {
	platforms := make(map[string]cloud.Platform, len(model.Platforms))
	for _, name := range model.Platforms {
		platforms[name] = cloud.Platform{Name: name, Guidance: "style for " + name}
	}
	return platforms
}

// studioHarness bundles every fake behind a fully wired service stack.
type studioHarness struct {
	store       *fakeStore
	transcriber *fakeTranscriber
	images      *fakeImageGenerator
	imageStore  *fakeImageStore
	text        *fakeTextGenerator
	studio      *services.StudioService
	generation  *services.GenerationService
}

func newHarness(store *fakeStore) *studioHarness {
	h := &studioHarness{
		store: store,
		transcriber: &fakeTranscriber{
			result: model.GetExampleTranscript(),
		},
		images:     &fakeImageGenerator{url: "gs://staging/staged/one/image.png"},
		imageStore: &fakeImageStore{},
		text:       &fakeTextGenerator{response: "generated text"},
	}
	studio, err := services.NewStudioService(
		h.transcriber, h.images, h.imageStore, h.text, testPrompts, testPlatforms())
	if err != nil {
		panic(err)
	}
	h.studio = studio
	h.generation = services.NewGenerationService(store, studio, nil)
	return h
}

// providerCallCount sums the calls across every provider fake.
func (h *studioHarness) providerCallCount() int {
	return h.transcriber.callCount() + h.images.callCount() + len(h.text.promptLog()) + h.imageStore.calls
}
