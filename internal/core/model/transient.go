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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains struct definitions for data models that
// are only used in memory while a generation request executes. These objects
// are intermediate containers for provider results before the orchestrator
// merges them into a single persisted update.
package model

// These objects are used in memory during generation, but are not persisted as-is.

// TranscriptionResult is the normalized output of the transcription provider:
// time-coded segments, the flat transcript, and the detected language. The
// segment format passes through to the persisted captions verbatim.
type TranscriptionResult struct {
	Segments []CaptionSegment `json:"segments"`  // Word/phrase level spans with start and end offsets in seconds.
	FullText string           `json:"full_text"` // The complete transcript as one string.
	Language string           `json:"language"`  // ISO-style language code detected by the model (e.g., "en").
}
