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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the generative
// AI models. By providing a concrete example of the desired JSON output
// structure within the prompt itself, we guide the AI to return data that is
// consistent, correctly formatted, and easily parsable.
package model

// GetExampleTranscript creates a sample TranscriptionResult. It is embedded in
// the transcription prompt to show the model the expected JSON structure,
// including fractional-second offsets and the language code.
//
// Outputs:
//   - *TranscriptionResult: A pointer to a hardcoded TranscriptionResult.
func GetExampleTranscript() *TranscriptionResult {
	return &TranscriptionResult{
		Segments: []CaptionSegment{
			{Start: 0.0, End: 2.4, Text: "Welcome back to the channel."},
			{Start: 2.4, End: 5.1, Text: "Today we're building a birdhouse"},
			{Start: 5.1, End: 7.8, Text: "from a single cedar fence board."},
		},
		FullText: "Welcome back to the channel. Today we're building a birdhouse from a single cedar fence board.",
		Language: "en",
	}
}
