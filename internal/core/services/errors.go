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

// Package services contains the generation capabilities and the orchestrator
// that runs them against persisted videos. This file defines the request
// rejection taxonomy. All of these are terminal for the current request;
// nothing in this package retries.
//
// Validation and ownership errors are raised before any provider call is
// made. Provider failures are carried as *providers.ProviderError and keep
// their cause for logging; the cause is never echoed to the caller.
package services

import "errors"

var (
	// ErrInvalidVideoID rejects a request whose video id is not a valid
	// object id, before any store lookup happens.
	ErrInvalidVideoID = errors.New("invalid video id")

	// ErrVideoNotFound rejects a request for a video that does not exist.
	ErrVideoNotFound = errors.New("video not found")

	// ErrNotOwner rejects a generation request from anyone but the video's
	// creator. Raised before any provider call or store write.
	ErrNotOwner = errors.New("only the owner can generate content for this video")

	// ErrUnknownPlatform rejects a social caption request whose scope names
	// a platform outside the supported set.
	ErrUnknownPlatform = errors.New("unknown social platform")
)
