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
// backends. This file defines the single failure signal every adapter
// collapses its provider's errors into.
package providers

import "fmt"

// ProviderError is the one failure shape an adapter may return. It carries the
// capability name and the original cause. The cause is for logs only and must
// never be echoed verbatim to API clients.
type ProviderError struct {
	Provider string // The capability that failed: "transcription", "image", "text", "image-store".
	Cause    error  // The underlying network, decode, or backend error.
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed: %v", e.Provider, e.Cause)
}

// Unwrap exposes the original cause for errors.Is/As chains.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError wraps a cause into a ProviderError for the named capability.
func NewProviderError(provider string, cause error) error {
	return &ProviderError{Provider: provider, Cause: cause}
}
