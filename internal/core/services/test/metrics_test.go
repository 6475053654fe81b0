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
// This file tests the orchestrator's per-capability generation counters
// against an in-memory OpenTelemetry reader.
package services_test

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
	test "github.com/jaycherian/gcp-go-video-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectCounterSums drains the manual reader and returns the summed value of
// every int64 counter by metric name.
func collectCounterSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			sums[m.Name] = total
		}
	}
	return sums
}

// TestGenerationCountersPerCapability verifies that a committed generation
// ticks the capability's success counter, a provider failure ticks that
// capability's error counter, and sibling capabilities stay untouched.
func TestGenerationCountersPerCapability(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	// The harness is built after the meter provider swap so the counters
	// register against the test reader.
	h := newHarness(store)

	_, err := h.generation.GenerateTags(context.Background(), owner.Hex(), video.ID.Hex())
	assert.NoError(t, err)

	h.images.err = providers.NewProviderError("image", assert.AnError)
	_, err = h.generation.GenerateThumbnail(context.Background(), owner.Hex(), video.ID.Hex())
	assert.Error(t, err)

	sums := collectCounterSums(t, reader)
	assert.Equal(t, int64(1), sums["generation.tags.counter.success"])
	assert.Equal(t, int64(1), sums["generation.thumbnail.counter.error"])
	assert.Equal(t, int64(0), sums["generation.tags.counter.error"])
	assert.Equal(t, int64(0), sums["generation.thumbnail.counter.success"])
	assert.Equal(t, int64(0), sums["generation.captions.counter.success"])
}

// TestGenerateAllAttributesFailureCounter verifies that in all mode the error
// counter ticks for the capability that actually failed and no success
// counters tick, since nothing is committed.
func TestGenerateAllAttributesFailureCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	owner := primitive.NewObjectID()
	video := test.NewTestVideo(owner)
	store := newFakeStore(video)
	h := newHarness(store)
	h.text.failOn = "TAGS"

	_, err := h.generation.GenerateAll(context.Background(), owner.Hex(), video.ID.Hex())
	assert.Error(t, err)

	sums := collectCounterSums(t, reader)
	assert.Equal(t, int64(1), sums["generation.tags.counter.error"])
	assert.Equal(t, int64(0), sums["generation.tags.counter.success"])
	assert.Equal(t, int64(0), sums["generation.captions.counter.success"])
	assert.Equal(t, int64(0), sums["generation.thumbnail.counter.success"])
}
