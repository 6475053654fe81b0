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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements the Pub/Sub publisher used to announce that generated
// content has been committed for a video. Downstream consumers (search
// indexing, cache invalidation) subscribe to the topic; this service never
// waits on them, so a publish failure is logged and otherwise ignored.
//
// Structs:
//   - GenerationPublisher: Wraps the topic handle for the completion events.
//   - GenerationEvent: The JSON payload published per committed generation.
//
// Functions:
//   - NewGenerationPublisher: Constructor for creating a new publisher.
//   - Publish: Sends one completion event for a video.
package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
)

// GenerationEvent is the message payload announcing that one or more generated
// content fields were committed for a video.
type GenerationEvent struct {
	VideoID      string    `json:"video_id"`     // The hex ID of the updated video.
	Capabilities []string  `json:"capabilities"` // The generation capabilities that produced fields (e.g., "captions", "tags").
	CompletedAt  time.Time `json:"completed_at"` // The commit time in UTC.
}

// GenerationPublisher publishes GenerationEvent messages to a configured topic.
// A nil publisher is valid and publishes nothing, which keeps the orchestrator
// free of configuration checks.
type GenerationPublisher struct {
	topic *pubsub.Topic
}

// NewGenerationPublisher creates a publisher for the completion topic. When the
// topic is disabled in configuration it returns nil, and callers treat a nil
// publisher as a no-op.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client for connecting to the service.
//   - config: The TopicPublisher section of the application configuration.
//
// Outputs:
//   - *GenerationPublisher: The configured publisher, or nil when disabled.
func NewGenerationPublisher(pubsubClient *pubsub.Client, config TopicPublisher) *GenerationPublisher {
	if !config.Enabled || config.Name == "" {
		return nil
	}
	return &GenerationPublisher{topic: pubsubClient.Topic(config.Name)}
}

// Publish sends one completion event. The publish result is awaited so that
// errors surface in the logs, but the caller's request has already succeeded
// by the time this runs and is never failed retroactively.
//
// Inputs:
//   - ctx: The context for the publish call.
//   - event: The completion event to send.
func (p *GenerationPublisher) Publish(ctx context.Context, event GenerationEvent) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode generation event", "video_id", event.VideoID, "error", err)
		return
	}
	result := p.topic.Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		slog.Error("failed to publish generation event", "video_id", event.VideoID, "error", err)
	}
}
