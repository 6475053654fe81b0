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
// This file contains the persistent Video document and the projection of its
// AI-generated fields. A Video exists before any generation runs; the studio
// only ever updates existing documents and never creates or deletes one.
//
// Every generated field is independently settable: committing one field never
// clears another, because commits are partial `$set` updates rather than full
// document replacements. Regeneration overwrites in place; no history is kept.
package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Platforms is the fixed, ordered set of social networks that caption
// generation targets when the requested scope is "all". The order is the
// fan-out order, not a persistence order; the stored captions are a map.
var Platforms = []string{"instagram", "twitter", "linkedin", "facebook", "tiktok"}

// PlatformScopeAll is the sentinel scope value that expands to Platforms.
const PlatformScopeAll = "all"

// CaptionSegment is one time-coded span of the spoken-word captions. Segments
// are time-ordered and non-overlapping by convention; the store does not
// enforce either property.
type CaptionSegment struct {
	Start float64 `bson:"start" json:"start"` // Segment start offset in seconds.
	End   float64 `bson:"end" json:"end"`     // Segment end offset in seconds.
	Text  string  `bson:"text" json:"text"`   // The spoken text within the span.
}

// Video is the persisted media asset that generated content attaches to.
// Identity and ownership are immutable after creation; the creator-supplied
// title and description are edited elsewhere and only read here.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`         // The creator; the only identity allowed to trigger generation.
	VideoFile   string             `bson:"videoFile" json:"videoFile"` // URL of the primary media content.
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`

	// AI-generated fields. Each is nullable/defaulted independently and is
	// only ever written by the generation orchestrator.
	Captions               []CaptionSegment  `bson:"captions" json:"captions"`
	Transcript             string            `bson:"transcript" json:"transcript"`
	Language               string            `bson:"language" json:"language"`
	AIGeneratedThumbnail   *string           `bson:"aiGeneratedThumbnail" json:"aiGeneratedThumbnail"`
	SocialMediaCaptions    map[string]string `bson:"socialMediaCaptions" json:"socialMediaCaptions"`
	Tags                   []string          `bson:"tags" json:"tags"`
	AIGeneratedDescription string            `bson:"aiGeneratedDescription" json:"aiGeneratedDescription"`
}

// GeneratedContent is the public projection of a video's generated fields,
// returned by the read path to any caller regardless of identity.
type GeneratedContent struct {
	Captions               []CaptionSegment  `json:"captions"`
	Transcript             string            `json:"transcript"`
	Language               string            `json:"language"`
	AIGeneratedThumbnail   *string           `json:"aiGeneratedThumbnail"`
	SocialMediaCaptions    map[string]string `json:"socialMediaCaptions"`
	Tags                   []string          `json:"tags"`
	AIGeneratedDescription string            `json:"aiGeneratedDescription"`
}

// GeneratedContentOf projects the generated fields out of a video document.
func GeneratedContentOf(v *Video) *GeneratedContent {
	return &GeneratedContent{
		Captions:               v.Captions,
		Transcript:             v.Transcript,
		Language:               v.Language,
		AIGeneratedThumbnail:   v.AIGeneratedThumbnail,
		SocialMediaCaptions:    v.SocialMediaCaptions,
		Tags:                   v.Tags,
		AIGeneratedDescription: v.AIGeneratedDescription,
	}
}
