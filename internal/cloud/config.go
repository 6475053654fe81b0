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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the external collaborators of the AI studio: the MongoDB video store,
// Google Cloud Storage buckets for thumbnail hosting, the Vertex AI models,
// and the prompt templates used by the generation capabilities.
//
// All provider credentials and endpoints flow through this struct at startup;
// no adapter reads the process environment after construction.
//
// Structs:
//   - MongoDataSource: Connection settings for the video document store.
//   - Storage: Bucket names for staged and publicly hosted generated images.
//   - PromptTemplates: Text templates for the prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model.
//   - VertexAiImageModel: Configuration for the Imagen image synthesis model.
//   - Platform: A social network target and its tone/length guidance.
//   - TopicPublisher: Configuration for the Pub/Sub completion topic.
//   - Config: The top-level struct aggregating all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI
// models. These settings are non-restrictive: the inputs are the creator's own
// uploads and metadata, so the content is trusted.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// MongoDataSource represents the connection settings for the MongoDB database
// that persists the Video documents and their generated content fields.
type MongoDataSource struct {
	URI        string `toml:"uri"`        // The MongoDB connection string.
	Database   string `toml:"database"`   // The database holding the video collection.
	Collection string `toml:"collection"` // The collection name, normally "videos".
}

// PromptTemplates holds the Go text/template sources for the prompts sent to
// the generative models, one per capability. Keeping them in configuration
// lets prompt tuning happen without a rebuild.
type PromptTemplates struct {
	TranscriptionPrompt string `toml:"transcription"` // Template for transcript + caption extraction.
	ThumbnailPrompt     string `toml:"thumbnail"`     // Template for the thumbnail rendering prompt.
	SocialPrompt        string `toml:"social"`        // Template for per-platform social captions.
	TagsPrompt          string `toml:"tags"`          // Template for discovery tag generation.
	DescriptionPrompt   string `toml:"description"`   // Template for long-form description generation.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language
// model (LLM), including its sampling parameters and request rate limit.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type (e.g., "application/json").
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// VertexAiImageModel represents the configuration for the Imagen model used
// to synthesize thumbnails.
type VertexAiImageModel struct {
	Model       string `toml:"model"`        // The name of the image generation model.
	AspectRatio string `toml:"aspect_ratio"` // The target aspect ratio, "16:9" for thumbnails.
	RateLimit   int    `toml:"rate_limit"`   // The rate limit in requests per second.
}

// Platform defines a social network target for caption generation and allows
// the per-platform tone and length guidance embedded in the prompt to be
// tuned in configuration.
type Platform struct {
	Name     string `toml:"name"`     // The platform name as persisted in the caption map (e.g., "twitter").
	Guidance string `toml:"guidance"` // Tone/length guidance injected into the social caption prompt.
}

// TopicPublisher represents the configuration for the Pub/Sub topic that
// receives a notification after each successful generation commit.
type TopicPublisher struct {
	Enabled bool   `toml:"enabled"` // Whether completion events are published at all.
	Name    string `toml:"name"`    // The Pub/Sub topic ID.
}

// Storage represents the configuration for the GCS buckets backing thumbnail
// hosting. Generated images land in the staging bucket first and are only
// durable once re-hosted into the public bucket.
type Storage struct {
	ThumbnailStagingBucket string `toml:"thumbnail_staging_bucket"` // Scratch bucket the image model writes into.
	PublicBucket           string `toml:"public_bucket"`            // Bucket serving re-hosted, durable thumbnails.
}

// Config represents the overall configuration for the application, loaded from
// TOML files. It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name             string `toml:"name"`              // The name of the application.
		GoogleProjectId  string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation   string `toml:"location"`          // The Google Cloud location.
		ProviderTimeout  int    `toml:"provider_timeout_in_seconds"`
		ThumbnailWebBase string `toml:"thumbnail_web_base"` // Optional override for the public object URL prefix.
	} `toml:"application"`
	Storage         Storage                       `toml:"storage"`           // GCS bucket configuration.
	MongoDataSource MongoDataSource               `toml:"mongo_data_source"` // MongoDB connection configuration.
	PromptTemplates PromptTemplates               `toml:"prompt_templates"`  // Prompt templates configuration.
	CompletionTopic TopicPublisher                `toml:"completion_topic"`  // Pub/Sub completion topic configuration.
	AgentModels     map[string]VertexAiLLMModel   `toml:"agent_models"`      // LLM models keyed by a logical name (e.g., "creative", "transcribe").
	ImageModels     map[string]VertexAiImageModel `toml:"image_models"`      // Image models keyed by a logical name (e.g., "thumbnail").
	Platforms       map[string]Platform           `toml:"platforms"`         // Social platforms keyed by their canonical name.
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The maps must be initialized to avoid nil map writes when the
// configuration loader populates them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]VertexAiLLMModel),
		ImageModels: make(map[string]VertexAiImageModel),
		Platforms:   make(map[string]Platform),
	}
}
