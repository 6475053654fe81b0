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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config     *cloud.Config
	cloud      *cloud.ServiceClients
	generation *services.GenerationService
}

var state = &StateManager{}

// SetupOS points the configuration loader at the local configs directory.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		// Create a default cloud config
		config := cloud.NewConfig()
		// Load it from the TOML files
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// requireAgentModel returns the named model from the configured set or an
// error naming the missing config section. Looked up at startup so a config
// gap fails the boot instead of the first request.
func requireAgentModel(models map[string]*cloud.QuotaAwareGenerativeAIModel, name string) (*cloud.QuotaAwareGenerativeAIModel, error) {
	model, ok := models[name]
	if !ok || model == nil {
		return nil, fmt.Errorf("agent model %q is not configured; add an [agent_models.%s] section", name, name)
	}
	return model, nil
}

// InitState initializes the application state and dependencies: the cloud
// clients, the provider adapters wrapping them, and the generation services.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	providerTimeout := time.Duration(config.Application.ProviderTimeout) * time.Second

	transcribeModel, err := requireAgentModel(cloudClients.AgentModels, "transcribe")
	if err != nil {
		panic(err)
	}
	creativeModel, err := requireAgentModel(cloudClients.AgentModels, "creative")
	if err != nil {
		panic(err)
	}

	transcriber, err := providers.NewGeminiTranscriber(
		"transcribe",
		transcribeModel,
		config.PromptTemplates.TranscriptionPrompt,
		providerTimeout,
	)
	if err != nil {
		panic(err)
	}

	textGen := providers.NewGeminiTextGenerator(
		"creative",
		creativeModel,
		providerTimeout,
	)

	imageModel, ok := config.ImageModels["thumbnail"]
	if !ok {
		panic(fmt.Errorf("image model %q is not configured; add an [image_models.thumbnail] section", "thumbnail"))
	}
	imageGen := providers.NewImagenGenerator(
		cloudClients.GenAIClient.Models,
		imageModel.Model,
		imageModel.AspectRatio,
		config.Storage.ThumbnailStagingBucket,
		imageModel.RateLimit,
		providerTimeout,
	)

	imageStore := providers.NewGCSImageStore(
		cloudClients.StorageClient,
		config.Storage.PublicBucket,
		config.Application.ThumbnailWebBase,
	)

	studio, err := services.NewStudioService(
		transcriber,
		imageGen,
		imageStore,
		textGen,
		config.PromptTemplates,
		config.Platforms,
	)
	if err != nil {
		panic(err)
	}

	videoCollection := cloudClients.MongoClient.
		Database(config.MongoDataSource.Database).
		Collection(config.MongoDataSource.Collection)
	store := services.NewMongoVideoStore(videoCollection)

	publisher := cloud.NewGenerationPublisher(cloudClients.PubsubClient, config.CompletionTopic)

	state.generation = services.NewGenerationService(store, studio, publisher)
}
