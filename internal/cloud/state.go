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
// This file is central to the application's architecture: it initializes and
// holds all the client objects needed to communicate with external services.
// It acts as a dependency injection container, creating a single, shared
// `ServiceClients` struct that is passed throughout the application.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It takes the application's configuration (`Config`) and a `context.Context`.
//  3. It initializes clients for Storage, Pub/Sub, GenAI, and MongoDB.
//  4. It then reads the configuration to create the rate-limited AI model
//     wrappers, storing them in a map keyed by their logical name.
//  5. All initialized clients are bundled into a single `ServiceClients` struct
//     used by the API handlers and services.
//
// Structs:
//   - ServiceClients: A container struct holding all initialized service
//     clients, acting as a central state manager for external connections.
//
// Functions:
//   - Close: A convenience method to gracefully shut down all client connections.
//   - NewCloudServiceClients: A factory function that creates and configures all
//     necessary clients based on the application's configuration.
package cloud

import (
	"context"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/genai"
)

// ServiceClients is a struct that acts as a central container for all the
// clients that interact with external services. This pattern is a form of
// dependency injection, making it easy to manage and share these client
// connections across the entire application.
type ServiceClients struct {
	StorageClient *storage.Client                         // Client for Google Cloud Storage (GCS), hosts generated thumbnails.
	PubsubClient  *pubsub.Client                          // Client for Google Cloud Pub/Sub, publishes completion events.
	GenAIClient   *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	MongoClient   *mongo.Client                           // Client for the MongoDB video store.
	AgentModels   map[string]*QuotaAwareGenerativeAIModel // Configured GenAI models, keyed by a logical name.
}

// Close is a utility method to gracefully shut down the active client
// connections. Client connections are typically managed by the application's
// root context, but this method provides an explicit way to release resources,
// which is especially useful in tests or for controlled shutdowns.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.MongoClient.Disconnect(context.Background())
}

// NewCloudServiceClients is a factory function that initializes all required
// service clients based on the provided configuration. It serves as the main
// entry point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	// Create a new Google Cloud Storage client.
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	// Create a new Google Cloud Pub/Sub client for the specified project.
	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	// Create a new Generative AI client against the Vertex AI backend.
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}

	// Connect to the MongoDB deployment that persists the video documents.
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoDataSource.URI))
	if err != nil {
		return nil, err
	}

	// Iterate through the agent model configurations, build the generation
	// config for each, and wrap it in the rate-limiting model.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]

		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	// Assemble the final ServiceClients struct.
	cloud = &ServiceClients{
		StorageClient: sc,
		PubsubClient:  pc,
		GenAIClient:   gc,
		MongoClient:   mc,
		AgentModels:   agentModels,
	}

	return cloud, err
}
