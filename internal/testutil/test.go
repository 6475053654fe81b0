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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// video documents for the generation services.
package test

import (
	"log"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are parsed only once per
// test binary.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr is a simple test helper that fails the test when err is not nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// NewTestVideo returns a video document owned by the given identity, with the
// creator-supplied fields populated and every generated field at its default.
//
// Inputs:
//   - owner: The ObjectID of the video's creator.
//
// Outputs:
//   - *model.Video: A video ready to be seeded into a fake store.
func NewTestVideo(owner primitive.ObjectID) *model.Video {
	return &model.Video{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		VideoFile:   "https://media.example.com/videos/test-clip-001.mp4",
		Title:       "Building a Birdhouse From One Cedar Board",
		Description: "A weekend woodworking project anyone can follow.",
		Language:    "en",
	}
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test configuration files.
//
// Outputs:
//   - error: An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The TOML files
// are loaded once and cached for subsequent calls.
//
// Outputs:
//   - *cloud.Config: The loaded and cached configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
