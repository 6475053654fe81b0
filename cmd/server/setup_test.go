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
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/stretchr/testify/assert"
)

// TestRequireAgentModel verifies the startup guard for the configured agent
// models: a present model passes through, while a missing or nil entry fails
// with an error naming the config section, so a config gap stops the boot
// rather than panicking on the first request.
func TestRequireAgentModel(t *testing.T) {
	configured := &cloud.QuotaAwareGenerativeAIModel{ModelName: "gemini-2.0-flash"}
	models := map[string]*cloud.QuotaAwareGenerativeAIModel{
		"creative": configured,
		"broken":   nil,
	}

	got, err := requireAgentModel(models, "creative")
	assert.NoError(t, err)
	assert.Equal(t, configured, got)

	_, err = requireAgentModel(models, "transcribe")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `agent model "transcribe"`)
	assert.Contains(t, err.Error(), "[agent_models.transcribe]")

	_, err = requireAgentModel(models, "broken")
	assert.Error(t, err)
}
