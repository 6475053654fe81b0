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
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/providers"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-video-studio/internal/telemetry"
)

// requesterHeader carries the authenticated user id, set by the gateway in
// front of this service. Session issuance and cookie handling live there, not
// here.
const requesterHeader = "X-User-Id"

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Add OpenTelemetry middleware
	r.Use(otelgin.Middleware("video-studio-server"))

	// Allow all origins, methods, and headers. The service sits behind the
	// API gateway in every deployed environment; this default matters only
	// for local development.
	r.Use(cors.Default())

	// Create the "/api/v1" group
	apiV1 := r.Group("/api/v1")
	{
		AIRouter(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Wait for an interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	state.cloud.Close()
	log.Println("Server exiting")
}

// AIRouter sets up the generation and read routes for a video's AI content.
// The five single-capability endpoints, the generate-all endpoint, and the
// public read endpoint all hang off /videos/:id.
func AIRouter(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	{
		ai.POST("/videos/:id/captions", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			video, err := state.generation.GenerateCaptions(c.Request.Context(), requester, c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"captions":   video.Captions,
				"transcript": video.Transcript,
				"language":   video.Language,
			})
		})

		ai.POST("/videos/:id/thumbnail", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			video, err := state.generation.GenerateThumbnail(c.Request.Context(), requester, c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"aiGeneratedThumbnail": video.AIGeneratedThumbnail})
		})

		ai.POST("/videos/:id/social-captions", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			scope := c.DefaultQuery("platform", model.PlatformScopeAll)
			video, err := state.generation.GenerateSocialCaptions(c.Request.Context(), requester, c.Param("id"), scope)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"socialMediaCaptions": video.SocialMediaCaptions})
		})

		ai.POST("/videos/:id/tags", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			video, err := state.generation.GenerateTags(c.Request.Context(), requester, c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"tags": video.Tags})
		})

		ai.POST("/videos/:id/description", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			video, err := state.generation.GenerateDescription(c.Request.Context(), requester, c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"aiGeneratedDescription": video.AIGeneratedDescription})
		})

		ai.POST("/videos/:id/generate-all", func(c *gin.Context) {
			requester, ok := requesterID(c)
			if !ok {
				return
			}
			video, err := state.generation.GenerateAll(c.Request.Context(), requester, c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, model.GeneratedContentOf(video))
		})

		// Generated content is publicly readable; no identity required.
		ai.GET("/videos/:id/ai-content", func(c *gin.Context) {
			content, err := state.generation.GetGeneratedContent(c.Request.Context(), c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, content)
		})
	}
}

// requesterID extracts the caller's identity from the gateway header and
// rejects the request when it is absent.
func requesterID(c *gin.Context) (string, bool) {
	requester := c.GetHeader(requesterHeader)
	if requester == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return "", false
	}
	return requester, true
}

// writeError maps each rejection kind to its status code. Provider causes are
// logged here and never echoed to the caller.
func writeError(c *gin.Context, err error) {
	var provErr *providers.ProviderError
	switch {
	case errors.Is(err, services.ErrInvalidVideoID), errors.Is(err, services.ErrUnknownPlatform):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &provErr):
		slog.ErrorContext(c.Request.Context(), "generation failed",
			slog.String("provider", provErr.Provider), slog.Any("error", provErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "content generation failed"})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
