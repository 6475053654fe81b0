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

package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSImageStore re-hosts provider-generated images into a durable, publicly
// readable bucket. Source URLs come in two flavors: gs:// objects staged by
// the image model, which are copied server side, and https:// URLs, which are
// downloaded and re-uploaded.
type GCSImageStore struct {
	client     *storage.Client
	bucket     string // Destination bucket for durable thumbnails.
	webBase    string // Public URL prefix, usually https://storage.googleapis.com.
	httpClient *http.Client
}

// NewGCSImageStore is the constructor for the durable image store.
func NewGCSImageStore(client *storage.Client, bucket string, webBase string) *GCSImageStore {
	if webBase == "" {
		webBase = "https://storage.googleapis.com"
	}
	return &GCSImageStore{
		client:     client,
		bucket:     bucket,
		webBase:    strings.TrimSuffix(webBase, "/"),
		httpClient: &http.Client{},
	}
}

// Rehost copies the image at sourceURL into the public bucket and returns the
// durable URL. The staged source object is left in place for its lifecycle
// rule to clean up.
func (s *GCSImageStore) Rehost(ctx context.Context, sourceURL string) (string, error) {
	name := fmt.Sprintf("thumbnails/%s.png", uuid.NewString())
	dst := s.client.Bucket(s.bucket).Object(name)

	switch {
	case strings.HasPrefix(sourceURL, "gs://"):
		srcBucket, srcObject, err := splitGCSURI(sourceURL)
		if err != nil {
			return "", NewProviderError("image-store", err)
		}
		src := s.client.Bucket(srcBucket).Object(srcObject)
		if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
			return "", NewProviderError("image-store", err)
		}
	case strings.HasPrefix(sourceURL, "https://"), strings.HasPrefix(sourceURL, "http://"):
		if err := s.downloadToObject(ctx, sourceURL, dst); err != nil {
			return "", err
		}
	default:
		return "", NewProviderError("image-store", fmt.Errorf("unsupported source url scheme: %q", sourceURL))
	}

	return fmt.Sprintf("%s/%s/%s", s.webBase, s.bucket, name), nil
}

func (s *GCSImageStore) downloadToObject(ctx context.Context, sourceURL string, dst *storage.ObjectHandle) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return NewProviderError("image-store", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return NewProviderError("image-store", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return NewProviderError("image-store", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode))
	}

	w := dst.NewWriter(ctx)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		return NewProviderError("image-store", err)
	}
	if err := w.Close(); err != nil {
		return NewProviderError("image-store", err)
	}
	return nil
}

// splitGCSURI breaks gs://bucket/object/path into its bucket and object parts.
func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	bucket, object, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || object == "" {
		return "", "", errors.New("malformed gcs uri: " + uri)
	}
	return bucket, object, nil
}
