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

package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// VideoStore is the persistence interface the orchestrator depends on. The
// production implementation is MongoVideoStore; tests substitute an in-memory
// fake.
type VideoStore interface {
	// Get returns the video with the given id, or ErrVideoNotFound.
	Get(ctx context.Context, id primitive.ObjectID) (*model.Video, error)
	// ApplyGeneratedFields sets exactly the given fields on the video and
	// returns the updated document. Fields not named in the update are left
	// untouched, so a commit never clears another capability's output.
	ApplyGeneratedFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.Video, error)
}

// MongoVideoStore persists videos in a MongoDB collection.
type MongoVideoStore struct {
	collection *mongo.Collection
}

// NewMongoVideoStore is the constructor for the MongoDB-backed video store.
func NewMongoVideoStore(collection *mongo.Collection) *MongoVideoStore {
	return &MongoVideoStore{collection: collection}
}

func (s *MongoVideoStore) Get(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	var video model.Video
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ApplyGeneratedFields runs a partial $set update. Last write wins; concurrent
// writers touching disjoint fields do not interfere because the update names
// only the fields produced by the current request.
func (s *MongoVideoStore) ApplyGeneratedFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.Video, error) {
	var updated model.Video
	err := s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
