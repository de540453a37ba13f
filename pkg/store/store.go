// Package store persists finished build documents to MongoDB, so server
// deployments can hand out stable build IDs and re-serve layouts without
// recomputing them.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/graph"
)

const (
	defaultDatabase  = "spellweave"
	buildsCollection = "builds"
	connectTimeout   = 10 * time.Second
	operationTimeout = 5 * time.Second
)

// Store wraps the MongoDB collection holding build documents.
type Store struct {
	client *mongo.Client
	builds *mongo.Collection
}

// Connect opens a connection to MongoDB at uri. An empty database name
// uses "spellweave".
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = defaultDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	return &Store{
		client: client,
		builds: client.Database(database).Collection(buildsCollection),
	}, nil
}

// SaveBuild upserts a build document under its ID.
func (s *Store) SaveBuild(ctx context.Context, doc graph.BuildDoc) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	_, err := s.builds.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save build %s", doc.ID)
	}
	return nil
}

// GetBuild fetches a build document by ID.
func (s *Store) GetBuild(ctx context.Context, id string) (graph.BuildDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var doc graph.BuildDoc
	err := s.builds.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return graph.BuildDoc{}, errors.New(errors.ErrCodeBuildNotFound, "build %s not found", id)
	}
	if err != nil {
		return graph.BuildDoc{}, errors.Wrap(errors.ErrCodeStorage, err, "load build %s", id)
	}
	return doc, nil
}

// ListBuilds returns the most recent build IDs, newest first.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	cursor, err := s.builds.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.M{"created_at": -1}).
			SetLimit(int64(limit)).
			SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list builds")
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode build row")
		}
		ids = append(ids, row.ID)
	}
	return ids, cursor.Err()
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
