// Package mongodb implements the lookup audit store using MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lukasz5660/Driver-checker/internal/storage"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store implements storage.Store using MongoDB.
type Store struct {
	client  *mongo.Client
	lookups *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

// NewStore connects to MongoDB and prepares the audit collection.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "driver_checker"
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "lookups"
	}

	s := &Store{
		client:  client,
		lookups: client.Database(database).Collection(collection),
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.lookups.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "documentDigest", Value: 1}}},
	})
	return err
}

// RecordLookup implements storage.Store.
func (s *Store) RecordLookup(ctx context.Context, record *storage.LookupRecord) error {
	if _, err := s.lookups.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("inserting lookup record: %w", err)
	}
	return nil
}

// Ping implements storage.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close implements storage.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
