// Package database connects to MongoDB.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/storefront/config"
)

// Mongo bundles a connected client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials uri and verifies the primary answers.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// ConnectDefault uses MONGO_URI and MONGO_DATABASE.
func ConnectDefault(ctx context.Context) (*Mongo, error) {
	return Connect(ctx, config.MongoURI(), config.MongoDatabase())
}

// Ping reports whether the server is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects, waiting at most five seconds for in-flight operations.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
