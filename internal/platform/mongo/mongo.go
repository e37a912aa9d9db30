package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"votegate/internal/platform/config"
)

// Client wraps the driver client together with the configured database.
type Client struct {
	*mongo.Client
	DB *mongo.Database
}

// New connects to MongoDB. Returns nil, nil when no URI is configured.
func New(ctx context.Context, cfg config.Mongo) (*Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}
	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return &Client{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Health checks if the MongoDB connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}
