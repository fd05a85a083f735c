package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

// Collection names
const (
	UsersCollection       = "users"
	AccountsCollection    = "accounts"
	LessonPlansCollection = "lessonplans"
	UsagesCollection      = "aiusages"
)

const defaultQueryTimeout = 5 * time.Second

// DB wraps the pooled client shared by all repositories
type DB struct {
	client       *mongo.Client
	database     *mongo.Database
	queryTimeout time.Duration
}

// Connect opens the pooled client and verifies the primary is reachable
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := New(client, cfg.Name, cfg.QueryTimeout)
	if err := db.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return db, nil
}

// New wraps an existing client
func New(client *mongo.Client, name string, queryTimeout time.Duration) *DB {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &DB{
		client:       client,
		database:     client.Database(name),
		queryTimeout: queryTimeout,
	}
}

// Ping checks the primary
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.queryTimeout)
	defer cancel()
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Collection returns a named collection
func (d *DB) Collection(name string) *mongo.Collection {
	return d.database.Collection(name)
}

// op bounds a single store call and records its latency
func (d *DB) op(ctx context.Context, operation, collection string) (context.Context, func()) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.queryTimeout)
	return ctx, func() {
		cancel()
		metrics.RecordDBQuery(operation, collection, time.Since(start))
	}
}
