package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/newsroom/docstore"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// DefaultDatabase is the database used when none is configured.
	DefaultDatabase = "cloud_news"

	// DefaultCollection is the collection used when none is configured.
	DefaultCollection = "articles"
)

// Store implements docstore.Store on a MongoDB collection.
type Store struct {
	client *driver.Client
	coll   *driver.Collection
	logger *slog.Logger
}

var _ docstore.Store = (*Store)(nil)

// Connect opens a client for uri and selects database and collection.
// Empty names fall back to DefaultDatabase and DefaultCollection.
// Connect does not verify reachability; call Ping for that.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo: connection uri is required")
	}
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := driver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	return New(client, client.Database(database).Collection(collection)), nil
}

// New wraps an existing client and collection.
func New(client *driver.Client, coll *driver.Collection) *Store {
	return &Store{
		client: client,
		coll:   coll,
		logger: slog.Default().With("component", "mongo-docstore"),
	}
}

// Insert adds doc to the collection. The driver assigns the _id.
func (s *Store) Insert(ctx context.Context, doc map[string]any) error {
	if doc == nil {
		return docstore.ErrNilDocument
	}

	res, err := s.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}

	s.logger.Debug("inserted document", "id", res.InsertedID)
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
