package docstore

import (
	"context"

	"peoplegomodule/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config defines the options used when connecting to a MongoDB instance
type Config struct {
	URI      string
	Database string
}

// MongoDocStore is the DocStore backed by one MongoDB client
type MongoDocStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ DocStore = (*MongoDocStore)(nil)

// NewMongoDocStore opens a client for cfg.URI and pings the primary.
// An unreachable server is logged and is not treated as fatal: the store is
// returned and operations surface the driver's errors. Only an unusable URI
// fails here.
func NewMongoDocStore(ctx context.Context, cfg Config, logger logging.Logger) (*MongoDocStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.WithError(err).Error("Error connecting to MongoDB")
		return nil, err
	}

	store := &MongoDocStore{client: client, db: client.Database(cfg.Database)}
	if err := store.Ping(ctx); err != nil {
		logger.WithError(err).Error("Error connecting to MongoDB")
		return store, nil
	}

	logger.Infow("Connected to MongoDB successfully!", "database", cfg.Database)
	return store, nil
}

// NewMongoDocStoreFromClient wraps an already connected client
func NewMongoDocStoreFromClient(client *mongo.Client, database string) *MongoDocStore {
	return &MongoDocStore{client: client, db: client.Database(database)}
}

// Database exposes the underlying database handle
func (m *MongoDocStore) Database() *mongo.Database {
	return m.db
}

func (m *MongoDocStore) InsertOne(ctx context.Context, collection string, document interface{}) (interface{}, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (m *MongoDocStore) InsertMany(ctx context.Context, collection string, documents []interface{}) ([]interface{}, error) {
	res, err := m.db.Collection(collection).InsertMany(ctx, documents)
	var ids []interface{}
	if res != nil {
		ids = res.InsertedIDs
	}
	return ids, err
}

func (m *MongoDocStore) FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	return m.db.Collection(collection).FindOne(ctx, orEmpty(filter)).Decode(result)
}

func (m *MongoDocStore) FindMany(ctx context.Context, collection string, filter interface{}, results interface{}, opts *FindOptions) error {
	cursor, err := m.db.Collection(collection).Find(ctx, orEmpty(filter), opts.toDriver())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

func (m *MongoDocStore) FindOneAndUpdate(ctx context.Context, collection string, filter interface{}, update interface{}, result interface{}) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return m.db.Collection(collection).FindOneAndUpdate(ctx, orEmpty(filter), update, opts).Decode(result)
}

func (m *MongoDocStore) FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	return m.db.Collection(collection).FindOneAndDelete(ctx, orEmpty(filter)).Decode(result)
}

func (m *MongoDocStore) ReplaceOne(ctx context.Context, collection string, filter interface{}, replacement interface{}) (int64, error) {
	res, err := m.db.Collection(collection).ReplaceOne(ctx, orEmpty(filter), replacement)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (m *MongoDocStore) DeleteMany(ctx context.Context, collection string, filter interface{}) (int64, error) {
	res, err := m.db.Collection(collection).DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoDocStore) CountDocuments(ctx context.Context, collection string, filter interface{}) (int64, error) {
	return m.db.Collection(collection).CountDocuments(ctx, orEmpty(filter))
}

func (m *MongoDocStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDocStore) Close() error {
	return m.client.Disconnect(context.Background())
}
