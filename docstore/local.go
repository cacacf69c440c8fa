package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const localDatabase = "local"

// LocalDocStore is an in-process DocStore on the lungo engine. Queries,
// updates, sorting and projection follow MongoDB semantics. With a snapshot
// path every committed write is stored to that file and loaded on open.
type LocalDocStore struct {
	client lungo.IClient
	engine *lungo.Engine
	db     lungo.IDatabase
}

var _ DocStore = (*LocalDocStore)(nil)

// NewLocalDocStore creates an empty store, or loads snapshotPath when the
// file exists. An empty snapshotPath keeps everything in memory.
func NewLocalDocStore(snapshotPath string) (*LocalDocStore, error) {
	var store lungo.Store = lungo.NewMemoryStore()
	if snapshotPath != "" {
		if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		store = lungo.NewFileStore(snapshotPath, 0o644)
	}

	client, engine, err := lungo.Open(context.Background(), lungo.Options{Store: store})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", snapshotPath, err)
	}
	return &LocalDocStore{
		client: client,
		engine: engine,
		db:     client.Database(localDatabase),
	}, nil
}

// collection checks ctx before handing out the collection
func (s *LocalDocStore) collection(ctx context.Context, name string) (lungo.ICollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.Collection(name), nil
}

func (s *LocalDocStore) InsertOne(ctx context.Context, collection string, document interface{}) (interface{}, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	res, err := coll.InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (s *LocalDocStore) InsertMany(ctx context.Context, collection string, documents []interface{}) ([]interface{}, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	res, err := coll.InsertMany(ctx, documents)
	var ids []interface{}
	if res != nil {
		ids = res.InsertedIDs
	}
	return ids, err
}

func (s *LocalDocStore) FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	return coll.FindOne(ctx, orEmpty(filter)).Decode(result)
}

func (s *LocalDocStore) FindMany(ctx context.Context, collection string, filter interface{}, results interface{}, opts *FindOptions) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	cursor, err := coll.Find(ctx, orEmpty(filter), opts.toDriver())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

func (s *LocalDocStore) FindOneAndUpdate(ctx context.Context, collection string, filter interface{}, update interface{}, result interface{}) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return coll.FindOneAndUpdate(ctx, orEmpty(filter), update, opts).Decode(result)
}

func (s *LocalDocStore) FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	return coll.FindOneAndDelete(ctx, orEmpty(filter)).Decode(result)
}

func (s *LocalDocStore) ReplaceOne(ctx context.Context, collection string, filter interface{}, replacement interface{}) (int64, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.ReplaceOne(ctx, orEmpty(filter), replacement)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *LocalDocStore) DeleteMany(ctx context.Context, collection string, filter interface{}) (int64, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *LocalDocStore) CountDocuments(ctx context.Context, collection string, filter interface{}) (int64, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, orEmpty(filter))
}

func (s *LocalDocStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Close stops the engine. Writes are already on disk when a snapshot is set.
func (s *LocalDocStore) Close() error {
	s.engine.Close()
	return nil
}
