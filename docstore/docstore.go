package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is the driver's own "no documents" sentinel so callers can
// use errors.Is regardless of which DocStore they hold.
var ErrNotFound = mongo.ErrNoDocuments

// FindOptions shapes a FindMany result. Zero values mean "not set".
type FindOptions struct {
	Sort       bson.D // e.g. bson.D{{Key: "name", Value: 1}}
	Limit      int64
	Projection bson.D // e.g. bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 0}}
}

func (o *FindOptions) toDriver() *options.FindOptions {
	findOptions := options.Find()
	if o == nil {
		return findOptions
	}
	if len(o.Sort) > 0 {
		findOptions.SetSort(o.Sort)
	}
	if o.Limit > 0 {
		findOptions.SetLimit(o.Limit)
	}
	if len(o.Projection) > 0 {
		findOptions.SetProjection(o.Projection)
	}
	return findOptions
}

// orEmpty turns a nil filter into the match-all document
func orEmpty(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

// DocStore defines a document store modeled after MongoDB collection
// operations. Filters, updates and documents are anything the bson package
// can marshal (bson.M, bson.D, tagged structs). Results are decoded into the
// pointer the caller passes.
type DocStore interface {
	InsertOne(ctx context.Context, collection string, document interface{}) (insertedID interface{}, err error)
	InsertMany(ctx context.Context, collection string, documents []interface{}) (insertedIDs []interface{}, err error)

	FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error
	FindMany(ctx context.Context, collection string, filter interface{}, results interface{}, opts *FindOptions) error

	// FindOneAndUpdate applies update to the first match and decodes the
	// document as it is after the update.
	FindOneAndUpdate(ctx context.Context, collection string, filter interface{}, update interface{}, result interface{}) error
	// FindOneAndDelete removes the first match and decodes the removed document.
	FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error

	ReplaceOne(ctx context.Context, collection string, filter interface{}, replacement interface{}) (matched int64, err error)
	DeleteMany(ctx context.Context, collection string, filter interface{}) (deleted int64, err error)
	CountDocuments(ctx context.Context, collection string, filter interface{}) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
