// Package mongofeed stores and serves records from a MongoDB collection.
//
// Documents use the feed.Record bson layout with the record id as _id.
// Tag search matches whole tokens of the space-delimited tags field.
package mongofeed

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/feed"
)

const (
	// DefaultDatabase and DefaultCollection name the record store.
	DefaultDatabase   = "collage"
	DefaultCollection = "photos"

	connectTimeout = 10 * time.Second
)

// Source reads records from a collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
	limit  int64
}

var _ feed.Source = (*Source)(nil)

// Connect dials uri and returns a source over database.collection. Empty
// names use the defaults.
func Connect(ctx context.Context, uri, database, collection string) (*Source, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &Source{
		client: client,
		coll:   client.Database(database).Collection(collection),
		limit:  feed.DefaultListLimit,
	}, nil
}

// SetListLimit changes how many records List returns.
func (s *Source) SetListLimit(n int) {
	if n > 0 {
		s.limit = int64(n)
	}
}

func (s *Source) List(ctx context.Context) ([]feed.Record, error) {
	return s.find(ctx, bson.D{}, s.limit)
}

func (s *Source) Search(ctx context.Context, tag string, limit int) ([]feed.Record, error) {
	if limit <= 0 {
		limit = feed.DefaultSearchLimit
	}
	return s.find(ctx, tagFilter(tag), int64(limit))
}

func (s *Source) find(ctx context.Context, filter bson.D, limit int64) ([]feed.Record, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find records")
	}
	var recs []feed.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records")
	}
	return recs, nil
}

// Upsert writes recs keyed by id and returns how many documents changed.
func (s *Source) Upsert(ctx context.Context, recs []feed.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	models := make([]mongo.WriteModel, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			return 0, errors.New(errors.ErrCodeInvalidInput, "record %d has no id", i)
		}
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: r.ID}}).
			SetReplacement(r).
			SetUpsert(true)
	}
	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNetwork, err, "upsert records")
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

// Drop removes the collection.
func (s *Source) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// tagFilter matches documents whose tags field contains tag as a token.
func tagFilter(tag string) bson.D {
	return bson.D{{Key: "tags", Value: bson.D{{Key: "$regex", Value: tagPattern(tag)}}}}
}

func tagPattern(tag string) string {
	return fmt.Sprintf(`(^|\s)%s(\s|$)`, regexp.QuoteMeta(tag))
}
