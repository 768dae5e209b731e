package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
	seqstore "github.com/xraph/docseq/store"
)

// Collection name constants.
const (
	colCounters = "docseq_counters"
)

// compile-time interface check
var _ seqstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
//
// Increments use a single FindOneAndUpdate with upsert, so creation and
// increment happen in one server-side atomic operation.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the counter collection.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("docseq/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Counter Store ====================

func (s *Store) NextValue(ctx context.Context, key, prefix string) (int64, error) {
	update := bson.M{
		"$inc":         bson.M{"sequence": int64(1)},
		"$setOnInsert": bson.M{"prefix": prefix},
		"$set":         bson.M{"lastUpdated": now()},
	}

	m, err := s.upsertCounter(ctx, key, update)
	if err != nil {
		return 0, fmt.Errorf("docseq/mongo: next value: %w", err)
	}
	return m.Sequence, nil
}

func (s *Store) PeekValue(ctx context.Context, key string) (int64, error) {
	var m counterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("docseq/mongo: peek value: %w", err)
	}
	return m.Sequence + 1, nil
}

func (s *Store) SeedCounter(ctx context.Context, key, prefix string, baseline int64) (int64, error) {
	update := bson.M{
		"$max":         bson.M{"sequence": baseline},
		"$setOnInsert": bson.M{"prefix": prefix},
		"$set":         bson.M{"lastUpdated": now()},
	}

	m, err := s.upsertCounter(ctx, key, update)
	if err != nil {
		return 0, fmt.Errorf("docseq/mongo: seed counter: %w", err)
	}
	return m.Sequence, nil
}

func (s *Store) GetCounter(ctx context.Context, key string) (*counter.Counter, error) {
	var m counterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, docseq.ErrCounterNotFound
		}
		return nil, fmt.Errorf("docseq/mongo: get counter: %w", err)
	}
	return fromCounterModel(&m), nil
}

func (s *Store) ListCounters(ctx context.Context, opts counter.ListOpts) ([]*counter.Counter, error) {
	var models []counterModel

	filter := bson.M{}
	if opts.KeyPrefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(opts.KeyPrefix)}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("docseq/mongo: list counters: %w", err)
	}

	result := make([]*counter.Counter, 0, len(models))
	for i := range models {
		result = append(result, fromCounterModel(&models[i]))
	}
	return result, nil
}

// upsertCounter applies update to the counter document for key, creating it
// if needed, and returns the document after the update. Two concurrent
// upserts of a missing key can race on the unique _id; the loser gets a
// duplicate key error and is retried once, at which point the document
// exists and the update applies normally.
func (s *Store) upsertCounter(ctx context.Context, key string, update bson.M) (*counterModel, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var m counterModel
	err := s.mdb.Collection(colCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).
		Decode(&m)
	if mongo.IsDuplicateKeyError(err) {
		err = s.mdb.Collection(colCounters).
			FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).
			Decode(&m)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ==================== Backfill ====================

// NumberSource returns a backfill source that reads the string field of
// every document in collection matching filter. Documents where the field
// is missing or not a string are counted but never match a prefix.
func (s *Store) NumberSource(collection, field string, filter bson.M) backfill.Source {
	return backfill.SourceFunc(func(ctx context.Context, fn func(string) error) error {
		if filter == nil {
			filter = bson.M{}
		}
		findOpts := options.Find().SetProjection(bson.M{field: 1})

		cursor, err := s.mdb.Collection(collection).Find(ctx, filter, findOpts)
		if err != nil {
			return fmt.Errorf("docseq/mongo: number source %s: %w", collection, err)
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc bson.M
			if err := cursor.Decode(&doc); err != nil {
				return fmt.Errorf("docseq/mongo: number source decode: %w", err)
			}
			n, _ := doc[field].(string)
			if err := fn(n); err != nil {
				return err
			}
		}
		return cursor.Err()
	})
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the docseq collections.
// _id carries the uniqueness of the series key, so only listing indexes are
// declared here.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCounters: {
			{Keys: bson.D{{Key: "prefix", Value: 1}}},
			{Keys: bson.D{{Key: "lastUpdated", Value: -1}}},
		},
	}
}
