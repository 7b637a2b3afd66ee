// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// scoreField is the transient field holding a computed ranking score.
const scoreField = "__score"

var (
	_ storage.Collection[core.Book]   = (*Collection[core.Book])(nil)
	_ storage.Collection[core.Review] = (*Collection[core.Review])(nil)
)

// Collection is a storage.Collection backed by a document collection.
type Collection[T storage.Record] struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// CollectionOption configures a Collection.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for rejected writes.
func WithLogger(logger *slog.Logger) CollectionOption {
	return func(o *collectionOptions) {
		o.logger = logger
	}
}

// NewCollection binds name in db.
func NewCollection[T storage.Record](db *mongo.Database, name string, opts ...CollectionOption) *Collection[T] {
	o := collectionOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Collection[T]{coll: db.Collection(name), logger: o.logger.With("collection", name)}
}

// LoadAll returns every document in natural order.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.D{})
}

// ReplaceAll deletes every document and inserts records.
func (c *Collection[T]) ReplaceAll(ctx context.Context, records []T) error {
	if _, err := c.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("%w: clearing %s: %w", storage.ErrStorage, c.coll.Name(), err)
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = r
	}
	if _, err := c.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%w: loading %s: %w", storage.ErrStorage, c.coll.Name(), err)
	}
	return nil
}

// FindMatching translates filter into a query document.
func (c *Collection[T]) FindMatching(ctx context.Context, filter storage.Filter) ([]T, error) {
	query, err := FilterToBSON[T](filter)
	if err != nil {
		return nil, err
	}
	return c.find(ctx, query)
}

// InsertOne stores record. Any driver failure rejects the insert.
func (c *Collection[T]) InsertOne(ctx context.Context, record T) error {
	if _, err := c.coll.InsertOne(ctx, record); err != nil {
		c.logger.Error("insert rejected", "key", record.Key(), "err", err)
		return fmt.Errorf("%w: %w", storage.ErrInsertRejected, err)
	}
	return nil
}

// AggregateTopN ranks documents server side.
func (c *Collection[T]) AggregateTopN(ctx context.Context, score storage.Score, n int) ([]T, error) {
	if n <= 0 {
		return []T{}, nil
	}
	pipeline, err := TopNPipeline[T](score, n)
	if err != nil {
		return nil, err
	}
	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate %s: %w", storage.ErrStorage, c.coll.Name(), err)
	}
	return decodeAll[T](ctx, cur)
}

func (c *Collection[T]) find(ctx context.Context, query any) ([]T, error) {
	cur, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %w", storage.ErrStorage, c.coll.Name(), err)
	}
	return decodeAll[T](ctx, cur)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrCorruptData, err)
	}
	return out, nil
}

// FilterToBSON translates filter into a query document. Field names are
// checked against T so both backends reject the same filters.
func FilterToBSON[T storage.Record](filter storage.Filter) (bson.D, error) {
	var zero T
	query := bson.D{}
	for _, cond := range filter.Conditions {
		if _, ok := zero.Field(cond.Field); !ok {
			return nil, fmt.Errorf("%w: unknown field %q", storage.ErrInvalidQuery, cond.Field)
		}
		switch cond.Op {
		case storage.OpEq:
			query = append(query, bson.E{Key: cond.Field, Value: cond.Value})
		case storage.OpRange:
			query = append(query, bson.E{Key: cond.Field, Value: bson.D{
				{Key: "$gte", Value: cond.Min},
				{Key: "$lte", Value: cond.Max},
			}})
		default:
			return nil, fmt.Errorf("%w: unsupported operator %d", storage.ErrInvalidQuery, cond.Op)
		}
	}
	return query, nil
}

// TopNPipeline builds the aggregation ranking documents by score
// descending with ties broken by id ascending.
func TopNPipeline[T storage.Record](score storage.Score, n int) (mongo.Pipeline, error) {
	if len(score.Factors) == 0 {
		return nil, fmt.Errorf("%w: empty score expression", storage.ErrInvalidQuery)
	}
	var zero T
	factors := make(bson.A, len(score.Factors))
	for i, name := range score.Factors {
		if _, ok := zero.Field(name); !ok {
			return nil, fmt.Errorf("%w: unknown field %q", storage.ErrInvalidQuery, name)
		}
		factors[i] = "$" + name
	}

	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: scoreField, Value: bson.D{{Key: "$multiply", Value: factors}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: scoreField, Value: -1}, {Key: "id", Value: 1}}}},
		{{Key: "$limit", Value: int64(n)}},
		{{Key: "$project", Value: bson.D{{Key: scoreField, Value: 0}}}},
	}, nil
}
