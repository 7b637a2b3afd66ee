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

package recordset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
)

// Collection implements storage.Collection as a flat record set: the whole
// collection is one JSON document {"<name>": [records...]} on a Medium.
//
// Mutations are a read-modify-write of that document, so they are
// serialized through a per-collection mutex. Reads take no lock; the Medium
// guarantees they observe a complete document.
type Collection[T storage.Record] struct {
	name   string
	medium Medium
	mu     sync.Mutex
	logger *slog.Logger
}

var (
	_ storage.Collection[core.Book]   = (*Collection[core.Book])(nil)
	_ storage.Collection[core.Review] = (*Collection[core.Review])(nil)
)

// Option configures a Collection.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns the record-set collection called name stored on medium.
func New[T storage.Record](name string, medium Medium, opts ...Option) *Collection[T] {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return &Collection[T]{
		name:   name,
		medium: medium,
		logger: o.logger.With("collection", name),
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// LoadAll returns every record in insertion order.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	return c.load(ctx)
}

// ReplaceAll rewrites the whole document with records.
func (c *Collection[T]) ReplaceAll(ctx context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, records)
}

// FindMatching loads the collection and filters it in memory.
func (c *Collection[T]) FindMatching(ctx context.Context, filter storage.Filter) ([]T, error) {
	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return storage.Apply(filter, records)
}

// InsertOne appends record. A record whose key is already present is
// rejected, so an existing record is never overwritten.
func (c *Collection[T]) InsertOne(ctx context.Context, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertRejected, err)
	}
	for _, existing := range records {
		if existing.Key() == record.Key() {
			return fmt.Errorf("%w: duplicate key %q in %s", storage.ErrInsertRejected, record.Key(), c.name)
		}
	}

	if err := c.store(ctx, append(records, record)); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInsertRejected, err)
	}
	return nil
}

// AggregateTopN ranks the collection in memory.
func (c *Collection[T]) AggregateTopN(ctx context.Context, score storage.Score, n int) ([]T, error) {
	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return storage.TopN(score, records, n)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.medium.Read(ctx, c.name)
	if err != nil {
		c.logger.Error("error reading record set", "err", err)
		return nil, fmt.Errorf("%w: reading %s: %w", storage.ErrStorage, c.name, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptData, c.name, err)
	}
	raw, ok := doc[c.name]
	if !ok {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptData, c.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// store must be called with c.mu held.
func (c *Collection[T]) store(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(map[string][]T{c.name: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", storage.ErrStorage, c.name, err)
	}
	if err := c.medium.Write(ctx, c.name, data); err != nil {
		c.logger.Error("error writing record set", "err", err)
		return fmt.Errorf("%w: writing %s: %w", storage.ErrStorage, c.name, err)
	}
	return nil
}
