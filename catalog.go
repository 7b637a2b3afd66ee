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

package bookstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/bookstore/auth"
	"github.com/poiesic/bookstore/catalog"
	"github.com/poiesic/bookstore/config"
	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
	"github.com/poiesic/bookstore/storage/badger"
	"github.com/poiesic/bookstore/storage/mongo"
	"github.com/poiesic/bookstore/storage/recordset"
)

// Collection names shared by every backend.
const (
	BooksCollection   = "books"
	ReviewsCollection = "reviews"
)

// Catalog wires the repositories, the mutation gate and the backend
// resources they depend on.
type Catalog struct {
	bookStore   storage.Collection[core.Book]
	reviewStore storage.Collection[core.Review]
	books       *catalog.BookRepository
	reviews     *catalog.ReviewRepository
	gate        *auth.Gate
	closers     []func(context.Context) error
	logger      *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	logger   *slog.Logger
	repoOpts []catalog.Option
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRepositoryOptions passes opts to both repositories.
func WithRepositoryOptions(opts ...catalog.Option) CatalogOption {
	return func(o *catalogOptions) {
		o.repoOpts = append(o.repoOpts, opts...)
	}
}

func applyCatalogOptions(opts []CatalogOption) *catalogOptions {
	o := &catalogOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewCatalog opens the backend selected by cfg.
func NewCatalog(ctx context.Context, cfg *config.Config, opts ...CatalogOption) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyCatalogOptions(opts)

	switch cfg.Backend {
	case config.BackendMongo:
		client := mongo.NewClient(cfg.MongoURI, cfg.MongoDB, mongo.WithClientLogger(o.logger))
		db, err := client.Database(ctx)
		if err != nil {
			return nil, err
		}
		books := mongo.NewCollection[core.Book](db, BooksCollection, mongo.WithLogger(o.logger))
		reviews := mongo.NewCollection[core.Review](db, ReviewsCollection, mongo.WithLogger(o.logger))
		c := newCatalog(books, reviews, cfg.Secret, o)
		c.closers = append(c.closers, client.Close)
		return c, nil

	default:
		var (
			medium recordset.Medium
			closer func(context.Context) error
		)
		switch cfg.Medium {
		case config.MediumBadger:
			backend, err := badger.OpenBackend(cfg.BadgerPath(), false, badger.WithBackendLogger(o.logger))
			if err != nil {
				return nil, err
			}
			medium = badger.NewMedium(backend)
			closer = func(context.Context) error { return backend.Close() }
		default:
			dir, err := recordset.OpenDir(cfg.DataDir)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
			}
			medium = dir
		}
		books := recordset.New[core.Book](BooksCollection, medium, recordset.WithLogger(o.logger))
		reviews := recordset.New[core.Review](ReviewsCollection, medium, recordset.WithLogger(o.logger))
		c := newCatalog(books, reviews, cfg.Secret, o)
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
		return c, nil
	}
}

// NewCatalogWith builds a Catalog over existing collections. The caller
// keeps ownership of whatever backs them.
func NewCatalogWith(books storage.Collection[core.Book], reviews storage.Collection[core.Review], secret string, opts ...CatalogOption) *Catalog {
	return newCatalog(books, reviews, secret, applyCatalogOptions(opts))
}

func newCatalog(books storage.Collection[core.Book], reviews storage.Collection[core.Review], secret string, o *catalogOptions) *Catalog {
	repoOpts := append([]catalog.Option{catalog.WithLogger(o.logger)}, o.repoOpts...)
	return &Catalog{
		bookStore:   books,
		reviewStore: reviews,
		books:       catalog.NewBookRepository(books, repoOpts...),
		reviews:     catalog.NewReviewRepository(reviews, repoOpts...),
		gate:        auth.NewGate(secret),
		logger:      o.logger,
	}
}

// Close releases backend resources in reverse order of acquisition.
func (c *Catalog) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			c.logger.Error("error closing catalog backend", "err", err)
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Authorize reports whether credential may perform mutations. The returned
// error wraps core.ErrUnauthorized.
func (c *Catalog) Authorize(credential string) error {
	return c.gate.Check(credential)
}

// Books returns the book repository.
func (c *Catalog) Books() *catalog.BookRepository {
	return c.books
}

// Reviews returns the review repository. Its Create does not check that the
// book exists; use CreateReview for that.
func (c *Catalog) Reviews() *catalog.ReviewRepository {
	return c.reviews
}

// BookCollection returns the underlying book store, for seeding.
func (c *Catalog) BookCollection() storage.Collection[core.Book] {
	return c.bookStore
}

// ReviewCollection returns the underlying review store, for seeding.
func (c *Catalog) ReviewCollection() storage.Collection[core.Review] {
	return c.reviewStore
}

// CreateBook stores a new book if credential is accepted.
func (c *Catalog) CreateBook(ctx context.Context, credential string, draft *core.BookDraft) (core.Book, error) {
	return auth.Guard(c.gate, credential, func() (core.Book, error) {
		return c.books.Create(ctx, draft)
	})
}

// CreateReview stores a new review if credential is accepted and the
// reviewed book exists. An unknown book yields core.ErrNotFound and leaves
// the reviews untouched.
func (c *Catalog) CreateReview(ctx context.Context, credential string, draft *core.ReviewDraft) (core.Review, error) {
	return auth.Guard(c.gate, credential, func() (core.Review, error) {
		// Validated here as well as in Create so a malformed draft is
		// reported before the book lookup.
		if err := core.ValidateReviewDraft(draft); err != nil {
			return core.Review{}, err
		}
		ok, err := c.books.Exists(ctx, draft.BookID)
		if err != nil {
			return core.Review{}, err
		}
		if !ok {
			return core.Review{}, fmt.Errorf("%w: book %q", core.ErrNotFound, draft.BookID)
		}
		return c.reviews.Create(ctx, draft)
	})
}

// ReviewsForBook lists the reviews of an existing book.
func (c *Catalog) ReviewsForBook(ctx context.Context, bookID string) ([]core.Review, error) {
	ok, err := c.books.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: book %q", core.ErrNotFound, bookID)
	}
	return c.reviews.ListForBook(ctx, bookID)
}
