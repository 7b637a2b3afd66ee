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

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
)

// DefaultTopRatedLimit is used when ListTopRated is given a non-positive limit.
const DefaultTopRatedLimit = 10

const (
	defaultLanguage  = "English"
	defaultPublisher = "Unknown"
)

var topRatedScore = storage.Product("rating", "reviewCount")

// BookRepository exposes the catalog's book queries and creation.
type BookRepository struct {
	books  storage.Collection[core.Book]
	now    func() time.Time
	ids    core.IDGenerator
	logger *slog.Logger
}

// NewBookRepository wraps books.
func NewBookRepository(books storage.Collection[core.Book], opts ...Option) *BookRepository {
	o := applyOptions(opts)
	return &BookRepository{
		books:  books,
		now:    o.now,
		ids:    o.ids,
		logger: o.logger,
	}
}

// ListAll returns every book in storage order.
func (r *BookRepository) ListAll(ctx context.Context) ([]core.Book, error) {
	return r.books.LoadAll(ctx)
}

// Get returns the book with id, or an error wrapping core.ErrNotFound.
func (r *BookRepository) Get(ctx context.Context, id string) (core.Book, error) {
	found, err := r.books.FindMatching(ctx, storage.Where(storage.Eq("id", id)))
	if err != nil {
		return core.Book{}, err
	}
	if len(found) == 0 {
		return core.Book{}, fmt.Errorf("%w: book %q", core.ErrNotFound, id)
	}
	return found[0], nil
}

// Exists reports whether a book with id is stored.
func (r *BookRepository) Exists(ctx context.Context, id string) (bool, error) {
	found, err := r.books.FindMatching(ctx, storage.Where(storage.Eq("id", id)))
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// ListFeatured returns books flagged as featured.
func (r *BookRepository) ListFeatured(ctx context.Context) ([]core.Book, error) {
	return r.books.FindMatching(ctx, storage.Where(storage.Flag("featured", true)))
}

// ListByDateRange returns books published between start and end, both
// inclusive. An inverted range matches nothing.
func (r *BookRepository) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Book, error) {
	return r.books.FindMatching(ctx, storage.Where(
		storage.Between("datePublished", start.Time(), end.Time()),
	))
}

// ListTopRated returns up to limit books ranked by rating times review
// count, highest first. Equal scores are ordered by id.
func (r *BookRepository) ListTopRated(ctx context.Context, limit int) ([]core.Book, error) {
	if limit <= 0 {
		limit = DefaultTopRatedLimit
	}
	return r.books.AggregateTopN(ctx, topRatedScore, limit)
}

// Create validates draft, fills defaults and stores the new book.
func (r *BookRepository) Create(ctx context.Context, draft *core.BookDraft) (core.Book, error) {
	if err := core.ValidateBookDraft(draft); err != nil {
		return core.Book{}, err
	}

	book := core.Book{
		ID:            r.ids.NewID(),
		Title:         draft.Title,
		Author:        draft.Author,
		Description:   draft.Description,
		Price:         *draft.Price,
		Image:         draft.Image,
		ISBN:          draft.ISBN,
		Genre:         dedupe(draft.Genre),
		Tags:          dedupe(draft.Tags),
		DatePublished: core.DateOf(r.now()),
		Language:      defaultLanguage,
		Publisher:     defaultPublisher,
		InStock:       true,
	}
	if draft.Pages != nil {
		book.Pages = *draft.Pages
	}
	if draft.Language != "" {
		book.Language = draft.Language
	}
	if draft.Publisher != "" {
		book.Publisher = draft.Publisher
	}
	if draft.InStock != nil {
		book.InStock = *draft.InStock
	}
	if draft.Featured != nil {
		book.Featured = *draft.Featured
	}

	if err := r.books.InsertOne(ctx, book); err != nil {
		r.logger.Error("error creating book", "id", book.ID, "err", err)
		return core.Book{}, err
	}
	r.logger.Debug("created book", "id", book.ID, "title", book.Title)
	return book, nil
}

// dedupe keeps the first occurrence of each value. It never returns nil.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
