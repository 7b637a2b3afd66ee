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

// Package seed loads fixture record sets into a catalog backend.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
)

// Fixture file names inside a seed directory.
const (
	BooksFile   = "books.json"
	ReviewsFile = "reviews.json"
)

// ErrFixture indicates a fixture that cannot be read or converted.
var ErrFixture = errors.New("invalid fixture")

// Result reports how many records were loaded into each collection.
type Result struct {
	Books   int
	Reviews int
}

// Seeder replaces the contents of the book and review collections.
type Seeder struct {
	books   storage.Collection[core.Book]
	reviews storage.Collection[core.Review]
	pool    *ants.Pool
	logger  *slog.Logger
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the seeder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder returns a Seeder writing to books and reviews. Call Release
// when done.
func NewSeeder(books storage.Collection[core.Book], reviews storage.Collection[core.Review], opts ...Option) (*Seeder, error) {
	// One worker per collection.
	pool, err := ants.NewPool(2)
	if err != nil {
		return nil, err
	}
	s := &Seeder{
		books:   books,
		reviews: reviews,
		pool:    pool,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Release stops the worker pool.
func (s *Seeder) Release() {
	s.pool.Release()
}

// SeedDir reads BooksFile and ReviewsFile from dir and seeds both
// collections.
func (s *Seeder) SeedDir(ctx context.Context, dir string) (Result, error) {
	books, err := readFixture(filepath.Join(dir, BooksFile), DecodeBooks)
	if err != nil {
		return Result{}, err
	}
	reviews, err := readFixture(filepath.Join(dir, ReviewsFile), DecodeReviews)
	if err != nil {
		return Result{}, err
	}
	return s.Seed(ctx, books, reviews)
}

// Seed clears each collection and loads the given records. Books and
// reviews are written concurrently; a failure in one does not stop the
// other.
func (s *Seeder) Seed(ctx context.Context, books []core.Book, reviews []core.Review) (Result, error) {
	var (
		wg        sync.WaitGroup
		res       Result
		bookErr   error
		reviewErr error
	)

	wg.Add(2)
	if err := s.pool.Submit(func() {
		defer wg.Done()
		bookErr = s.books.ReplaceAll(ctx, books)
		if bookErr == nil {
			res.Books = len(books)
			s.logger.Info("seeded books", "count", len(books))
		}
	}); err != nil {
		wg.Done()
		bookErr = err
	}
	if err := s.pool.Submit(func() {
		defer wg.Done()
		reviewErr = s.reviews.ReplaceAll(ctx, reviews)
		if reviewErr == nil {
			res.Reviews = len(reviews)
			s.logger.Info("seeded reviews", "count", len(reviews))
		}
	}); err != nil {
		wg.Done()
		reviewErr = err
	}
	wg.Wait()

	if bookErr != nil {
		s.logger.Error("error seeding books", "err", bookErr)
		bookErr = fmt.Errorf("seeding books: %w", bookErr)
	}
	if reviewErr != nil {
		s.logger.Error("error seeding reviews", "err", reviewErr)
		reviewErr = fmt.Errorf("seeding reviews: %w", reviewErr)
	}
	return res, errors.Join(bookErr, reviewErr)
}

func readFixture[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixture, err)
	}
	defer f.Close()
	return decode(f)
}
