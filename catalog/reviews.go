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
	"log/slog"
	"time"

	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage"
)

// ReviewRepository exposes review queries and creation. It never checks
// that the referenced book exists and never updates book aggregates.
type ReviewRepository struct {
	reviews storage.Collection[core.Review]
	now     func() time.Time
	ids     core.IDGenerator
	logger  *slog.Logger
}

// NewReviewRepository wraps reviews.
func NewReviewRepository(reviews storage.Collection[core.Review], opts ...Option) *ReviewRepository {
	o := applyOptions(opts)
	return &ReviewRepository{
		reviews: reviews,
		now:     o.now,
		ids:     o.ids,
		logger:  o.logger,
	}
}

// ListForBook returns the reviews of bookID in storage order. Unknown ids
// yield an empty slice.
func (r *ReviewRepository) ListForBook(ctx context.Context, bookID string) ([]core.Review, error) {
	return r.reviews.FindMatching(ctx, storage.Where(storage.Eq("bookId", bookID)))
}

// Create validates draft and stores the new review.
func (r *ReviewRepository) Create(ctx context.Context, draft *core.ReviewDraft) (core.Review, error) {
	if err := core.ValidateReviewDraft(draft); err != nil {
		return core.Review{}, err
	}

	review := core.Review{
		ID:        r.ids.NewID(),
		BookID:    draft.BookID,
		Author:    draft.Author,
		Rating:    *draft.Rating,
		Title:     draft.Title,
		Comment:   draft.Comment,
		Timestamp: r.now().UTC(),
	}
	if draft.Verified != nil {
		review.Verified = *draft.Verified
	}

	if err := r.reviews.InsertOne(ctx, review); err != nil {
		r.logger.Error("error creating review", "id", review.ID, "err", err)
		return core.Review{}, err
	}
	r.logger.Debug("created review", "id", review.ID, "book", review.BookID)
	return review, nil
}
