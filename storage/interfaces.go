package storage

import "context"

// Record is an entity that can be stored in a Collection.
// Field exposes values by wire name so filters and scores can be evaluated
// without reflection; Key returns the business id.
type Record interface {
	Key() string
	Field(name string) (any, bool)
}

// Collection is the persistence capability set shared by every backend.
// Implementations must be safe for concurrent use.
type Collection[T Record] interface {
	// LoadAll returns every record in the backend's natural order.
	LoadAll(ctx context.Context) ([]T, error)

	// ReplaceAll substitutes the entire stored collection with records.
	// Either the whole collection is replaced or an error is returned.
	ReplaceAll(ctx context.Context, records []T) error

	// FindMatching returns the records satisfying every condition in filter,
	// in the backend's natural order.
	FindMatching(ctx context.Context, filter Filter) ([]T, error)

	// InsertOne appends a single record.
	// Returns an error wrapping ErrInsertRejected if the backend refuses it.
	InsertOne(ctx context.Context, record T) error

	// AggregateTopN returns up to n records ordered by score descending,
	// ties broken by Key ascending.
	AggregateTopN(ctx context.Context, score Score, n int) ([]T, error)
}
