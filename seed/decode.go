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

package seed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/bookstore/core"
)

// DecodeBooks reads a {"books":[...]} fixture. Numeric fields may be given
// as strings and dates as timestamps.
func DecodeBooks(r io.Reader) ([]core.Book, error) {
	return decodeRecordSet[core.Book](r, "books")
}

// DecodeReviews reads a {"reviews":[...]} fixture. Ratings may be given as
// strings and timestamps as bare dates.
func DecodeReviews(r io.Reader) ([]core.Review, error) {
	return decodeRecordSet[core.Review](r, "reviews")
}

func decodeRecordSet[T any](r io.Reader, name string) ([]T, error) {
	var doc map[string][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFixture, name, err)
	}
	raw, ok := doc[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q array", ErrFixture, name)
	}
	records := make([]T, 0, len(raw))
	for i, rec := range raw {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrFixture, name, i, err)
		}
		records = append(records, v)
	}
	return records, nil
}
