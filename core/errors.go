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

package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors
var (
	// ErrValidation indicates that a draft is missing or has a malformed required field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates that no Book or Review exists with the requested id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or incorrect credential on a mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidBook indicates a BookDraft failed validation.
	ErrInvalidBook = fmt.Errorf("%w: invalid book", ErrValidation)

	// ErrInvalidReview indicates a ReviewDraft failed validation.
	ErrInvalidReview = fmt.Errorf("%w: invalid review", ErrValidation)

	// ErrInvalidDate indicates a value that cannot be read as a calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRating indicates a rating that is not a whole number.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidNumber indicates a stored numeric field that cannot be read
	// as a number.
	ErrInvalidNumber = errors.New("invalid number")
)

// FieldErrors maps a field name to the first problem found with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + fe[k]
	}
	return strings.Join(parts, "; ")
}
