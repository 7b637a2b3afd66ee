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

package storage

import "errors"

var (
	// ErrStorage indicates an I/O failure in the backing medium.
	ErrStorage = errors.New("storage failure")

	// ErrInsertRejected indicates that the backend refused an insert.
	ErrInsertRejected = errors.New("insert rejected")

	// ErrConnection indicates that the backend could not be reached.
	ErrConnection = errors.New("storage connection failed")

	// ErrInvalidQuery indicates a filter or score that cannot be evaluated.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrCorruptData indicates stored data that cannot be decoded.
	ErrCorruptData = errors.New("corrupt stored data")
)
