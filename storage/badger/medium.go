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

package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bookstore/storage/recordset"
)

// Medium stores record-set documents in BadgerDB, one key per collection.
// A write is a single committed transaction, so readers always see a whole
// document.
type Medium struct {
	backend *Backend
}

var _ recordset.Medium = (*Medium)(nil)

// NewMedium creates a Medium over backend.
func NewMedium(backend *Backend) *Medium {
	return &Medium{backend: backend}
}

// Read returns the document stored for name, or nil if there is none.
func (m *Medium) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := m.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordSetKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	return data, err
}

// Write replaces the document stored for name.
func (m *Medium) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return m.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRecordSetKey(name), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
