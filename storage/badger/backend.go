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
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns a BadgerDB instance holding record-set documents.
type Backend struct {
	db     *badger.DB
	path   string
	logger *slog.Logger
}

// BackendOption configures OpenBackend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	syncWrites bool
	logger     *slog.Logger
}

// WithSyncWrites makes every commit wait for an fsync.
func WithSyncWrites(sync bool) BackendOption {
	return func(c *backendConfig) {
		c.syncWrites = sync
	}
}

// WithBackendLogger routes badger's internal log output to logger.
func WithBackendLogger(logger *slog.Logger) BackendOption {
	return func(c *backendConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// slogAdapter satisfies badger.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Info(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the database at path, creating the directory if
// needed. With inMemory set, path is ignored and nothing touches disk.
func OpenBackend(path string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	cfg := backendConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var bopts badger.Options
	if inMemory {
		path = ""
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(path).WithSyncWrites(cfg.syncWrites)
	}
	bopts.Logger = &slogAdapter{logger: cfg.logger.With("component", "badger")}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, path: path, logger: cfg.logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Path returns the database directory, or "" for an in-memory backend.
func (b *Backend) Path() string {
	return b.path
}

// Close closes the database.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		b.logger.Error("error closing badger", "path", b.path, "err", err)
		return err
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn in a transaction, read-write when isWrite is set. fn must
// commit a write transaction itself; the transaction is always discarded
// afterwards.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
