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

package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/bookstore/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultConnectTimeout = 10 * time.Second

// Client owns the connection to a document database. It connects at most
// once: the first successful connection is reused until Close.
type Client struct {
	uri     string
	dbName  string
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithConnectTimeout bounds server selection and the initial ping.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientLogger sets the logger used for connection events.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns an unconnected Client for the database dbName at uri.
func NewClient(uri, dbName string, opts ...ClientOption) *Client {
	c := &Client{
		uri:     uri,
		dbName:  dbName,
		timeout: defaultConnectTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens and verifies the connection. Calling Connect on a connected
// Client is a no-op. A failed attempt leaves the Client unconnected and is
// not retried.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	if c.dbName == "" {
		return fmt.Errorf("%w: database name is empty", storage.ErrConnection)
	}

	opts := options.Client().
		ApplyURI(c.uri).
		SetServerSelectionTimeout(c.timeout).
		SetConnectTimeout(c.timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		c.logger.Error("error connecting to mongodb", "err", err)
		return fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		c.logger.Error("error pinging mongodb", "err", err)
		if derr := client.Disconnect(context.Background()); derr != nil {
			c.logger.Warn("error disconnecting after failed ping", "err", derr)
		}
		return fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}

	c.client = client
	c.db = client.Database(c.dbName)
	c.logger.Info("connected to mongodb", "database", c.dbName)
	return nil
}

// Database returns the configured database, connecting first if needed.
func (c *Client) Database(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c.db, nil
}

// IsConnected reports whether a connection is currently held.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

// Close disconnects. Closing an unconnected Client is a no-op.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.db = nil
	if err != nil {
		return fmt.Errorf("%w: disconnect: %w", storage.ErrConnection, err)
	}
	return nil
}
