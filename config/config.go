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

// Package config assembles service configuration from defaults, environment
// variables and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Backend names.
const (
	BackendRecordSet = "recordset"
	BackendMongo     = "mongo"
)

// Record-set media.
const (
	MediumFile   = "file"
	MediumBadger = "badger"
)

// Environment keys.
const (
	EnvBackend        = "BOOKSTORE_BACKEND"
	EnvMedium         = "BOOKSTORE_MEDIUM"
	EnvDataDir        = "BOOKSTORE_DATA_DIR"
	EnvBadgerDir      = "BOOKSTORE_BADGER_DIR"
	EnvMongoURI       = "MONGODB_URI"
	EnvMongoDB        = "MONGODB_DB"
	EnvSecret         = "SECRET_API_KEY"
	EnvHTTPAddr       = "HTTP_ADDR"
	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"
)

// DefaultSecret is the mutation secret used when none is configured.
const DefaultSecret = "amana-secret-key-123"

// DefaultEnvFiles are loaded by FromEnv when present.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds everything needed to build and serve a catalog.
type Config struct {
	// Backend selects the persistence store: "recordset" or "mongo".
	Backend string

	// Medium selects where record sets live: "file" or "badger".
	Medium string

	// DataDir holds one JSON document per collection for the file medium.
	DataDir string

	// BadgerDir is the badger database directory. Defaults to DataDir/badger.
	BadgerDir string

	// MongoURI and MongoDB locate the document database.
	MongoURI string
	MongoDB  string

	// Secret is the credential required for create operations.
	// An empty secret rejects every credential.
	Secret string

	// HTTPAddr is the listen address of the HTTP server.
	HTTPAddr string

	// RateLimitRPS and RateLimitBurst configure the per-client limiter.
	// A non-positive RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the persistence backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithMedium sets the record-set medium.
func WithMedium(medium string) ConfigOption {
	return func(c *Config) {
		c.Medium = medium
	}
}

// WithDataDir sets the record-set data directory.
func WithDataDir(dir string) ConfigOption {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithBadgerDir sets the badger database directory.
func WithBadgerDir(dir string) ConfigOption {
	return func(c *Config) {
		c.BadgerDir = dir
	}
}

// WithMongo sets the document database location.
func WithMongo(uri, db string) ConfigOption {
	return func(c *Config) {
		c.MongoURI = uri
		c.MongoDB = db
	}
}

// WithSecret sets the mutation secret. An empty secret is kept as given and
// makes every mutation fail authorization.
func WithSecret(secret string) ConfigOption {
	return func(c *Config) {
		c.Secret = secret
	}
}

// WithHTTPAddr sets the listen address.
func WithHTTPAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.HTTPAddr = addr
	}
}

// WithRateLimit sets the per-client request rate and burst.
func WithRateLimit(rps float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RateLimitRPS = rps
		c.RateLimitBurst = burst
	}
}

// DefaultConfig returns a file-backed record-set configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendRecordSet,
		Medium:         MediumFile,
		DataDir:        "data",
		Secret:         DefaultSecret,
		HTTPAddr:       ":4000",
		RateLimitRPS:   4,
		RateLimitBurst: 8,
	}
}

// NewConfig applies opts to the defaults.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadEnvFiles loads each existing file into the process environment.
// Variables already set are never overridden; missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: loading %s: %w", path, err)
		}
	}
	return nil
}

// FromEnv loads DefaultEnvFiles, then overlays environment variables and
// opts onto the defaults.
func FromEnv(opts ...ConfigOption) (*Config, error) {
	if err := LoadEnvFiles(DefaultEnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := FromLookup(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// FromLookup overlays the variables reported by lookup onto the defaults.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str(EnvBackend, &cfg.Backend)
	str(EnvMedium, &cfg.Medium)
	str(EnvDataDir, &cfg.DataDir)
	str(EnvBadgerDir, &cfg.BadgerDir)
	str(EnvMongoURI, &cfg.MongoURI)
	str(EnvMongoDB, &cfg.MongoDB)
	// A set but empty secret overrides the default and disables mutations.
	str(EnvSecret, &cfg.Secret)
	str(EnvHTTPAddr, &cfg.HTTPAddr)

	if v, ok := lookup(EnvRateLimitRPS); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvRateLimitRPS, err)
		}
		cfg.RateLimitRPS = rps
	}
	if v, ok := lookup(EnvRateLimitBurst); ok && v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvRateLimitBurst, err)
		}
		cfg.RateLimitBurst = burst
	}
	return cfg, nil
}

// BadgerPath returns BadgerDir, or DataDir/badger when unset.
func (c *Config) BadgerPath() string {
	if c.BadgerDir != "" {
		return c.BadgerDir
	}
	return filepath.Join(c.DataDir, "badger")
}

// Validate checks that the configuration is complete for its backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRecordSet:
		switch c.Medium {
		case MediumFile:
			if c.DataDir == "" {
				return errors.New("config: DataDir is required for the file medium")
			}
		case MediumBadger:
			if c.BadgerPath() == "" {
				return errors.New("config: BadgerDir is required for the badger medium")
			}
		default:
			return fmt.Errorf("config: unknown medium %q", c.Medium)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: %s is required for the mongo backend", EnvMongoURI)
		}
		if c.MongoDB == "" {
			return fmt.Errorf("config: %s is required for the mongo backend", EnvMongoDB)
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("config: RateLimitBurst must be at least 1 when limiting")
	}
	return nil
}
