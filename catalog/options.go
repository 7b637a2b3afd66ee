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
	"log/slog"
	"time"

	"github.com/poiesic/bookstore/core"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	now    func() time.Time
	ids    core.IDGenerator
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		ids:    core.UUIDGenerator{},
		logger: slog.Default(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator sets the generator used for new entity ids.
func WithIDGenerator(ids core.IDGenerator) Option {
	return func(o *options) {
		if ids != nil {
			o.ids = ids
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
