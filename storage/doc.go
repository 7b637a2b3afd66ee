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

// Package storage provides the persistence abstraction for the catalog.
//
// Repositories never talk to a file or a database directly; they depend on
// Collection, a small capability set every backend provides:
//
//   - LoadAll: every record, in natural order
//   - ReplaceAll: substitute the whole collection
//   - FindMatching: records matching a declarative Filter
//   - InsertOne: append a single record
//   - AggregateTopN: top-n records by a Score expression
//
// # Backends
//
//   - recordset: a flat record set kept as one JSON document per collection
//     ({"books": [...]}) on a pluggable Medium (a directory of files, or a
//     BadgerDB key per collection, see storage/badger). Mutations are
//     serialized per collection.
//   - mongo: one document per record in a MongoDB collection. Filters and
//     scores are translated into native queries and aggregation pipelines.
//
// # Filters
//
// Filters cover the fixed query shapes the catalog needs: equality (Eq),
// boolean flag (Flag) and inclusive range (Between). They are plain data,
// so a backend may evaluate them in memory (Filter.Match, Apply, TopN) or
// translate them.
//
// # Thread Safety
//
// All Collection implementations must be safe for concurrent use.
package storage
