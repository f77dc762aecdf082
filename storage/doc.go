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

// Package storage defines the record store that holds enriched articles.
//
// Three implementations are provided:
//
//   - memory: process-local map, the default
//   - badger: durable on-disk store
//   - redis: shared store for multi-instance deployments
//
// Public constructors return the RecordStore interface so callers never
// couple to a particular backend:
//
//	store := memory.NewStore()
//	defer store.Close()
//
// Records are immutable once saved. Saving an existing ID fails with
// ErrDuplicateKey instead of overwriting.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use by the ingestion
// pipeline and the HTTP layer.
package storage
