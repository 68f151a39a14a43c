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


// Package storage provides the storage abstraction layer for educaia.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. Two repositories exist:
//
//   - KnowledgeRepository: named knowledge bases (corpus plus metadata)
//   - VectorRepository: passage embeddings keyed by model and text
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	knowledge, vectors, backend, err := badger.NewRepositories(path, logger)
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	knowledge, vectors, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Serialization
//
// Records use a compact length-prefixed binary layout with a version byte.
// Vectors are stored as little-endian float32 values.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
