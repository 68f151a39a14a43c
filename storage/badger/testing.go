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
	"log/slog"

	"github.com/poiesic/educaia/storage"
)

// NewRepositories opens a BadgerDB database at path and returns the knowledge
// and vector repositories sharing it. Caller must close the backend when done.
func NewRepositories(path string, logger *slog.Logger) (storage.KnowledgeRepository, storage.VectorRepository, *Backend, error) {
	return newRepositories(path, false, logger)
}

// NewMemoryRepositories creates in-memory knowledge and vector repositories for testing.
// Returns knowledgeRepo, vectorRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.KnowledgeRepository, storage.VectorRepository, *Backend, error) {
	return newRepositories("", true, nil)
}

func newRepositories(path string, inMemory bool, logger *slog.Logger) (storage.KnowledgeRepository, storage.VectorRepository, *Backend, error) {
	backend, err := OpenBackend(path, inMemory, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	knowledgeRepo, err := NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	vectorRepo, err := NewVectorRepository(backend)
	if err != nil {
		knowledgeRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return knowledgeRepo, vectorRepo, backend, nil
}
