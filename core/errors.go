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


package core

import "errors"

// Retrieval error kinds. Errors produced anywhere in the module wrap one of
// these so callers can classify failures with errors.Is.
var (
	// ErrCorpusLoad indicates the knowledge base file is missing or unreadable.
	ErrCorpusLoad = errors.New("knowledge base could not be loaded")

	// ErrEmbeddingModel indicates the embedding provider failed to initialize or to encode.
	ErrEmbeddingModel = errors.New("embedding model failure")

	// ErrScoring indicates an unexpected failure while computing similarity or scores.
	ErrScoring = errors.New("scoring failure")
)

// Domain validation errors
var (
	// ErrEmptyPassage indicates a passage with no visible text.
	ErrEmptyPassage = errors.New("passage cannot be empty")

	// ErrEmptyCorpus indicates a knowledge base without any passage.
	ErrEmptyCorpus = errors.New("corpus has no passages")
)

var (
	// ErrInvalidName indicates a knowledge base without a usable name.
	ErrInvalidName = errors.New("knowledge base name cannot be empty")
)
