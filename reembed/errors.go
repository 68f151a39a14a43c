package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrRepositoryRequired is returned when a knowledge or vector repository is missing.
	ErrRepositoryRequired = errors.New("repository required")

	// ErrModelRequired is returned when the model name is blank.
	ErrModelRequired = errors.New("model name required")
)
