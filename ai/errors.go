package ai

import "errors"

var (
	// ErrProviderFailed is returned by a LazyEmbedder whose initialization failed.
	// The handle stays failed until Reset is called.
	ErrProviderFailed = errors.New("embedding provider failed to initialize")

	// ErrFactoryRequired is returned when a LazyEmbedder is built without a factory.
	ErrFactoryRequired = errors.New("provider factory required")

	// ErrClosed is returned when an embedder is used after Close.
	ErrClosed = errors.New("embedder is closed")

	// ErrEmbeddingMismatch is returned when a provider returns a different number
	// of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
