package storage

import (
	"context"

	"github.com/poiesic/educaia/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// Repository calls made with the ctx passed to fn take part in it.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// KnowledgeRepository stores named knowledge bases.
type KnowledgeRepository interface {
	Repository

	// SaveCorpus stores corpus under name, replacing any previous version.
	// InsertedAt is kept across replacements; UpdatedAt is refreshed and the
	// embedded model is cleared because the passages may have changed.
	SaveCorpus(ctx context.Context, name, source string, corpus core.Corpus) (*core.KnowledgeBase, error)

	// GetCorpus returns the corpus stored under name.
	// Returns ErrNotFound if no knowledge base has that name.
	GetCorpus(ctx context.Context, name string) (core.Corpus, error)

	// GetKnowledgeBase returns the full record stored under name.
	// Returns ErrNotFound if no knowledge base has that name.
	GetKnowledgeBase(ctx context.Context, name string) (*core.KnowledgeBase, error)

	// ListCorpora returns every stored knowledge base ordered by name.
	ListCorpora(ctx context.Context) ([]*core.KnowledgeBase, error)

	// DeleteCorpus removes the knowledge base stored under name.
	// Returns ErrNotFound if no knowledge base has that name.
	DeleteCorpus(ctx context.Context, name string) error

	// SetEmbeddedModel records that every passage of name has vectors for model.
	// Returns ErrNotFound if no knowledge base has that name.
	SetEmbeddedModel(ctx context.Context, name, model string) error
}

// VectorRepository persists passage embeddings per model.
// Entries are keyed by model and text, so identical passages shared by
// several knowledge bases are stored once.
type VectorRepository interface {
	Repository

	// GetVectors returns vectors aligned with texts. Missing entries are nil.
	GetVectors(ctx context.Context, model string, texts []string) ([][]float32, error)

	// PutVectors stores vectors[i] for texts[i].
	// Returns ErrInvalidQuery if the slices differ in length.
	PutVectors(ctx context.Context, model string, texts []string, vectors [][]float32) error

	// CountVectors returns the number of vectors stored for model.
	CountVectors(ctx context.Context, model string) (int, error)

	// DeleteVectors removes every vector stored for model and returns how many were removed.
	DeleteVectors(ctx context.Context, model string) (int, error)
}
