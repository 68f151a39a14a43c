package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/educaia/storage"
)

// deleteBatchSize bounds the number of deletes per transaction.
const deleteBatchSize = 1000

// VectorRepository implements storage.VectorRepository for BadgerDB.
// It also satisfies cached.VectorStore.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	return &VectorRepository{
		backend: backend,
	}, nil
}

// Close releases resources. VectorRepository has no resources to release.
func (r *VectorRepository) Close() error {
	return nil
}

// WithTransaction runs fn in a backend transaction shared by both repositories.
func (r *VectorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetVectors returns vectors aligned with texts. Missing entries are nil.
func (r *VectorRepository) GetVectors(ctx context.Context, model string, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		for i, text := range texts {
			item, err := tx.Get(makeVectorKey(model, text))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				vector, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				result[i] = vector
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutVectors stores vectors[i] for texts[i].
func (r *VectorRepository) PutVectors(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("%w: %d texts, %d vectors", storage.ErrInvalidQuery, len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if tx, ok := txFromContext(ctx); ok {
		for i, text := range texts {
			if err := tx.Set(makeVectorKey(model, text), storage.MarshalVector(vectors[i])); err != nil {
				return err
			}
		}
		return nil
	}

	wb := r.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for i, text := range texts {
		if err := wb.Set(makeVectorKey(model, text), storage.MarshalVector(vectors[i])); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// CountVectors returns the number of vectors stored for model.
func (r *VectorRepository) CountVectors(ctx context.Context, model string) (int, error) {
	count := 0
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		return r.backend.scanKeys(tx, makeVectorModelPrefix(model), func([]byte) error {
			count++
			return nil
		})
	})
	return count, err
}

// DeleteVectors removes every vector stored for model.
func (r *VectorRepository) DeleteVectors(ctx context.Context, model string) (int, error) {
	var keys [][]byte
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		return r.backend.scanKeys(tx, makeVectorModelPrefix(model), func(key []byte) error {
			keys = append(keys, key)
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		err := r.backend.update(ctx, func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return start, err
		}
	}

	r.backend.logger.Debug("deleted vectors", "model", model, "count", len(keys))
	return len(keys), nil
}
