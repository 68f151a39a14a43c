package badger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	return &KnowledgeRepository{
		backend: backend,
	}, nil
}

// Close releases resources. KnowledgeRepository has no resources to release.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// WithTransaction runs fn in a backend transaction shared by both repositories.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveCorpus stores corpus under name, replacing any previous version.
func (r *KnowledgeRepository) SaveCorpus(ctx context.Context, name, source string, corpus core.Corpus) (*core.KnowledgeBase, error) {
	kb, err := core.NewKnowledgeBase(name, source, corpus)
	if err != nil {
		return nil, err
	}

	err = r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeKnowledgeBaseKey(kb.Id)

		old, err := readKnowledgeBase(tx, key)
		if err != nil {
			return err
		}

		kb.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
		kb.InsertedAt = kb.UpdatedAt
		if old != nil {
			kb.InsertedAt = old.InsertedAt
		}

		return tx.Set(key, storage.MarshalKnowledgeBase(kb))
	})
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("saved knowledge base", "name", kb.Name, "passages", len(kb.Passages))
	return kb, nil
}

// GetCorpus returns the corpus stored under name.
func (r *KnowledgeRepository) GetCorpus(ctx context.Context, name string) (core.Corpus, error) {
	kb, err := r.GetKnowledgeBase(ctx, name)
	if err != nil {
		return core.Corpus{}, err
	}
	return kb.Corpus()
}

// GetKnowledgeBase returns the full record stored under name.
func (r *KnowledgeRepository) GetKnowledgeBase(ctx context.Context, name string) (*core.KnowledgeBase, error) {
	var result *core.KnowledgeBase
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readKnowledgeBase(tx, makeKnowledgeBaseKey(core.KnowledgeBaseID(name)))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// ListCorpora returns every stored knowledge base ordered by name.
func (r *KnowledgeRepository) ListCorpora(ctx context.Context) ([]*core.KnowledgeBase, error) {
	result := []*core.KnowledgeBase{}
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgeBasePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				kb, err := storage.UnmarshalKnowledgeBase(val)
				if err != nil {
					return err
				}
				result = append(result, kb)
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

	slices.SortFunc(result, func(a, b *core.KnowledgeBase) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// DeleteCorpus removes the knowledge base stored under name.
func (r *KnowledgeRepository) DeleteCorpus(ctx context.Context, name string) error {
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeKnowledgeBaseKey(core.KnowledgeBaseID(name))
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return tx.Delete(key)
	})
}

// SetEmbeddedModel records the model whose vectors cover the knowledge base.
func (r *KnowledgeRepository) SetEmbeddedModel(ctx context.Context, name, model string) error {
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeKnowledgeBaseKey(core.KnowledgeBaseID(name))
		kb, err := readKnowledgeBase(tx, key)
		if err != nil {
			return err
		}
		if kb == nil {
			return storage.ErrNotFound
		}

		kb.Model = model
		kb.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
		return tx.Set(key, storage.MarshalKnowledgeBase(kb))
	})
}

// readKnowledgeBase reads a record by key. Returns nil, nil if the key is absent.
func readKnowledgeBase(tx *badger.Txn, key []byte) (*core.KnowledgeBase, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var kb *core.KnowledgeBase
	err = item.Value(func(val []byte) error {
		var err error
		kb, err = storage.UnmarshalKnowledgeBase(val)
		return err
	})
	return kb, err
}
