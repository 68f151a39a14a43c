package reembed

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/storage"
	"github.com/poiesic/educaia/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (storage.KnowledgeRepository, storage.VectorRepository) {
	t.Helper()
	knowledge, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return knowledge, vectors
}

func saveCorpus(t *testing.T, repo storage.KnowledgeRepository, name string, passages ...string) {
	t.Helper()
	corpus, err := core.NewCorpus(passages)
	require.NoError(t, err)
	_, err = repo.SaveCorpus(context.Background(), name, "test", corpus)
	require.NoError(t, err)
}

type visit struct {
	name  string
	batch []string
	last  bool
}

func TestPassageIterator_Batches(t *testing.T) {
	knowledge, _ := setupTestDB(t)
	saveCorpus(t, knowledge, "beta", "b1", "b2")
	saveCorpus(t, knowledge, "alpha", "a1", "a2", "a3", "a4", "a5")

	it := NewPassageIterator(knowledge, 2)

	bases, passages, err := it.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, bases)
	assert.Equal(t, 7, passages)

	var visits []visit
	err = it.ForEach(context.Background(), func(kb *core.KnowledgeBase, batch []string, last bool) error {
		visits = append(visits, visit{kb.Name, append([]string(nil), batch...), last})
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []visit{
		{"alpha", []string{"a1", "a2"}, false},
		{"alpha", []string{"a3", "a4"}, false},
		{"alpha", []string{"a5"}, true},
		{"beta", []string{"b1", "b2"}, true},
	}, visits)
}

func TestPassageIterator_DefaultBatchSize(t *testing.T) {
	knowledge, _ := setupTestDB(t)
	it := NewPassageIterator(knowledge, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}

func TestPassageIterator_Empty(t *testing.T) {
	knowledge, _ := setupTestDB(t)
	calls := 0
	err := NewPassageIterator(knowledge, 10).ForEach(context.Background(), func(*core.KnowledgeBase, []string, bool) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestPassageIterator_StopsOnError(t *testing.T) {
	knowledge, _ := setupTestDB(t)
	saveCorpus(t, knowledge, "kb", "p1", "p2", "p3")

	boom := errors.New("boom")
	calls := 0
	err := NewPassageIterator(knowledge, 1).ForEach(context.Background(), func(*core.KnowledgeBase, []string, bool) error {
		calls++
		return boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestPassageIterator_ContextCanceled(t *testing.T) {
	knowledge, _ := setupTestDB(t)
	saveCorpus(t, knowledge, "kb", "p1", "p2", "p3")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewPassageIterator(knowledge, 1).ForEach(ctx, func(*core.KnowledgeBase, []string, bool) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
