package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/educaia/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVectorRepo(t *testing.T) storage.VectorRepository {
	t.Helper()
	knowledgeRepo, vectorRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectorRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	})
	return vectorRepo
}

func TestPutAndGetVectors(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	texts := []string{"um", "dois"}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	require.NoError(t, repo.PutVectors(ctx, "m", texts, vectors))

	got, err := repo.GetVectors(ctx, "m", []string{"dois", "tres", "um"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float32{0.3, 0.4}, got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, []float32{0.1, 0.2}, got[2])
}

func TestVectors_ModelsAreIsolated(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutVectors(ctx, "a", []string{"texto"}, [][]float32{{1}}))

	got, err := repo.GetVectors(ctx, "b", []string{"texto"})
	require.NoError(t, err)
	assert.Nil(t, got[0])
}

func TestPutVectors_Invalid(t *testing.T) {
	repo := setupVectorRepo(t)

	err := repo.PutVectors(context.Background(), "m", []string{"a", "b"}, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	require.NoError(t, repo.PutVectors(context.Background(), "m", nil, nil))
}

func TestCountAndDeleteVectors(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	texts := make([]string, 25)
	vectors := make([][]float32, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("passagem %d", i)
		vectors[i] = []float32{float32(i)}
	}
	require.NoError(t, repo.PutVectors(ctx, "a", texts, vectors))
	require.NoError(t, repo.PutVectors(ctx, "b", texts[:5], vectors[:5]))

	count, err := repo.CountVectors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	count, err = repo.CountVectors(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	deleted, err := repo.DeleteVectors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 25, deleted)

	count, err = repo.CountVectors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = repo.CountVectors(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
