package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/educaia/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReembedder_Validation(t *testing.T) {
	knowledge, vectors := setupTestDB(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewReembedder(nil, vectors, embedder, "m", nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewReembedder(knowledge, nil, embedder, "m", nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewReembedder(knowledge, vectors, nil, "m", nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
	_, err = NewReembedder(knowledge, vectors, embedder, "  ", nil, nil)
	assert.ErrorIs(t, err, ErrModelRequired)
	_, err = NewReembedder(knowledge, vectors, embedder, "m", &Config{BatchSize: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestReembedder_Run(t *testing.T) {
	knowledge, vectors := setupTestDB(t)
	ctx := context.Background()
	saveCorpus(t, knowledge, "cursos", "c1", "c2", "c3", "c4")
	saveCorpus(t, knowledge, "campus", "k1", "k2", "k3", "k4", "k5", "k6")

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}
	r, err := NewReembedder(knowledge, vectors, unnormalizedEmbedder(), "m1", config, &buf)
	require.NoError(t, err)

	summary, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.KnowledgeBases)
	assert.Equal(t, 10, summary.Passages)

	count, err := vectors.CountVectors(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	for _, name := range []string{"cursos", "campus"} {
		kb, err := knowledge.GetKnowledgeBase(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "m1", kb.Model)
	}

	stored, err := vectors.GetVectors(ctx, "m1", []string{"c1"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(stored[0]), 0.01, "vector should be normalized")

	assert.Contains(t, buf.String(), "10/10", "should show completion")
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	knowledge, vectors := setupTestDB(t)

	var buf bytes.Buffer
	r, err := NewReembedder(knowledge, vectors, mock.NewMockEmbedder(), "m1", DefaultConfig(), &buf)
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Passages)
	assert.Contains(t, buf.String(), "No passages found")
}

func TestReembedder_Purge(t *testing.T) {
	knowledge, vectors := setupTestDB(t)
	ctx := context.Background()
	saveCorpus(t, knowledge, "kb", "p1")
	require.NoError(t, vectors.PutVectors(ctx, "m1", []string{"stale"}, [][]float32{{1, 0, 0}}))

	config := DefaultConfig()
	config.Purge = true
	r, err := NewReembedder(knowledge, vectors, unnormalizedEmbedder(), "m1", config, nil)
	require.NoError(t, err)

	summary, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Purged)

	stored, err := vectors.GetVectors(ctx, "m1", []string{"stale", "p1"})
	require.NoError(t, err)
	assert.Nil(t, stored[0])
	assert.NotNil(t, stored[1])
}

func TestReembedder_FailureLeavesModelUnset(t *testing.T) {
	knowledge, vectors := setupTestDB(t)
	ctx := context.Background()
	saveCorpus(t, knowledge, "kb", "p1", "p2")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}
	config := &Config{BatchSize: 1, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
	r, err := NewReembedder(knowledge, vectors, embedder, "m1", config, nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")

	kb, err := knowledge.GetKnowledgeBase(ctx, "kb")
	require.NoError(t, err)
	assert.Empty(t, kb.Model)
}
