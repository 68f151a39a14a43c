package static

import (
	"context"
	"testing"

	"github.com/poiesic/educaia/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedText(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()

	t.Run("unit length and fixed dimension", func(t *testing.T) {
		vec, err := e.EmbedText(ctx, "A universidade foi fundada em 1996.")
		require.NoError(t, err)
		assert.Len(t, vec, Dimensions)

		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.EmbedText(ctx, "cursos de graduação")
		require.NoError(t, err)
		b, err := e.EmbedText(ctx, "cursos de graduação")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("accents and case are folded", func(t *testing.T) {
		a, err := e.EmbedText(ctx, "Céu AZUL")
		require.NoError(t, err)
		b, err := e.EmbedText(ctx, "ceu azul")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("blank text is zero vector", func(t *testing.T) {
		vec, err := e.EmbedText(ctx, "   ")
		require.NoError(t, err)
		assert.Equal(t, make([]float32, Dimensions), vec)
	})

	t.Run("related text is closer than unrelated", func(t *testing.T) {
		q, err := e.EmbedText(ctx, "Quais cursos a universidade oferece?")
		require.NoError(t, err)
		related, err := e.EmbedText(ctx, "A universidade oferece cursos de Medicina e Direito.")
		require.NoError(t, err)
		unrelated, err := e.EmbedText(ctx, "O restaurante abre às sete.")
		require.NoError(t, err)

		simRelated, err := ai.CosineSimilarity(q, related)
		require.NoError(t, err)
		simUnrelated, err := ai.CosineSimilarity(q, unrelated)
		require.NoError(t, err)
		assert.Greater(t, simRelated, simUnrelated)
	})
}

func TestEmbedTexts(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()

	texts := []string{"primeiro", "segundo", "terceiro"}
	batch, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := e.EmbedText(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}

	empty, err := e.EmbedTexts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClosedEmbedder(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Close())

	_, err := e.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrClosed)

	_, err = e.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ai.ErrClosed)
}

func TestProvider(t *testing.T) {
	p, err := Factory(nil)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModelName, p.ModelName())

	_, err = p.Embedder().EmbedText(context.Background(), "olá")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	_, err = p.Embedder().EmbedText(context.Background(), "olá")
	assert.ErrorIs(t, err, ai.ErrClosed)
}

func TestExtractNgrams(t *testing.T) {
	assert.Equal(t, []string{"ceu"}, extractNgrams([]rune("ceu"), 3))
	assert.Equal(t, []string{"aba", "bac"}, extractNgrams([]rune("abac"), 3))
	assert.Empty(t, extractNgrams([]rune("ab"), 3))
}
