package ai_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLazyEmbedder(t *testing.T) {
	_, err := ai.NewLazyEmbedder(nil, nil)
	assert.Equal(t, ai.ErrFactoryRequired, err)
}

func TestLazyEmbedder_InitializesOnFirstUse(t *testing.T) {
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	var calls atomic.Int32
	lazy, err := ai.NewLazyEmbedder(func(ctx context.Context) (ai.AIProvider, error) {
		calls.Add(1)
		return provider, nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, ai.StateUninitialized, lazy.State())
	assert.Equal(t, "", lazy.ModelName())
	assert.Equal(t, int32(0), calls.Load())

	vec, err := lazy.EmbedText(context.Background(), "olá")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
	assert.Equal(t, ai.StateReady, lazy.State())
	assert.Equal(t, "mock", lazy.ModelName())

	vecs, err := lazy.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazyEmbedder_FailureIsTerminal(t *testing.T) {
	cause := errors.New("model download failed")
	var calls atomic.Int32
	lazy, err := ai.NewLazyEmbedder(func(ctx context.Context) (ai.AIProvider, error) {
		calls.Add(1)
		return nil, cause
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := lazy.EmbedText(context.Background(), "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, ai.ErrProviderFailed)
		assert.ErrorIs(t, err, cause)
	}

	assert.Equal(t, ai.StateFailed, lazy.State())
	assert.Equal(t, cause, lazy.Err())
	assert.Equal(t, int32(1), calls.Load(), "factory must not be retried")
}

func TestLazyEmbedder_ResetAllowsRetry(t *testing.T) {
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	fail := true
	lazy, err := ai.NewLazyEmbedder(func(ctx context.Context) (ai.AIProvider, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return provider, nil
	}, nil)
	require.NoError(t, err)

	_, err = lazy.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, ai.StateFailed, lazy.State())

	fail = false
	require.NoError(t, lazy.Reset())
	assert.Equal(t, ai.StateUninitialized, lazy.State())
	assert.NoError(t, lazy.Err())

	p, err := lazy.Init(context.Background())
	require.NoError(t, err)
	assert.Same(t, provider, p)

	require.NoError(t, lazy.Reset())
	assert.True(t, provider.Closed(), "reset closes the built provider")
}

func TestLazyEmbedder_ConcurrentFirstCallsBuildOnce(t *testing.T) {
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	var calls atomic.Int32
	lazy, err := ai.NewLazyEmbedder(func(ctx context.Context) (ai.AIProvider, error) {
		calls.Add(1)
		return provider, nil
	}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lazy.EmbedText(context.Background(), "pergunta")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, ai.StateReady, lazy.State())
}

func TestLazyEmbedder_Close(t *testing.T) {
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	lazy, err := ai.NewLazyEmbedder(provider.Factory(), nil)
	require.NoError(t, err)

	_, err = lazy.Init(context.Background())
	require.NoError(t, err)

	require.NoError(t, lazy.Close())
	assert.True(t, provider.Closed())
	require.NoError(t, lazy.Close(), "second close is a no-op")

	_, err = lazy.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, ai.ErrClosed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", ai.StateUninitialized.String())
	assert.Equal(t, "ready", ai.StateReady.String())
	assert.Equal(t, "failed", ai.StateFailed.String())
	assert.Equal(t, "state(9)", ai.State(9).String())
}
