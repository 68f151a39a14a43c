package knowledge

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/educaia/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu       sync.Mutex
	corpora  []core.Corpus
	statuses []string
}

func (r *reloads) record(corpus core.Corpus, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpora = append(r.corpora, corpus)
	r.statuses = append(r.statuses, status)
}

func (r *reloads) last() (core.Corpus, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.corpora) == 0 {
		return core.Corpus{}, "", 0
	}
	return r.corpora[len(r.corpora)-1], r.statuses[len(r.statuses)-1], len(r.corpora)
}

func TestNewWatcher(t *testing.T) {
	path := writeFile(t, "um")

	_, err := NewWatcher(path, nil)
	assert.Error(t, err)

	_, err = NewWatcher(path, func(core.Corpus, string) {}, WithDebounce(-time.Second))
	assert.Error(t, err)

	w, err := NewWatcher(path, func(core.Corpus, string) {}, WithLogger(nil))
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_ReloadsDoNotOverlap(t *testing.T) {
	path := writeFile(t, "versão um")

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		calls    int
	)
	w, err := NewWatcher(path, func(core.Corpus, string) {
		mu.Lock()
		inFlight++
		calls++
		maxSeen = max(maxSeen, inFlight)
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Stop()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reload()
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, calls)
	assert.Equal(t, 1, maxSeen)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "versão um")
	rec := &reloads{}

	w, err := NewWatcher(path, rec.record, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the event loop a moment to start.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("versão dois\nmais uma linha\n"), 0644))

	assert.Eventually(t, func() bool {
		corpus, _, _ := rec.last()
		return corpus.Len() == 2
	}, 3*time.Second, 20*time.Millisecond)

	_, status, _ := rec.last()
	assert.Equal(t, "knowledge base loaded: 2 passages", status)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeFile(t, "um")
	rec := &reloads{}

	w, err := NewWatcher(path, rec.record, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	go func() { _ = w.Run(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path+".bak", []byte("outro"), 0644))
	time.Sleep(200 * time.Millisecond)

	_, _, n := rec.last()
	assert.Equal(t, 0, n)
}

func TestWatcher_StopEndsRun(t *testing.T) {
	path := writeFile(t, "um")
	w, err := NewWatcher(path, func(core.Corpus, string) {})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWatcherStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
