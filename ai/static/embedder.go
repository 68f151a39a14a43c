// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package static

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/educaia/ai"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Dimensions is the length of every vector produced by Embedder.
const Dimensions = 256

// ModelName identifies vectors produced by this package.
const ModelName = "static-hash-256"

// Weights for vector generation
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// Embedder generates embeddings by hashing tokens and character trigrams.
// Works without network access or a model download. Accents are folded so
// "céu" and "ceu" land on the same buckets.
type Embedder struct {
	mu     sync.RWMutex
	closed bool
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a new static embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// EmbedText generates a unit vector for text. Blank text yields the zero vector.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ai.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folded := fold(text)
	if strings.TrimSpace(folded) == "" {
		return make([]float32, Dimensions), nil
	}
	return ai.NormalizeVector(generateVector(folded)), nil
}

// EmbedTexts generates embeddings for multiple texts, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		results[i] = vec
	}
	return results, nil
}

// Close marks the embedder closed.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func generateVector(text string) []float32 {
	vector := make([]float32, Dimensions)

	for _, token := range tokenize(text) {
		vector[hashToIndex(token)] += tokenWeight
	}

	for _, ngram := range extractNgrams(compact(text), ngramSize) {
		vector[hashToIndex(ngram)] += ngramWeight
	}

	return vector
}

// fold lowercases text and strips combining marks.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(out)
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// compact keeps letters and digits only, for n-gram extraction.
func compact(text string) []rune {
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

// extractNgrams extracts n-rune sliding windows.
func extractNgrams(text []rune, n int) []string {
	if len(text) < n {
		return []string{}
	}
	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, string(text[i:i+n]))
	}
	return ngrams
}

// hashToIndex uses FNV-64 to map a string to a bucket.
func hashToIndex(s string) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(Dimensions))
}
