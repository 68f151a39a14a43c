package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineWeighted_NoKeywordsIsPureSemantic(t *testing.T) {
	weights := [][2]float64{{0.7, 0.3}, {1, 1}, {2, 3}, {0.01, 5}, {10, 0.5}}
	similarities := []float64{-0.5, 0, 0.42, 1, 1.2}

	for _, w := range weights {
		for _, s := range similarities {
			want := s * w[0] / (w[0] + w[1])
			assert.InDelta(t, want, CombineWeighted(s, nil, "qualquer texto", w[0], w[1]), 1e-12)
			assert.InDelta(t, want, CombineWeighted(s, []string{}, "", w[0], w[1]), 1e-12)
		}
	}
}

func TestCombine(t *testing.T) {
	candidate := "o curso de informatica dura 4 anos"

	t.Run("full overlap", func(t *testing.T) {
		assert.InDelta(t, 0.5*0.7+0.3, Combine(0.5, []string{"curso", "informatica"}, candidate), 1e-12)
	})

	t.Run("partial overlap", func(t *testing.T) {
		assert.InDelta(t, 0.5*0.7+0.5*0.3, Combine(0.5, []string{"curso", "direito"}, candidate), 1e-12)
	})

	t.Run("duplicate keywords each count", func(t *testing.T) {
		got := Combine(0, []string{"curso", "curso", "direito"}, candidate)
		assert.InDelta(t, 2.0/3.0*0.3, got, 1e-12)
	})

	t.Run("token match is exact", func(t *testing.T) {
		assert.InDelta(t, 0.0, Combine(0, []string{"cursos"}, candidate), 1e-12)
	})
}

func TestCombineWeighted_DegenerateWeights(t *testing.T) {
	want := Combine(0.5, []string{"curso"}, "curso")
	assert.InDelta(t, want, CombineWeighted(0.5, []string{"curso"}, "curso", 0, 0), 1e-12)
	assert.InDelta(t, want, CombineWeighted(0.5, []string{"curso"}, "curso", -1, -2), 1e-12)
	assert.InDelta(t, want, CombineWeighted(0.5, []string{"curso"}, "curso", math.Inf(1), 1), 1e-12)
	assert.InDelta(t, want, CombineWeighted(0.5, []string{"curso"}, "curso", math.NaN(), 1), 1e-12)
}
