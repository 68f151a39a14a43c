package search

import "math"

// Default weights of the semantic and lexical terms.
const (
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3
)

// Combine merges a similarity score with keyword overlap using the default weights.
func Combine(similarity float64, keywords []string, candidateNormalized string) float64 {
	return CombineWeighted(similarity, keywords, candidateNormalized, DefaultSemanticWeight, DefaultKeywordWeight)
}

// CombineWeighted returns similarity*ws' + overlap*wk' where ws' and wk' are the
// weights divided by their sum and overlap is the share of keywords found among
// the candidate's tokens. No keywords means zero overlap. A non-positive or
// non-finite weight sum falls back to the default weights.
func CombineWeighted(similarity float64, keywords []string, candidateNormalized string, ws, wk float64) float64 {
	return combineTokens(similarity, keywords, tokenSet(candidateNormalized), ws, wk)
}

func combineTokens(similarity float64, keywords []string, tokens map[string]struct{}, ws, wk float64) float64 {
	return combineHits(similarity, countHits(keywords, tokens), len(keywords), ws, wk)
}

func combineHits(similarity float64, hits, total int, ws, wk float64) float64 {
	ws, wk = normalizeWeights(ws, wk)
	overlap := 0.0
	if total > 0 {
		overlap = float64(hits) / float64(total)
	}
	return similarity*ws + overlap*wk
}

func normalizeWeights(ws, wk float64) (float64, float64) {
	sum := ws + wk
	if !(sum > 0) || math.IsInf(sum, 0) {
		ws, wk = DefaultSemanticWeight, DefaultKeywordWeight
		sum = ws + wk
	}
	return ws / sum, wk / sum
}
