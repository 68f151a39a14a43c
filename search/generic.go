package search

import "strings"

// GenericQueryBonus is added to the similarity of passages above threshold
// when the question asks for an overview.
const GenericQueryBonus = 0.2

// genericMarkers are matched as substrings of the normalized question, in order.
var genericMarkers = []string{
	"fale sobre",
	"conte sobre",
	"descreva",
	"explique",
	"informacoes sobre",
	"o que e",
	"quem e",
	"me diga",
}

// GenericBonus returns GenericQueryBonus if normalizedQuery contains a generic
// marker, otherwise 0.
func GenericBonus(normalizedQuery string) float64 {
	if IsGeneric(normalizedQuery) {
		return GenericQueryBonus
	}
	return 0
}

// IsGeneric reports whether normalizedQuery contains a generic marker.
func IsGeneric(normalizedQuery string) bool {
	for _, marker := range genericMarkers {
		if strings.Contains(normalizedQuery, marker) {
			return true
		}
	}
	return false
}
