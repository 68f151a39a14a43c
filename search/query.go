package search

// Query is a question analyzed for retrieval. It lives for a single call.
type Query struct {
	Raw          string
	Normalized   string
	Keywords     []string
	GenericBonus float64
}

// NewQuery analyzes raw with the default keyword length.
func NewQuery(raw string) Query {
	return newQuery(raw, DefaultKeywordMinLength)
}

func newQuery(raw string, minLength int) Query {
	normalized := Normalize(raw)
	return Query{
		Raw:          raw,
		Normalized:   normalized,
		Keywords:     ExtractKeywordsMin(normalized, minLength),
		GenericBonus: GenericBonus(normalized),
	}
}

// IsGeneric reports whether the question asks for an overview.
func (q Query) IsGeneric() bool {
	return q.GenericBonus > 0
}
