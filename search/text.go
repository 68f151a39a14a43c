package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultKeywordMinLength is the minimum rune length of a keyword.
const DefaultKeywordMinLength = 3

// Portuguese function words and interrogatives. Stored normalized at init.
var stopwordList = []string{
	"a", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo", "as", "até",
	"com", "como", "da", "das", "de", "dela", "delas", "dele", "deles", "depois",
	"do", "dos", "e", "ela", "elas", "ele", "eles", "em", "entre", "era",
	"eram", "essa", "essas", "esse", "esses", "esta", "estas", "este", "estes", "eu",
	"foi", "foram", "há", "isso", "isto", "já", "lhe", "lhes", "mais", "mas",
	"me", "mesmo", "meu", "meus", "minha", "minhas", "muito", "na", "nas", "nem",
	"no", "nos", "nós", "nossa", "nossas", "nosso", "nossos", "num", "numa", "o",
	"os", "ou", "para", "pela", "pelas", "pelo", "pelos", "por", "qual", "quando",
	"que", "quem", "são", "se", "seja", "sejam", "sem", "será", "seu", "seus",
	"só", "somos", "sua", "suas", "também", "te", "tem", "tém", "têm", "temos",
	"ter", "teu", "teus", "tua", "tuas", "um", "uma", "umas", "uns", "você",
	"vocês", "vos", "vosso", "vossos", "quais", "onde", "porque", "quantos", "quantas", "quanto",
	"quanta", "é", "está", "estão", "seria", "seriam", "pode", "podem", "deve", "devem",
}

var stopwords = func() map[string]struct{} {
	set := make(map[string]struct{}, len(stopwordList))
	for _, w := range stopwordList {
		set[Normalize(w)] = struct{}{}
	}
	return set
}()

// Normalize lowercases text, strips diacritics, replaces every rune that is not
// a letter, digit, underscore or space with a space, collapses whitespace and
// trims. It is total and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)
	folded, _, err := transform.String(accentFolder(), lowered)
	if err != nil {
		folded = lowered
	}
	// Compatibility forms may decompose to capitals, e.g. ℌ.
	folded = letterFolder.Replace(strings.ToLower(folded))

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, folded)

	return strings.Join(strings.Fields(cleaned), " ")
}

// accentFolder applies compatibility decomposition, drops nonspacing marks and
// recomposes, so º, ª and ligatures such as ﬁ fold to plain letters.
// Transformers are stateful so a fresh chain is built per call.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// letterFolder spells out lowercase letters that have no decomposition.
var letterFolder = strings.NewReplacer(
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ß", "ss",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
)

// IsStopword reports whether word is a stopword. word is normalized first.
func IsStopword(word string) bool {
	_, ok := stopwords[Normalize(word)]
	return ok
}

// ExtractKeywords returns the content words of normalized text using
// DefaultKeywordMinLength.
func ExtractKeywords(normalized string) []string {
	return ExtractKeywordsMin(normalized, DefaultKeywordMinLength)
}

// ExtractKeywordsMin keeps each whitespace-separated token that is not a
// stopword, has at least minLength runes and is purely alphabetic.
// Order and duplicates are preserved.
func ExtractKeywordsMin(normalized string, minLength int) []string {
	tokens := strings.Fields(normalized)
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopwords[token]; stop {
			continue
		}
		if utf8.RuneCountInString(token) < minLength {
			continue
		}
		if !isAlpha(token) {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

func isAlpha(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return token != ""
}

// tokenSet splits normalized text on whitespace into a set.
func tokenSet(normalized string) map[string]struct{} {
	tokens := strings.Fields(normalized)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// countHits counts keywords present in tokens. Duplicate keywords count each time.
func countHits(keywords []string, tokens map[string]struct{}) int {
	hits := 0
	for _, k := range keywords {
		if _, ok := tokens[k]; ok {
			hits++
		}
	}
	return hits
}
