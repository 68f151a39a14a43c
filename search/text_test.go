package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase and accents", "Informática É Ótima", "informatica e otima"},
		{"cedilla and tilde", "Informações São Ações", "informacoes sao acoes"},
		{"punctuation becomes space", "Quais cursos são oferecidos?", "quais cursos sao oferecidos"},
		{"inner punctuation splits words", "Informática,Direito;Economia", "informatica direito economia"},
		{"whitespace collapsed", "  muitos \t espaços\n aqui  ", "muitos espacos aqui"},
		{"underscore kept", "nome_do_curso", "nome_do_curso"},
		{"digits kept", "Fundada em 1996.", "fundada em 1996"},
		{"only punctuation", "?!...", ""},
		{"ordinal indicators", "1º ano, 3ª série", "1o ano 3a serie"},
		{"ligature", "ﬁm do semestre", "fim do semestre"},
		{"letters without decomposition", "Ærø Straße", "aero strasse"},
		{"compatibility capitals", "ℌ", "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Olá, Mundo!",
		"Fale sobre os cursos disponíveis: Informática, Direito e Economia.",
		"Ação, reação & coração",
		"ÀÉÎÕÜ ç ñ",
		"İstanbul ǅemal ﬁnal",
		"tab\tnew\nline",
		"emoji 🎓 e símbolos ©®",
		"áb̧c",
		"___ -- __",
		"1º ano, 3ª série, Ærø",
		"ℌℑ ½ ǅ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestStopwordsNeverExtracted(t *testing.T) {
	for _, word := range stopwordList {
		assert.NotContains(t, ExtractKeywords(Normalize(word)), Normalize(word), "stopword %q", word)
		assert.True(t, IsStopword(word), "stopword %q", word)
	}
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("são"))
	assert.True(t, IsStopword("sao"))
	assert.True(t, IsStopword("Quais"))
	assert.False(t, IsStopword("cursos"))
	assert.False(t, IsStopword(""))
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"interrogatives removed", Normalize("Quais cursos são oferecidos?"), []string{"cursos", "oferecidos"}},
		{"short tokens removed", "ir ao rio", []string{"rio"}},
		{"numbers removed", "fundada em 1996", []string{"fundada"}},
		{"mixed tokens removed", "sala b12 bloco", []string{"sala", "bloco"}},
		{"underscore is not alphabetic", "nome_do_curso curso", []string{"curso"}},
		{"duplicates and order kept", "curso medicina curso", []string{"curso", "medicina", "curso"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.in))
		})
	}
}

func TestExtractKeywordsMin(t *testing.T) {
	assert.Equal(t, []string{"rio"}, ExtractKeywordsMin("ir rio", 3))
	assert.Equal(t, []string{"ir", "rio"}, ExtractKeywordsMin("ir rio", 2))
	assert.Equal(t, []string{}, ExtractKeywordsMin("ir rio", 4))
}

func TestCountHits(t *testing.T) {
	tokens := tokenSet("o curso de informatica")
	assert.Equal(t, 0, countHits(nil, tokens))
	assert.Equal(t, 1, countHits([]string{"curso", "direito"}, tokens))
	assert.Equal(t, 2, countHits([]string{"curso", "curso"}, tokens))
}
