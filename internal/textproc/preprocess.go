// Package textproc normalizes raw user questions before embedding.
package textproc

import (
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/kljensen/snowball"
)

// snowballLanguages maps ISO 639-1 codes to snowball language names.
var snowballLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"hu": "hungarian",
}

// Preprocessor lowercases, tokenizes, strips stopwords, and stems user input.
type Preprocessor struct {
	langCode string
	stemLang string
}

// New creates a preprocessor for the given ISO language code (e.g. "es").
// Languages without a snowball stemmer keep tokens unstemmed.
func New(langCode string) *Preprocessor {
	return &Preprocessor{
		langCode: langCode,
		stemLang: snowballLanguages[langCode],
	}
}

// Normalize turns raw text into a canonical query string: lower-cased, split on
// word boundaries, stopwords removed, remaining tokens stemmed and rejoined with
// single spaces. Stopword-only or empty input yields an empty string.
func (p *Preprocessor) Normalize(text string) string {
	cleaned := stopwords.CleanString(strings.ToLower(text), p.langCode, false)

	tokens := strings.Fields(cleaned)
	for i, tok := range tokens {
		tokens[i] = p.stem(tok)
	}

	return strings.Join(tokens, " ")
}

func (p *Preprocessor) stem(token string) string {
	if p.stemLang == "" {
		return token
	}
	stemmed, err := snowball.Stem(token, p.stemLang, false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}
