// Package textnorm turns free text into the normalized word lists used by
// skill matching and lexical answer scoring.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// minLemmaLength keeps short tokens such as "aws" or "css" from being
// singularized into something else.
const minLemmaLength = 4

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {},
}

// Words lower-cases text and returns its alphanumeric runs in order.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Lemma returns the singular noun form of word. Words that are short or
// contain digits are returned unchanged.
func Lemma(word string) string {
	if len(word) < minLemmaLength {
		return word
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return word
		}
	}
	return strings.ToLower(inflection.Singular(word))
}

// IsStopword reports whether word is dropped during normalization.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Normalize lower-cases, tokenizes and lemmatizes text, dropping stopwords.
func Normalize(text string) []string {
	words := Words(text)
	result := make([]string, 0, len(words))
	for _, w := range words {
		lemma := Lemma(w)
		if IsStopword(lemma) {
			continue
		}
		result = append(result, lemma)
	}
	return result
}

// Set builds a membership set from tokens.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
