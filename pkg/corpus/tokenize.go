package corpus

import (
	"strings"
	"unicode"
)

// Lucene stop words list.
var stopwords = map[string]bool{
	"a":     true,
	"an":    true,
	"and":   true,
	"are":   true,
	"as":    true,
	"at":    true,
	"be":    true,
	"but":   true,
	"by":    true,
	"for":   true,
	"if":    true,
	"in":    true,
	"into":  true,
	"is":    true,
	"it":    true,
	"no":    true,
	"not":   true,
	"of":    true,
	"on":    true,
	"or":    true,
	"such":  true,
	"that":  true,
	"the":   true,
	"their": true,
	"then":  true,
	"there": true,
	"these": true,
	"they":  true,
	"this":  true,
	"to":    true,
	"was":   true,
	"will":  true,
	"with":  true,
}

// Tokenize lower-cases the text and splits it into runs of letters and
// digits. Punctuation never survives.
func Tokenize(text string) []string {
	var tokens []string
	var currentToken strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			currentToken.WriteRune(r)
		} else if currentToken.Len() > 0 {
			tokens = append(tokens, currentToken.String())
			currentToken.Reset()
		}
	}
	if currentToken.Len() > 0 {
		tokens = append(tokens, currentToken.String())
	}

	return tokens
}

// DropStopwords filters the Lucene stopword set out of tokens.
func DropStopwords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !stopwords[t] {
			kept = append(kept, t)
		}
	}
	return kept
}

// IsStopword reports whether t is in the stopword set.
func IsStopword(t string) bool { return stopwords[t] }
