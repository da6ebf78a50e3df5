package search

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// Normalized is the tokenized form of a piece of text: stemmed tokens plus
// word-level bigrams and trigrams for phrase scoring.
type Normalized struct {
	Tokens   []string
	Bigrams  []string
	Trigrams []string
}

// Normalize lowercases text, strips everything outside letters, digits,
// hyphen and underscore, splits into tokens and builds word n-grams.
// Hyphen and underscore act as token separators, so "seo_audit_url"
// yields the tokens seo, audit, url.
//
// Tokens of three letters or more are Porter2-stemmed so that inflected
// forms ("auditing", "audits") fold to one term. The function is pure and
// deterministic; cache keys depend on that.
func Normalize(text string) Normalized {
	tokens := tokenize(text)
	return Normalized{
		Tokens:   tokens,
		Bigrams:  ngrams(tokens, 2),
		Trigrams: ngrams(tokens, 3),
	}
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '-' || r == '_':
			return ' '
		default:
			return ' '
		}
	}, text)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, stem(f))
	}
	return tokens
}

// stem applies Porter2 to purely alphabetic tokens of length >= 3.
// Short tokens and tokens containing digits pass through unchanged.
func stem(token string) string {
	if len(token) < 3 {
		return token
	}
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return token
		}
	}
	return porter2.Stem(token)
}

// ngrams builds sliding-window n-grams over the token sequence.
func ngrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// CacheKeyText case-folds and whitespace-collapses text so trivially
// different spellings of the same query share a cache entry.
func CacheKeyText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
