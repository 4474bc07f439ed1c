// Package lexical computes local text statistics: tokens, stop-word
// filtering, n-gram frequencies and TF-IDF over a fixed document set.
//
// Every function is pure and safe for concurrent use. Degenerate inputs
// (empty documents, empty document sets, absent terms) yield zero values.
package lexical

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize lowercases text, replaces every rune that is neither a word
// character nor whitespace with a space, and splits on whitespace.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}

// isWordRune matches letters, any numeric rune and underscore. Combining
// marks are not word runes, so a decomposed accent splits the token.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// RemoveStopWords returns tokens without the closed English stop-word set.
func RemoveStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// NGrams counts sliding windows of n tokens joined by a single space.
// Entries below minFrequency are dropped. The result is empty when n is
// not positive or exceeds the token count.
func NGrams(tokens []string, n, minFrequency int) map[string]int {
	counts := make(map[string]int)
	if n <= 0 || n > len(tokens) {
		return counts
	}
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	for gram, c := range counts {
		if c < minFrequency {
			delete(counts, gram)
		}
	}
	return counts
}

// Counts returns the frequency of each token.
func Counts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// TFIDF scores term in document against documents.
//
// Term frequency counts case-insensitive whitespace-split words equal to
// term, divided by the word count of document. Inverse document frequency
// is ln(len(documents) / documents containing term as a case-insensitive
// substring). Returns 0 when term is absent from document or from every
// document.
func TFIDF(term, document string, documents []string) float64 {
	t := strings.ToLower(term)
	words := strings.Fields(strings.ToLower(document))
	count := 0
	for _, w := range words {
		if w == t {
			count++
		}
	}
	return tfidf(t, count, len(words), documents)
}

// PhraseTFIDF is TFIDF for a multi-word term. The phrase is counted as a
// run of consecutive whitespace-split words of document.
func PhraseTFIDF(phrase, document string, documents []string) float64 {
	parts := strings.Fields(strings.ToLower(phrase))
	if len(parts) == 0 {
		return 0
	}
	words := strings.Fields(strings.ToLower(document))
	count := 0
	for i := 0; i+len(parts) <= len(words); i++ {
		if equalWords(words[i:i+len(parts)], parts) {
			count++
		}
	}
	return tfidf(strings.Join(parts, " "), count, len(words), documents)
}

func tfidf(term string, count, total int, documents []string) float64 {
	if count == 0 || total == 0 || term == "" {
		return 0
	}
	tf := float64(count) / float64(total)

	containing := 0
	for _, doc := range documents {
		if strings.Contains(strings.ToLower(doc), term) {
			containing++
		}
	}
	if containing == 0 {
		return 0
	}
	return tf * math.Log(float64(len(documents))/float64(containing))
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
