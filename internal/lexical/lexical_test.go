package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "lowercases and splits", input: "How Bonuses Are Taxed", expected: []string{"how", "bonuses", "are", "taxed"}},
		{name: "punctuation becomes a boundary", input: "tax-free, isn't it?", expected: []string{"tax", "free", "isn", "t", "it"}},
		{name: "keeps digits and underscores", input: "W-2 form_1040 22%", expected: []string{"w", "2", "form_1040", "22"}},
		{name: "unicode letters", input: "Café résumé", expected: []string{"café", "résumé"}},
		{name: "combining marks split tokens", input: "cafe\u0301 au lait", expected: []string{"cafe", "au", "lait"}},
		{name: "other numerics are word runes", input: "x² ½ cup", expected: []string{"x²", "½", "cup"}},
		{name: "collapses whitespace", input: "  a\t\tb\n\nc  ", expected: []string{"a", "b", "c"}},
		{name: "empty", input: "", expected: []string{}},
		{name: "only punctuation", input: "!!! ... ???", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestRemoveStopWords(t *testing.T) {
	tokens := []string{"the", "bonus", "is", "taxed", "at", "a", "flat", "rate", "by", "the", "irs"}
	assert.Equal(t, []string{"bonus", "taxed", "flat", "rate", "irs"}, RemoveStopWords(tokens))
	assert.Empty(t, RemoveStopWords(nil))
}

func TestStopWords(t *testing.T) {
	for _, w := range []string{"a", "the", "we", "you", "i", "very", "which"} {
		assert.True(t, IsStopWord(w), w)
	}
	assert.False(t, IsStopWord("The"))
	assert.False(t, IsStopWord("bonus"))
	assert.Equal(t, 63, StopWordCount())
}

func TestNGrams(t *testing.T) {
	tokens := []string{"bonus", "tax", "rate", "bonus", "tax"}

	t.Run("bigrams", func(t *testing.T) {
		assert.Equal(t, map[string]int{
			"bonus tax":  2,
			"tax rate":   1,
			"rate bonus": 1,
		}, NGrams(tokens, 2, 1))
	})

	t.Run("min frequency filters", func(t *testing.T) {
		got := NGrams(tokens, 2, 2)
		assert.Equal(t, map[string]int{"bonus tax": 2}, got)
		for _, c := range got {
			assert.GreaterOrEqual(t, c, 2)
		}
	})

	t.Run("n larger than token count", func(t *testing.T) {
		assert.Empty(t, NGrams(tokens, 6, 1))
		assert.Empty(t, NGrams(nil, 2, 1))
	})

	t.Run("n equals token count", func(t *testing.T) {
		assert.Equal(t, map[string]int{"bonus tax rate bonus tax": 1}, NGrams(tokens, 5, 1))
	})

	t.Run("non-positive n", func(t *testing.T) {
		assert.Empty(t, NGrams(tokens, 0, 1))
	})
}

func TestCounts(t *testing.T) {
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, Counts([]string{"a", "b", "a"}))
}

func TestTFIDF(t *testing.T) {
	docs := []string{
		"bonus tax rate explained",
		"the bonus is taxed",
		"salary guide",
	}

	t.Run("term in some documents", func(t *testing.T) {
		// tf = 1/4, idf = ln(3/2)
		assert.InDelta(t, 0.25*0.4054651081, TFIDF("bonus", docs[0], docs), 1e-9)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.InDelta(t, TFIDF("bonus", docs[0], docs), TFIDF("BONUS", docs[0], docs), 1e-12)
	})

	t.Run("term in every document scores zero", func(t *testing.T) {
		all := []string{"bonus a", "bonus b"}
		assert.Equal(t, 0.0, TFIDF("bonus", all[0], all))
	})

	t.Run("absent from document", func(t *testing.T) {
		assert.Equal(t, 0.0, TFIDF("salary", docs[0], docs))
	})

	t.Run("absent from every document", func(t *testing.T) {
		assert.Equal(t, 0.0, TFIDF("refund", "refund schedule", []string{"other", "texts"}))
	})

	t.Run("empty document set", func(t *testing.T) {
		assert.Equal(t, 0.0, TFIDF("bonus", docs[0], nil))
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, 0.0, TFIDF("bonus", "", docs))
	})

	t.Run("whitespace split keeps punctuation attached", func(t *testing.T) {
		// "bonus," is not the word "bonus".
		assert.Equal(t, 0.0, TFIDF("bonus", "bonus, taxed", docs))
	})
}

func TestPhraseTFIDF(t *testing.T) {
	docs := []string{
		"the refund schedule is posted. check the refund schedule",
		"no match here",
		"refund schedule delays",
	}

	// 2 occurrences in 9 words, present in 2 of 3 documents.
	assert.InDelta(t, (2.0/9.0)*0.4054651081, PhraseTFIDF("Refund Schedule", docs[0], docs), 1e-9)
	assert.Equal(t, 0.0, PhraseTFIDF("refund schedule", docs[1], docs))
	assert.Equal(t, 0.0, PhraseTFIDF("", docs[0], docs))
	assert.Equal(t, 0.0, PhraseTFIDF("refund schedule", docs[0], nil))
	assert.InDelta(t, TFIDF("refund", docs[2], docs), PhraseTFIDF("refund", docs[2], docs), 1e-12)
}
