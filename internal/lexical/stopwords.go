package lexical

// stopWords is the closed set of common English words ignored by keyword metrics.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {}, "this": {}, "but": {}, "they": {}, "have": {}, "had": {}, "what": {},
	"when": {}, "where": {}, "who": {}, "which": {}, "why": {}, "how": {}, "all": {},
	"any": {}, "both": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "no": {}, "nor": {}, "not": {}, "only": {}, "own": {},
	"same": {}, "so": {}, "than": {}, "too": {}, "very": {}, "can": {}, "my": {},
	"your": {}, "i": {}, "you": {}, "we": {},
}

// IsStopWord reports whether token is in the stop-word set.
// The check is case-sensitive; tokens are expected to be lowercase.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// StopWordCount returns the size of the stop-word set.
func StopWordCount() int {
	return len(stopWords)
}
