package token

import (
	"iter"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kljensen/snowball/english"
)

// StemThreshold is the length at or below which a token is returned
// unchanged. Stemming only ever applies to tokens strictly longer than this.
const StemThreshold = 6

// Stemmer reduces tokens to their English (Snowball) stems. The zero cache
// size keeps it a pure function; a positive size adds a bounded LRU memo for
// hot vocabularies without unbounded memory growth.
type Stemmer struct {
	cache *lru.Cache[string, string]
}

// NewStemmer creates a Stemmer. cacheSize ≤ 0 disables memoization.
func NewStemmer(cacheSize int) *Stemmer {
	s := &Stemmer{}
	if cacheSize > 0 {
		// lru.New only fails on a non-positive size.
		s.cache, _ = lru.New[string, string](cacheSize)
	}
	return s
}

// Stem returns word unchanged when len(word) ≤ StemThreshold, otherwise its
// Snowball stem. Input is expected lowercase, as produced by Split.
func (s *Stemmer) Stem(word string) string {
	if len(word) <= StemThreshold {
		return word
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(word); ok {
			return v
		}
	}
	stemmed := english.Stem(word, false)
	if s.cache != nil {
		s.cache.Add(word, stemmed)
	}
	return stemmed
}

// Process splits an identifier and stems each resulting token. This is the
// full identifier → normalized-token transformation handed to the feature
// stage. Held short fragments are never stemmed on their own; only final
// yielded tokens pass through the stemmer.
func (s *Stemmer) Process(identifier string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for tok := range Split(identifier) {
			if !yield(s.Stem(tok)) {
				return
			}
		}
	}
}
