// Package token splits compound source-code identifiers (camelCase,
// snake_case, acronym runs) into normalized sub-word tokens and reduces them
// to English stems. Pure domain logic, no I/O.
package token

import (
	"iter"
	"strings"
)

// MaxIdentifierLength bounds the input in code points; longer identifiers are
// truncated before splitting.
const MaxIdentifierLength = 256

// minTokenLength is the floor below which a sub-word is held rather than
// yielded. A held fragment is prefixed onto the next qualifying sub-word so
// that initials like the "a" in "aSetting" survive as "asetting".
const minTokenLength = 3

// maxShortAcronym is the longest capital run that donates its last letter to
// the following word at an upper→lower transition.
const maxShortAcronym = 3

// Split breaks an identifier into lowercase sub-word tokens, lazily, in a
// single forward pass.
//
// Non-alphabetic runs (digits, underscores, punctuation) are hard
// separators. Within an alphabetic fragment, a lower→upper transition ends a
// word; an upper→lower transition ends an acronym run — runs of 1–3 capitals
// keep the last capital as the start of the next word ("XMLParser" → "xml",
// "parser"), longer runs break at the transition itself.
//
// Sub-words shorter than three characters are held in a one-slot buffer and
// emitted as a prefix of the next qualifying sub-word (both are yielded). A
// fragment still held at end of input is dropped; downstream consumers
// depend on that token distribution, so it is deliberate.
func Split(identifier string) iter.Seq[string] {
	return func(yield func(string) bool) {
		s := strings.TrimSpace(identifier)
		if runes := []rune(s); len(runes) > MaxIdentifierLength {
			s = string(runes[:MaxIdentifierLength])
		}

		// One-slot carry for the most recent short sub-word.
		held := ""

		// emit lowercases a raw sub-word and either yields it (with any
		// held prefix) or holds it. Returns false once the consumer stops.
		emit := func(raw string) bool {
			lower := strings.ToLower(raw)
			if len(raw) < minTokenLength {
				held = lower
				return true
			}
			if !yield(lower) {
				return false
			}
			if held != "" {
				if !yield(held + lower) {
					return false
				}
				held = ""
			}
			return true
		}

		for start := 0; start < len(s); {
			for start < len(s) && !isAlpha(s[start]) {
				start++
			}
			if start >= len(s) {
				return
			}
			end := start
			for end < len(s) && isAlpha(s[end]) {
				end++
			}
			if !splitFragment(s[start:end], emit) {
				return
			}
			start = end
		}
	}
}

// SplitAll collects Split into a slice. Convenience for callers that need
// the whole token list at once.
func SplitAll(identifier string) []string {
	var out []string
	for tok := range Split(identifier) {
		out = append(out, tok)
	}
	return out
}

// splitFragment walks a purely alphabetic fragment looking for case
// transitions and feeds each raw sub-word to emit. Fragments are ASCII by
// construction (multi-byte runes are separators), so byte indexing is safe.
func splitFragment(part string, emit func(string) bool) bool {
	pos := 0
	prev := part[0]
	for i := 1; i < len(part); i++ {
		this := part[i]
		switch {
		case isLower(prev) && isUpper(this):
			if !emit(part[pos:i]) {
				return false
			}
			pos = i
		case isUpper(prev) && isLower(this):
			// End of an acronym run. Short runs (≤3) donate their last
			// capital to the next word; longer runs break right here.
			run := i - 1 - pos
			if run > 0 && run <= maxShortAcronym {
				if !emit(part[pos : i-1]) {
					return false
				}
				pos = i - 1
			} else if run > maxShortAcronym {
				if !emit(part[pos:i]) {
					return false
				}
				pos = i
			}
		}
		prev = this
	}
	if pos < len(part) {
		return emit(part[pos:])
	}
	return true
}

func isAlpha(b byte) bool { return isLower(b) || isUpper(b) }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
