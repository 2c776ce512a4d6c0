package primitives

import (
	"slices"
	"strings"
)

// Pattern returns the canonical repeated-symbol pattern of a sequence: each symbol is replaced
// by the order in which it was first seen, so "XYZZY" becomes "01221" and "LEVEL" "01210".
//
// Symbols beyond the tenth distinct one continue past '9' in ASCII order.
func Pattern[T comparable](seq []T) string {
	seen := make(map[T]byte, len(seq))
	var sb strings.Builder
	for _, s := range seq {
		id, ok := seen[s]
		if !ok {
			id = byte('0' + len(seen))
			seen[s] = id
		}
		sb.WriteByte(id)
	}
	return sb.String()
}

// WordPattern is Pattern over the letters of a word.
func WordPattern(word string) string {
	return Pattern([]rune(word))
}

// LetterKey returns the sorted letters of word, used to group anagrams.
func LetterKey(word string) string {
	r := []rune(word)
	slices.Sort(r)
	return string(r)
}

// HasDistinctLetters reports whether no letter repeats in word.
func HasDistinctLetters(word string) bool {
	var seen CharSet
	for _, r := range word {
		if seen.Contains(r) {
			return false
		}
		_ = seen.Add(r)
	}
	return true
}
