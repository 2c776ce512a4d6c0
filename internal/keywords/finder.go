package keywords

import (
	"strings"

	"crosswarped.com/checkerboard/pkg/primitives"
)

// Dictionary is the part of the word index keyword search needs.
type Dictionary interface {
	WordsOfLength(n int) *primitives.WordSet
	Anagrams(key string) []string
}

// GatherLetters returns the distinct row and column letters seen in units, in order of first
// appearance. Either string may be shorter than a full header when the message never used
// some row or column.
func GatherLetters(units []primitives.Unit) (rows, cols string) {
	var rs, cs primitives.CharSet
	var rb, cb strings.Builder
	for _, u := range units {
		if !rs.Contains(u.Row) {
			_ = rs.Add(u.Row)
			rb.WriteRune(u.Row)
		}
		if !cs.Contains(u.Col) {
			_ = cs.Add(u.Col)
			cb.WriteRune(u.Col)
		}
	}
	return rb.String(), cb.String()
}

// FindAnagrams returns up to limit dictionary words of the given length that could be a header
// keyword showing letters, and how many words qualified in all. With a full set of letters
// the word must be an exact anagram; with fewer, the word must contain every observed letter.
// Only words without repeated letters qualify, since a header cannot label two rows with the
// same letter. Words come in dictionary frequency order.
func FindAnagrams(dict Dictionary, letters string, length, limit int) ([]string, int) {
	letters = primitives.Dedupe(primitives.NormalizeKeyword(letters))
	if len(letters) > length || limit <= 0 {
		return nil, 0
	}

	if len(letters) == length {
		found := dict.Anagrams(primitives.LetterKey(letters))
		total := len(found)
		if total > limit {
			found = found[:limit]
		}
		return append([]string(nil), found...), total
	}

	want := primitives.CharSetOf(letters)
	fits := dict.WordsOfLength(length).Keep(func(word string) bool {
		return primitives.HasDistinctLetters(word) && primitives.CharSetOf(word).Intersect(want) == want
	})
	var out []string
	for word := range fits.Iterate() {
		if len(out) >= limit {
			break
		}
		out = append(out, word)
	}
	return out, fits.Count()
}
