package primitives

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Alphabet is the 25-letter table alphabet. J shares I's cell.
const Alphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ"

// End is a sentinel ranked after every letter of Alphabet.
const End = '>'

// Rank returns the position of r in Alphabet after folding J into I, or -1 if r is not a letter.
// End ranks 25.
func Rank(r rune) int {
	if r == End {
		return len(Alphabet)
	}
	return strings.IndexRune(Alphabet, Fold(r))
}

// Fold maps J to I and leaves every other rune alone.
func Fold(r rune) rune {
	if r == 'J' {
		return 'I'
	}
	return r
}

func IsLetter(r rune) bool {
	return r >= minChar && r <= maxChar
}

// stripMarks removes combining marks after canonical decomposition, so "É" becomes "E".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeText upper-cases s and strips accents, keeping every other character.
func NormalizeText(s string) string {
	return strings.ToUpper(stripMarks(s))
}

// NormalizeKeyword keeps only the letters of s, upper-cased, accent-free and with J folded into I.
func NormalizeKeyword(s string) string {
	var sb strings.Builder
	for _, r := range NormalizeText(s) {
		if !IsLetter(r) {
			continue
		}
		sb.WriteRune(Fold(r))
	}
	return sb.String()
}

// Dedupe drops repeated letters, keeping the first occurrence of each.
func Dedupe(s string) string {
	var seen CharSet
	var sb strings.Builder
	for _, r := range s {
		if seen.Contains(r) {
			continue
		}
		_ = seen.Add(r)
		sb.WriteRune(r)
	}
	return sb.String()
}

// Sequence returns the 25-letter fill order for a table primed with keyword.
func Sequence(keyword string) string {
	return Dedupe(NormalizeKeyword(keyword) + Alphabet)
}

// Between returns the table letters ranked strictly between lo and hi. hi may be End.
func Between(lo, hi rune) CharSet {
	var c CharSet
	for i := Rank(lo) + 1; i < Rank(hi) && i < len(Alphabet); i++ {
		_ = c.Add(rune(Alphabet[i]))
	}
	return c
}
