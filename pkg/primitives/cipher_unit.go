package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOddLetterRun is returned when a run of ciphertext letters cannot be split into pairs.
var ErrOddLetterRun = errors.New("letter run has odd length")

// Unit is a cipher unit: a row header letter followed by a column header letter.
type Unit struct {
	Row rune
	Col rune
}

func (u Unit) String() string {
	return string([]rune{u.Row, u.Col})
}

// Token is either a cipher unit or a literal character passed through unchanged.
type Token struct {
	Unit    Unit
	Literal rune
	IsUnit  bool
}

// Ciphertext is a parsed checkerboard message.
type Ciphertext struct {
	Tokens []Token

	units []Unit
	words [][]int
}

// ParseCiphertext splits s into cipher units. Letters are paired within each run of letters;
// anything else is a literal that also ends the current word.
func ParseCiphertext(s string) (Ciphertext, error) {
	s = NormalizeText(s)
	var c Ciphertext
	var pending rune
	var word []int
	flush := func() {
		if len(word) > 0 {
			c.words = append(c.words, word)
			word = nil
		}
	}
	for i, r := range []rune(s) {
		if IsLetter(r) {
			r = Fold(r)
			if pending == 0 {
				pending = r
				continue
			}
			u := Unit{Row: pending, Col: r}
			pending = 0
			word = append(word, len(c.units))
			c.units = append(c.units, u)
			c.Tokens = append(c.Tokens, Token{Unit: u, IsUnit: true})
			continue
		}
		if pending != 0 {
			return Ciphertext{}, fmt.Errorf("%w: near offset %d", ErrOddLetterRun, i)
		}
		flush()
		c.Tokens = append(c.Tokens, Token{Literal: r})
	}
	if pending != 0 {
		return Ciphertext{}, fmt.Errorf("%w: at end of text", ErrOddLetterRun)
	}
	flush()
	return c, nil
}

// Units returns the cipher units in order, without literals.
func (c Ciphertext) Units() []Unit {
	return c.units
}

// Words returns, for each word, the indexes into Units of its cipher units.
func (c Ciphertext) Words() [][]int {
	return c.words
}

// Chunked reports whether the message carries no word breaks, as when it is written in fixed blocks.
func (c Ciphertext) Chunked() bool {
	return len(c.words) <= 1
}

// Distinct returns the distinct units in order of first appearance.
func (c Ciphertext) Distinct() []Unit {
	seen := make(map[Unit]bool, len(c.units))
	var out []Unit
	for _, u := range c.units {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Render substitutes each unit through fn, which gets the unit's index in Units, keeping
// literals in place.
func (c Ciphertext) Render(fn func(i int, u Unit) rune) string {
	var sb strings.Builder
	i := 0
	for _, t := range c.Tokens {
		if t.IsUnit {
			sb.WriteRune(fn(i, t.Unit))
			i++
		} else {
			sb.WriteRune(t.Literal)
		}
	}
	return sb.String()
}
