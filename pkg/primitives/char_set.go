package primitives

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	minChar  = 'A'
	maxChar  = 'Z'
	numChars = maxChar - minChar + 1
)

// tableMask covers the 25 letters that can occupy a table cell: A-Z without J.
const tableMask = uint32(1<<numChars-1) &^ (1 << ('J' - minChar))

// CharSet efficiently represents a set of upper-case letters.
//
// The zero value is the empty set. A set holding every table letter is "full", which is how
// an unknown table cell is represented.
type CharSet struct {
	bits uint32
}

// FullCharSet returns the set of all 25 table letters (J is folded into I).
func FullCharSet() CharSet {
	return CharSet{bits: tableMask}
}

// CharSetOf returns the set of letters in s. Characters outside A-Z are ignored.
func CharSetOf(s string) CharSet {
	var c CharSet
	for _, r := range s {
		_ = c.Add(r)
	}
	return c
}

// Add adds a character to the set.
func (c *CharSet) Add(r rune) error {
	if r < minChar || r > maxChar {
		return fmt.Errorf("character %c is out of range", r)
	}
	c.bits |= 1 << uint(r-minChar)
	return nil
}

// AddAll adds all characters from another set to this set.
func (c *CharSet) AddAll(other CharSet) {
	c.bits |= other.bits
}

// Remove drops r from the set and reports whether it was present.
func (c *CharSet) Remove(r rune) bool {
	if !c.Contains(r) {
		return false
	}
	c.bits &^= 1 << uint(r-minChar)
	return true
}

// Contains checks if a character is in the set.
func (c CharSet) Contains(r rune) bool {
	if r < minChar || r > maxChar {
		return false
	}
	return c.bits&(1<<uint(r-minChar)) != 0
}

func (c CharSet) Intersect(other CharSet) CharSet {
	return CharSet{bits: c.bits & other.bits}
}

func (c CharSet) Union(other CharSet) CharSet {
	return CharSet{bits: c.bits | other.bits}
}

func (c CharSet) Minus(other CharSet) CharSet {
	return CharSet{bits: c.bits &^ other.bits}
}

// IsFull checks if the set holds every table letter.
func (c CharSet) IsFull() bool {
	return c.bits&tableMask == tableMask
}

func (c CharSet) IsEmpty() bool {
	return c.bits == 0
}

// Count returns the number of characters in the set.
func (c CharSet) Count() int {
	return bits.OnesCount32(c.bits)
}

// Only returns the single member of a singleton set.
func (c CharSet) Only() (rune, bool) {
	if c.Count() != 1 {
		return 0, false
	}
	return minChar + rune(bits.TrailingZeros32(c.bits)), true
}

// Letters returns the members in alphabetical order.
func (c CharSet) Letters() []rune {
	out := make([]rune, 0, c.Count())
	b := c.bits
	for b != 0 {
		tz := bits.TrailingZeros32(b)
		out = append(out, minChar+rune(tz))
		b &= b - 1
	}
	return out
}

func (c CharSet) String() string {
	if c.IsFull() {
		return "*"
	}
	var sb strings.Builder
	for _, r := range c.Letters() {
		sb.WriteRune(r)
	}
	return sb.String()
}
