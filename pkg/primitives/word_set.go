package primitives

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
	"sync"
)

// WordSet is a set of same-length words drawn from a shared universe.
//
// Words keep the universe's order, so iteration yields preferred words first, then obscure
// ones, each group in frequency order. Filtering never copies the word list: a WordSet is
// a bitset over its universe.
type WordSet struct {
	u   *wordUniverse
	set []uint64 // bitset over u.words; 1 => word is possible
	max int      // cached count of bits set in set
}

// MakeWordSet builds a universe over words, which must all be the same length and consist of
// upper-case letters. Words at obscureIdx and beyond are obscure.
func MakeWordSet(words []string, obscureIdx int) *WordSet {
	u := newWordUniverse(words, obscureIdx)
	return &WordSet{u: u, set: u.fullSet(), max: len(words)}
}

func (w *WordSet) Count() int {
	return w.max
}

// CharsAt returns the letters that some word in the set has at index.
func (w *WordSet) CharsAt(index int) CharSet {
	var cs CharSet
	if w.max == 0 {
		return cs
	}
	w.u.ensureMasks()
	for cidx := 0; cidx < int(numChars); cidx++ {
		base := w.u.maskBase(index, cidx)
		if hasIntersectionAt(w.set, w.u.masks, base, w.u.blocks) {
			_ = cs.Add(minChar + rune(cidx))
		}
	}
	return cs
}

// FilterAny keeps only the words whose letter at index is in constraint.
func (w *WordSet) FilterAny(constraint CharSet, index int) *WordSet {
	if w.max == 0 || constraint.bits&^(1<<('J'-minChar)) == tableMask {
		return w
	}
	if constraint.IsEmpty() {
		return w.empty()
	}

	w.u.ensureMasks()

	var idxs [numChars]int
	nIdxs := 0
	cbits := constraint.bits
	for cbits != 0 {
		idxs[nIdxs] = bits.TrailingZeros32(cbits)
		nIdxs++
		cbits &= cbits - 1
	}

	newSet := make([]uint64, len(w.set))
	newMax := 0
	unchanged := true
	for i := range w.set {
		allowed := uint64(0)
		for j := 0; j < nIdxs; j++ {
			allowed |= w.u.masks[w.u.maskBase(index, idxs[j])+i]
		}
		ns := w.set[i] & allowed
		newSet[i] = ns
		if ns != w.set[i] {
			unchanged = false
		}
		newMax += bits.OnesCount64(ns)
	}

	if unchanged {
		return w
	}
	return &WordSet{u: w.u, set: newSet, max: newMax}
}

// Filter keeps only the words with r at index.
func (w *WordSet) Filter(r rune, index int) *WordSet {
	var cs CharSet
	if err := cs.Add(r); err != nil {
		return w.empty()
	}
	return w.FilterAny(cs, index)
}

// Keep keeps only the words for which fn returns true.
func (w *WordSet) Keep(fn func(string) bool) *WordSet {
	newSet := make([]uint64, len(w.set))
	newMax := 0
	for idx := range iterateSetBits(w.set) {
		if fn(w.u.words[idx]) {
			newSet[idx/64] |= 1 << uint(idx%64)
			newMax++
		}
	}
	if newMax == w.max {
		return w
	}
	return &WordSet{u: w.u, set: newSet, max: newMax}
}

func (w *WordSet) empty() *WordSet {
	return &WordSet{u: w.u, set: make([]uint64, len(w.set)), max: 0}
}

// First returns the first word in universe order.
func (w *WordSet) First() (string, bool) {
	idx := firstSetBit(w.set)
	if idx < 0 {
		return "", false
	}
	return w.u.words[idx], true
}

// IsObscure reports whether word sits in the obscure part of the universe.
func (w *WordSet) IsObscure(word string) bool {
	w.u.ensureIndexByWord()
	idx, ok := w.u.indexByWord[word]
	return ok && idx >= w.u.obscureIdx
}

func (w *WordSet) Iterate() iter.Seq[string] {
	return func(yield func(string) bool) {
		for idx := range iterateSetBits(w.set) {
			if !yield(w.u.words[idx]) {
				return
			}
		}
	}
}

func arrayStr(arr []string) string {
	const maxPrint = 3

	if len(arr) <= maxPrint {
		return fmt.Sprintf("[%s]", strings.Join(arr, ", "))
	}
	return fmt.Sprintf("[%s, ...%d]", strings.Join(arr[:maxPrint], ", "), len(arr)-maxPrint)
}

func (w *WordSet) String() string {
	var words []string
	for word := range w.Iterate() {
		words = append(words, word)
	}
	return fmt.Sprintf("WordSet(%d, %s)", w.u.numLetters, arrayStr(words))
}

type wordUniverse struct {
	words      []string
	obscureIdx int
	numLetters int

	blocks int

	masksOnce sync.Once
	// masks is a flattened 3D tensor of word-membership bitsets:
	//   masks[pos][charIdx] = BitSet(words that have rune(minChar+charIdx) at position pos)
	//
	// Layout:
	//   base := (pos*numChars + charIdx) * blocks
	//   masks[base + block] is the uint64 for that block.
	masks []uint64

	indexOnce   sync.Once
	indexByWord map[string]int
}

func newWordUniverse(words []string, obscureIdx int) *wordUniverse {
	if len(words) == 0 {
		return &wordUniverse{}
	}
	return &wordUniverse{
		words:      words,
		obscureIdx: obscureIdx,
		numLetters: len(words[0]),
		blocks:     (len(words) + 63) / 64,
	}
}

func (u *wordUniverse) ensureIndexByWord() {
	u.indexOnce.Do(func() {
		m := make(map[string]int, len(u.words))
		for i, w := range u.words {
			m[w] = i
		}
		u.indexByWord = m
	})
}

func (u *wordUniverse) ensureMasks() {
	u.masksOnce.Do(func() {
		if len(u.words) == 0 {
			return
		}

		u.masks = make([]uint64, u.numLetters*int(numChars)*u.blocks)
		for wi, word := range u.words {
			block := wi / 64
			bit := uint(wi % 64)
			for pos := 0; pos < u.numLetters && pos < len(word); pos++ {
				r := rune(word[pos])
				if r < minChar || r > maxChar {
					continue
				}
				u.masks[u.maskBase(pos, int(r-minChar))+block] |= 1 << bit
			}
		}
	})
}

// maskBase returns the base index into u.masks for (pos,charIdx).
func (u *wordUniverse) maskBase(pos int, charIdx int) int {
	return (pos*int(numChars) + charIdx) * u.blocks
}

func (u *wordUniverse) fullSet() []uint64 {
	set := make([]uint64, u.blocks)
	for i := range set {
		set[i] = ^uint64(0)
	}
	// clear unused bits in last word
	if rem := len(u.words) % 64; rem != 0 {
		set[len(set)-1] = (uint64(1) << uint(rem)) - 1
	}
	return set
}

func firstSetBit(set []uint64) int {
	for bi, block := range set {
		if block == 0 {
			continue
		}
		return bi*64 + bits.TrailingZeros64(block)
	}
	return -1
}

func iterateSetBits(set []uint64) iter.Seq[int] {
	return func(yield func(int) bool) {
		for bi, block := range set {
			b := block
			for b != 0 {
				idx := bi*64 + bits.TrailingZeros64(b)
				if !yield(idx) {
					return
				}
				b &= b - 1
			}
		}
	}
}

func hasIntersectionAt(set []uint64, masks []uint64, base int, blocks int) bool {
	for i := 0; i < blocks; i++ {
		if set[i]&masks[base+i] != 0 {
			return true
		}
	}
	return false
}
