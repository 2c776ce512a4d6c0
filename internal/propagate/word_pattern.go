package propagate

import (
	"fmt"
	"strings"

	"crosswarped.com/checkerboard/pkg/primitives"
)

// Dictionary answers pattern queries with per-position letter constraints.
type Dictionary interface {
	Match(pattern string, masks []primitives.CharSet) *primitives.WordSet
}

// Method says how a word was resolved.
type Method int

const (
	// MethodContext reads the missing letter from the known answer.
	MethodContext Method = iota
	// MethodNearlyComplete is a unique dictionary match for a word missing one unit.
	MethodNearlyComplete
	// MethodPattern is a unique dictionary match for a word with several open units.
	MethodPattern
	// MethodNarrowed keeps, for each open unit, only the letters some matching word has there.
	MethodNarrowed
)

func (m Method) String() string {
	switch m {
	case MethodContext:
		return "context"
	case MethodNearlyComplete:
		return "nearly complete word"
	case MethodPattern:
		return "word pattern"
	case MethodNarrowed:
		return "narrowed by matching words"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Finding records one word resolution.
type Finding struct {
	Method Method
	Cipher string // the word's cipher units
	Before string // partial decode, '?' for unsettled units
	Word   string // the resolved word
	Regex  string // the constraint the dictionary was queried with
	Units  []primitives.Unit

	// Matches and Letters are set for MethodNarrowed: the number of matching words and what
	// each of Units is left with.
	Matches int
	Letters []primitives.CharSet
}

func (f Finding) String() string {
	switch f.Method {
	case MethodContext:
		return fmt.Sprintf("%s reads %s in context, so it must be %s", f.Cipher, f.Before, f.Word)
	case MethodNarrowed:
		parts := make([]string, len(f.Units))
		for i, u := range f.Units {
			parts[i] = fmt.Sprintf("%s to [%s]", u, f.Letters[i])
		}
		return fmt.Sprintf("%s reads %s; the %d words matching %s narrow %s", f.Cipher, f.Before, f.Matches, f.Regex, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s reads %s; the only word matching %s is %s", f.Cipher, f.Before, f.Regex, f.Word)
	}
}

// WordResolver settles cells from partially decoded words.
type WordResolver struct {
	Text primitives.Ciphertext
	Dict Dictionary

	// Answer, when set, holds the plaintext letter of every cipher unit. The context step
	// then reads missing letters from it instead of querying the dictionary.
	Answer []rune

	// MaxNarrowed bounds the partially known units a pattern query may carry.
	MaxNarrowed int
}

type wordClass int

const (
	classOther wordClass = iota
	classComplete
	classCandidate
)

// Resolve applies word resolutions to b until none applies and returns what it found.
func (r *WordResolver) Resolve(b *Board) []Finding {
	var found []Finding
	for !b.Broken() {
		f, ok := r.step(b)
		if !ok {
			break
		}
		found = append(found, f)
	}
	return found
}

func (r *WordResolver) step(b *Board) (Finding, bool) {
	words := r.Text.Words()
	classes := make([]wordClass, len(words))
	for i, w := range words {
		classes[i] = r.classify(b, w)
	}

	for _, wi := range rankCandidates(words, classes) {
		if f, ok := r.resolveCandidate(b, words[wi]); ok {
			return f, true
		}
	}

	for wi, w := range words {
		if classes[wi] == classComplete {
			continue
		}
		if f, ok := r.resolvePattern(b, w, MethodPattern); ok {
			return f, true
		}
	}
	return Finding{}, false
}

func (r *WordResolver) classify(b *Board, word []int) wordClass {
	units := r.Text.Units()
	var open primitives.Unit
	n := 0
	for _, ui := range word {
		u := units[ui]
		if _, ok := b.Candidates(u).Only(); ok {
			continue
		}
		if n > 0 && u != open {
			return classOther
		}
		open = u
		n++
	}
	if n == 0 {
		return classComplete
	}
	return classCandidate
}

// rankCandidates orders candidate words by the longest run of complete words next to them,
// then by the total complete words on both sides, then, for words complete on both sides, by
// length.
func rankCandidates(words [][]int, classes []wordClass) []int {
	type scored struct {
		idx                   int
		longest, total, width int
	}
	var cands []scored
	for i, c := range classes {
		if c != classCandidate {
			continue
		}
		left := 0
		for j := i - 1; j >= 0 && classes[j] == classComplete; j-- {
			left++
		}
		right := 0
		for j := i + 1; j < len(classes) && classes[j] == classComplete; j++ {
			right++
		}
		s := scored{idx: i, longest: max(left, right), total: left + right}
		if left > 0 && right > 0 {
			s.width = len(words[i])
		}
		cands = append(cands, s)
	}

	better := func(a, b scored) bool {
		if a.longest != b.longest {
			return a.longest > b.longest
		}
		if a.total != b.total {
			return a.total > b.total
		}
		return a.width > b.width
	}
	// Insertion sort keeps equal candidates in text order.
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && better(cands[j], cands[j-1]); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}

	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

func (r *WordResolver) resolveCandidate(b *Board, word []int) (Finding, bool) {
	if r.Answer == nil {
		return r.resolvePattern(b, word, MethodNearlyComplete)
	}

	units := r.Text.Units()
	for _, ui := range word {
		u := units[ui]
		if _, ok := b.Candidates(u).Only(); ok {
			continue
		}
		if ui >= len(r.Answer) {
			return Finding{}, false
		}
		l := r.Answer[ui]
		if !b.Candidates(u).Contains(l) {
			b.broken = true
			return Finding{}, false
		}
		f := Finding{
			Method: MethodContext,
			Cipher: r.cipher(word),
			Before: r.partial(b, word),
			Units:  []primitives.Unit{u},
		}
		b.Assign(u, l)
		f.Word = r.partial(b, word)
		return f, true
	}
	return Finding{}, false
}

// resolvePattern queries the dictionary with the word's repeat pattern and the candidates of
// each unit, and settles the word only on a unique match. Several matches can still narrow
// the open units.
func (r *WordResolver) resolvePattern(b *Board, word []int, method Method) (Finding, bool) {
	units := r.Text.Units()
	seq := make([]primitives.Unit, len(word))
	masks := make([]primitives.CharSet, len(word))
	seen := make(map[primitives.Unit]bool)
	openUnits, narrowed := 0, 0
	var unsettled []primitives.Unit
	for i, ui := range word {
		u := units[ui]
		seq[i] = u
		masks[i] = b.Candidates(u)
		if seen[u] {
			continue
		}
		seen[u] = true
		if _, ok := masks[i].Only(); ok {
			continue
		}
		unsettled = append(unsettled, u)
		pos, _ := b.Pair.Position(u)
		if b.Open(pos) {
			openUnits++
		} else {
			narrowed++
		}
	}
	if len(unsettled) == 0 || openUnits > 1 || narrowed > r.MaxNarrowed {
		return Finding{}, false
	}

	matches := r.Dict.Match(primitives.Pattern(seq), masks)
	if matches.Count() == 0 {
		return Finding{}, false
	}
	if matches.Count() > 1 {
		return r.narrow(b, word, seq, masks, matches)
	}

	word0, _ := matches.First()
	f := Finding{
		Method: method,
		Cipher: r.cipher(word),
		Before: r.partial(b, word),
		Word:   word0,
		Regex:  regex(masks),
		Units:  unsettled,
	}
	for i, u := range seq {
		if _, ok := b.Candidates(u).Only(); ok {
			continue
		}
		b.Assign(u, rune(word0[i]))
		if b.Broken() {
			return Finding{}, false
		}
	}
	return f, true
}

// narrow cuts each unsettled unit of the word down to the letters the matching words have at
// its positions. It reports a finding only when some unit lost a letter.
func (r *WordResolver) narrow(b *Board, word []int, seq []primitives.Unit, masks []primitives.CharSet, matches *primitives.WordSet) (Finding, bool) {
	f := Finding{
		Method:  MethodNarrowed,
		Cipher:  r.cipher(word),
		Before:  r.partial(b, word),
		Regex:   regex(masks),
		Matches: matches.Count(),
	}
	allowed := make(map[primitives.Unit]primitives.CharSet)
	var order []primitives.Unit
	for i, u := range seq {
		if _, ok := masks[i].Only(); ok {
			continue
		}
		c, seen := allowed[u]
		if !seen {
			c = masks[i]
			order = append(order, u)
		}
		allowed[u] = c.Intersect(matches.CharsAt(i))
	}
	for _, u := range order {
		pos, _ := b.Pair.Position(u)
		if !b.Narrow(pos, allowed[u]) {
			continue
		}
		f.Units = append(f.Units, u)
		f.Letters = append(f.Letters, b.Candidates(u))
		if b.Broken() {
			return Finding{}, false
		}
	}
	if len(f.Units) == 0 {
		return Finding{}, false
	}
	return f, true
}

func (r *WordResolver) cipher(word []int) string {
	units := r.Text.Units()
	parts := make([]string, len(word))
	for i, ui := range word {
		parts[i] = units[ui].String()
	}
	return strings.Join(parts, " ")
}

func (r *WordResolver) partial(b *Board, word []int) string {
	units := r.Text.Units()
	var sb strings.Builder
	for _, ui := range word {
		if l, ok := b.Candidates(units[ui]).Only(); ok {
			sb.WriteRune(l)
		} else {
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// regex renders per-position candidates the way a solver would write them by hand: settled
// letters as themselves, open cells as '.', narrowed cells as a bracket class.
func regex(masks []primitives.CharSet) string {
	var sb strings.Builder
	sb.WriteByte('^')
	for _, m := range masks {
		if l, ok := m.Only(); ok {
			sb.WriteRune(l)
			continue
		}
		if m.Count() >= 20 {
			sb.WriteByte('.')
			continue
		}
		sb.WriteByte('[')
		sb.WriteString(m.String())
		sb.WriteByte(']')
	}
	sb.WriteByte('$')
	return sb.String()
}
