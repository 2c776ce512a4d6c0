package propagate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"crosswarped.com/checkerboard/internal/dictionary"
	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/pkg/primitives"
)

func newDict(t *testing.T, words ...string) *dictionary.Index {
	t.Helper()
	x, err := dictionary.New(dictionary.Params{PreferredWords: words})
	require.NoError(t, err)
	return x
}

func parse(t *testing.T, s string) primitives.Ciphertext {
	t.Helper()
	c, err := primitives.ParseCiphertext(s)
	require.NoError(t, err)
	return c
}

func u(s string) primitives.Unit {
	return primitives.Unit{Row: rune(s[0]), Col: rune(s[1])}
}

func TestResolve_NearlyCompleteWord(t *testing.T) {
	// Under SCOUT/PRIDE with no keyword, T=UD, H=CI, E=SE.
	b := NewBoard(scoutPride, knownLength(0))
	b.Assign(u("UD"), 'T')
	b.Assign(u("CI"), 'H')

	r := &WordResolver{
		Text:        parse(t, "UDCISE"),
		Dict:        newDict(t, "the", "she", "tea", "and"),
		MaxNarrowed: 3,
	}
	found := r.Resolve(b)
	require.Len(t, found, 1)
	require.Equal(t, MethodNearlyComplete, found[0].Method)
	require.Equal(t, "THE", found[0].Word)
	require.Equal(t, "TH?", found[0].Before)
	require.Equal(t, "^TH.$", found[0].Regex)

	l, ok := b.Candidates(u("SE")).Only()
	require.True(t, ok)
	require.Equal(t, 'E', l)

	require.Empty(t, r.Resolve(b), "nothing left to resolve")
}

func TestResolve_AmbiguousMatchNarrows(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	b.Assign(u("UD"), 'T')
	b.Assign(u("CI"), 'H')

	r := &WordResolver{
		Text:        parse(t, "UDCISE"),
		Dict:        newDict(t, "the", "thy"),
		MaxNarrowed: 3,
	}
	found := r.Resolve(b)
	require.Len(t, found, 1)
	require.Equal(t, MethodNarrowed, found[0].Method)
	require.Equal(t, 2, found[0].Matches)
	require.Equal(t, "UD CI SE reads TH?; the 2 words matching ^TH.$ narrow SE to [EY]", found[0].String())

	_, ok := b.Candidates(u("SE")).Only()
	require.False(t, ok, "two matches never settle a unit")
	require.Equal(t, "EY", b.Candidates(u("SE")).String())
	require.Empty(t, r.Resolve(b))
}

func TestResolve_UnknownWordIsLeftAlone(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	b.Assign(u("UD"), 'T')
	b.Assign(u("CI"), 'H')
	before := b.Candidates(u("SE"))

	r := &WordResolver{
		Text:        parse(t, "UDCISE"),
		Dict:        newDict(t, "and", "she"),
		MaxNarrowed: 3,
	}
	require.Empty(t, r.Resolve(b))
	require.Equal(t, before, b.Candidates(u("SE")))
}

func TestResolve_Context(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	b.Assign(u("UD"), 'T')
	b.Assign(u("CI"), 'H')

	r := &WordResolver{
		Text:        parse(t, "UDCISE"),
		Dict:        newDict(t),
		Answer:      []rune("THE"),
		MaxNarrowed: 3,
	}
	found := r.Resolve(b)
	require.Len(t, found, 1)
	require.Equal(t, MethodContext, found[0].Method)
	require.Equal(t, "THE", found[0].Word)
	require.Contains(t, found[0].String(), "in context")
}

func TestResolve_Pattern(t *testing.T) {
	pair := keywords.Pair{Row: "SCOUT", Col: "PRIDE"}
	seq := truth("")
	unitOf := func(l rune) string {
		for pos, x := range seq {
			if x == l {
				return pair.Unit(pos).String()
			}
		}
		t.Fatalf("no cell for %c", l)
		return ""
	}

	b := NewBoard(pair, knownLength(0))
	text := parse(t, unitOf('S')+unitOf('E')+unitOf('E'))
	r := &WordResolver{
		Text:        text,
		Dict:        newDict(t, "see", "the", "and"),
		MaxNarrowed: 3,
	}
	// Two open units, one of them doubled: pattern 011 picks SEE.
	require.Empty(t, r.Resolve(b), "two wholly unknown units are too many")

	b.Narrow(17, primitives.CharSetOf("RST"))
	found := r.Resolve(b)
	require.Len(t, found, 1)
	require.Equal(t, MethodPattern, found[0].Method)
	require.Equal(t, "SEE", found[0].Word)
	require.Equal(t, "^[RST]..$", found[0].Regex)
}

func TestRankCandidates(t *testing.T) {
	words := [][]int{{0}, {1, 2}, {3, 4, 5}, {6}, {7, 8}, {9}, {10, 11}, {12}}
	classes := []wordClass{
		classComplete, classComplete, classCandidate, classOther,
		classCandidate, classComplete, classCandidate, classComplete,
	}
	got := rankCandidates(words, classes)
	// word 2 has two complete words on its left; word 6 is complete on both sides.
	if diff := cmp.Diff([]int{2, 6, 4}, got); diff != "" {
		t.Errorf("rankCandidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	b.Assign(u("UD"), 'T')
	b.Assign(u("CI"), 'H')
	r := &WordResolver{
		Text:        parse(t, "UDCISE UDCISP"),
		Dict:        newDict(t, "the"),
		MaxNarrowed: 3,
	}
	first := r.Resolve(b)
	size := b.Size()
	require.Empty(t, r.Resolve(b))
	require.Equal(t, size, b.Size())
	require.NotEmpty(t, first)
}
