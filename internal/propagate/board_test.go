package propagate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/pkg/primitives"
)

var scoutPride = keywords.Pair{Row: "SCOUT", Col: "PRIDE"}

func knownLength(n int) keywords.Limits {
	limits := keywords.DefaultLimits()
	limits.KeywordLength = &n
	return limits
}

// truth returns the table sequence for a keyword.
func truth(keyword string) []rune {
	return []rune(primitives.Sequence(keyword))
}

func TestBoard_ResolveRetracts(t *testing.T) {
	b := NewBoard(scoutPride, keywords.DefaultLimits())
	require.True(t, b.Resolve(0, 'A'))
	require.False(t, b.Resolve(0, 'A'), "resolving twice changes nothing")

	for pos := 1; pos < 25; pos++ {
		require.False(t, b.Cell(pos).Contains('A'), "cell %d still offers A", pos)
	}
	require.Equal(t, 1, b.ResolvedCount())
	require.True(t, b.Known().Contains('A'))
	require.True(t, b.Open(1), "losing only settled letters keeps a cell open")
	require.False(t, b.Broken())
}

func TestBoard_AssignByUnit(t *testing.T) {
	b := NewBoard(scoutPride, keywords.DefaultLimits())
	require.True(t, b.Assign(primitives.Unit{Row: 'S', Col: 'I'}, 'C'))
	l, ok := b.Resolved(2)
	require.True(t, ok)
	require.Equal(t, 'C', l)

	b.Assign(primitives.Unit{Row: 'Q', Col: 'I'}, 'D')
	require.True(t, b.Broken(), "a unit outside the headers breaks the board")
}

func TestBoard_HiddenSingle(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	noZ := primitives.FullCharSet()
	noZ.Remove('Z')
	for pos := 0; pos < 24; pos++ {
		b.Narrow(pos, noZ)
	}
	l, ok := b.Resolved(24)
	require.True(t, ok)
	require.Equal(t, 'Z', l)
	require.False(t, b.Broken())
}

func TestBoard_Contradiction(t *testing.T) {
	b := NewBoard(scoutPride, keywords.DefaultLimits())
	b.Resolve(0, 'A')
	b.Resolve(1, 'A')
	require.True(t, b.Broken())
}

func TestBoard_BoundaryBreaks(t *testing.T) {
	b := NewBoard(keywords.Pair{Row: "MELON", Col: "ROBIN"}, keywords.DefaultLimits())
	require.Equal(t, 14, b.Boundary())
	b.Assign(primitives.Unit{Row: 'L', Col: 'N'}, 'Y')
	require.True(t, b.Broken(), "Y at cell 14 needs a keyword of 15 letters")
}

func TestBoard_Repr(t *testing.T) {
	b := NewBoard(scoutPride, knownLength(0))
	for pos, l := range truth("") {
		b.Resolve(pos, l)
	}
	repr := b.Repr()
	require.Contains(t, repr, "S  A      B      C      D      E")
	require.Contains(t, repr, "T  V      W      X      Y      Z")
	require.Contains(t, b.DebugString(), "SCOUT/PRIDE")
}
