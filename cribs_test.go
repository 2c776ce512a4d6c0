package checkerboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/pkg/primitives"
)

func TestScoreCrib(t *testing.T) {
	table, err := BuildTable("SCOUT", "PRIDE", "")
	require.NoError(t, err)
	limits := keywords.DefaultLimits()
	k := 0
	limits.KeywordLength = &k

	got := scoreCrib(table, limits, []rune("IAZZI"))
	require.Equal(t, CribSuggestion{Text: "IAZZI", Direct: 3, Indirect: 22}, got)
	require.Equal(t, 25, got.Total())
}

func TestSuggestCribs(t *testing.T) {
	table, err := BuildTable("SCOUT", "PRIDE", "lemon")
	require.NoError(t, err)
	plaintext := "jazz judge at the bazaar, quick brown fox"
	letters := primitives.NormalizeKeyword(plaintext)

	got := SuggestCribs(table, plaintext, CribParams{})
	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), 14)

	prev := -1
	for _, s := range got {
		require.Greater(t, s.Total(), 5)
		require.GreaterOrEqual(t, len(s.Text), 5)
		require.LessOrEqual(t, len(s.Text), 10)
		require.True(t, strings.HasPrefix(letters[s.Position:], s.Text), "%+v", s)

		dist := abs(s.Total() - 15)
		require.GreaterOrEqual(t, dist, prev)
		prev = dist
	}
}

func TestSuggestCribs_Limit(t *testing.T) {
	table, err := BuildTable("SCOUT", "PRIDE", "")
	require.NoError(t, err)

	got := SuggestCribs(table, "jazz judge at the bazaar", CribParams{Limit: 3})
	require.Len(t, got, 3)
}
