package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"crosswarped.com/checkerboard/pkg/primitives"
)

func mustIndex(t *testing.T, p Params) *Index {
	t.Helper()
	x, err := New(p)
	require.NoError(t, err)
	return x
}

func TestNew_RanksAndExclusions(t *testing.T) {
	x := mustIndex(t, Params{
		PreferredWords: []string{"the", "lemon", "melon", "the", "judge"},
		ObscureWords:   []string{"xyst", "melon"},
		ExcludedWords:  []string{"lemon"},
	})

	require.Equal(t, 4, x.Len())
	require.False(t, x.Contains("LEMON"))

	r, ok := x.Rank("melon")
	require.True(t, ok)
	require.Equal(t, 1, r)

	require.True(t, x.IsObscure("XYST"))
	require.False(t, x.IsObscure("THE"))
	require.True(t, x.Contains("IUDGE"), "lookups fold J into I")
	require.Equal(t, "JUDGE", x.Spelling("IUDGE"))
	require.Equal(t, "QQQ", x.Spelling("QQQ"))
}

func TestNew_RejectsNonLetters(t *testing.T) {
	_, err := New(Params{PreferredWords: []string{"don't"}})
	require.Error(t, err)
}

func TestNew_LengthBounds(t *testing.T) {
	minLen, maxLen := 3, 4
	x := mustIndex(t, Params{
		PreferredWords: []string{"a", "the", "tree", "apple"},
		MinWordLength:  &minLen,
		MaxWordLength:  &maxLen,
	})
	require.Equal(t, 2, x.Len())
	require.Equal(t, 1, x.WordsOfLength(4).Count())
	require.Equal(t, 0, x.WordsOfLength(5).Count())
}

func TestAnagrams(t *testing.T) {
	x := mustIndex(t, Params{PreferredWords: []string{"melon", "lemon", "level", "robin"}})

	got := x.Anagrams(primitives.LetterKey("LEMON"))
	if diff := cmp.Diff([]string{"MELON", "LEMON"}, got); diff != "" {
		t.Errorf("Anagrams() mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, x.Anagrams(primitives.LetterKey("LEVEL")), "repeated-letter words are not anagram candidates")
}

func TestMatch(t *testing.T) {
	x := mustIndex(t, Params{PreferredWords: []string{"the", "she", "tea", "see", "thy"}})

	tests := []struct {
		name    string
		pattern string
		masks   []primitives.CharSet
		want    []string
	}{
		{
			name:    "TH?",
			pattern: "012",
			masks:   []primitives.CharSet{primitives.CharSetOf("T"), primitives.CharSetOf("H"), primitives.FullCharSet()},
			want:    []string{"THE", "THY"},
		},
		{
			name:    "TH[E]",
			pattern: "012",
			masks:   []primitives.CharSet{primitives.CharSetOf("T"), primitives.CharSetOf("H"), primitives.CharSetOf("EA")},
			want:    []string{"THE"},
		},
		{
			name:    "repeated pattern",
			pattern: "011",
			masks:   []primitives.CharSet{primitives.FullCharSet(), primitives.FullCharSet(), primitives.FullCharSet()},
			want:    []string{"SEE"},
		},
		{
			name:    "length mismatch",
			pattern: "012",
			masks:   []primitives.CharSet{primitives.FullCharSet()},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(x.Match(tt.pattern, tt.masks).Iterate())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
			// The memoised answer must agree.
			if diff := cmp.Diff(tt.want, slices.Collect(x.Match(tt.pattern, tt.masks).Iterate())); diff != "" {
				t.Errorf("cached Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatch_CharsAt(t *testing.T) {
	x := mustIndex(t, Params{PreferredWords: []string{"does", "goes", "toes", "dogs"}})
	masks := []primitives.CharSet{primitives.CharSetOf("ABCDFGIKLMPQR"), primitives.CharSetOf("O"), primitives.CharSetOf("E"), primitives.CharSetOf("S")}

	ws := x.Match("0123", masks)
	require.Equal(t, 2, ws.Count())
	require.Equal(t, "DG", ws.CharsAt(0).String())
}

func TestParse(t *testing.T) {
	in := "# comment\nlemon 10\n\nmelon 30\nrobin 20\n"
	entries, err := Parse(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"MELON", "ROBIN", "LEMON"}, Words(entries))

	_, err = Parse(context.Background(), strings.NewReader("lemon ten\n"))
	require.Error(t, err)

	entries, err = Parse(context.Background(), strings.NewReader("zebra\napple\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"ZEBRA", "APPLE"}, Words(entries), "uncounted lists keep file order")
}

func TestFromFiles(t *testing.T) {
	dir := t.TempDir()
	preferred := filepath.Join(dir, "words.txt")
	obscure := filepath.Join(dir, "obscure.txt")
	excluded := filepath.Join(dir, "excluded.txt")
	require.NoError(t, os.WriteFile(preferred, []byte("scout 5\npride 4\nmelon 3\n"), 0o644))
	require.NoError(t, os.WriteFile(obscure, []byte("xyst\n"), 0o644))
	require.NoError(t, os.WriteFile(excluded, []byte("melon\n"), 0o644))

	x, err := FromFiles(context.Background(), preferred, obscure, excluded, Params{})
	require.NoError(t, err)
	require.Equal(t, 3, x.Len())
	require.True(t, x.IsObscure("XYST"))
	require.False(t, x.Contains("MELON"))

	_, err = FromFiles(context.Background(), filepath.Join(dir, "missing.txt"), "", "", Params{})
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	x, err := Default()
	require.NoError(t, err)
	for _, w := range []string{"THE", "LEMON", "MELON", "ROBIN", "SCOUT", "PRIDE"} {
		require.True(t, x.Contains(w), w)
	}
	r, _ := x.Rank("THE")
	require.Equal(t, 0, r)

	again, err := Default()
	require.NoError(t, err)
	require.Same(t, x, again)
}
