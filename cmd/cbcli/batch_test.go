package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"crosswarped.com/checkerboard"
	"crosswarped.com/checkerboard/internal/dictionary"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testSolver(t *testing.T) *checkerboard.Solver {
	t.Helper()
	dict, err := dictionary.New(dictionary.Params{PreferredWords: []string{"scout", "pride", "the", "cat"}})
	require.NoError(t, err)
	return checkerboard.NewSolver(dict, checkerboard.SolverParams{})
}

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "puzzles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBatch(t *testing.T) {
	path := writeBatch(t, `
puzzles:
  - name: decode
    ciphertext: SEOICE SPCPSE
    polybius_keyword: crypto
  - ciphertext: SISPUD
    crib: cat
    crib_position: 0
    walkthrough: true
`)
	specs, err := loadBatch(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	first := specs[0].puzzle()
	require.Equal(t, "decode", specs[0].Name)
	require.NotNil(t, first.PolybiusKeyword)
	require.Equal(t, "crypto", *first.PolybiusKeyword)
	require.Nil(t, first.Crib)

	second := specs[1].puzzle()
	require.Equal(t, &checkerboard.Crib{Text: "cat", Position: 0}, second.Crib)
	require.Equal(t, checkerboard.ModeWalkthrough, second.Mode)
}

func TestPuzzleSpec_CribDefaultsToSearch(t *testing.T) {
	p := puzzleSpec{Ciphertext: "SISPUD", Crib: "cat"}.puzzle()
	require.Equal(t, -1, p.Crib.Position)
}

func TestLoadBatch_Errors(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = loadBatch(writeBatch(t, "puzzles: {"))
	require.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	table, err := checkerboard.BuildTable("SCOUT", "PRIDE", "crypto")
	require.NoError(t, err)
	polybius := "crypto"

	puzzles := []puzzleSpec{
		{Name: "good", Ciphertext: table.Encode("the cat"), PolybiusKeyword: &polybius},
		{Name: "odd", Ciphertext: "SISPU"},
		{Name: "again", Ciphertext: table.Encode("cat the"), PolybiusKeyword: &polybius},
	}
	results, err := runBatch(context.Background(), testSolver(t), puzzles, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.Equal(t, "THE CAT", results[0].Result.Plaintext)

	require.True(t, errors.Is(results[1].Err, checkerboard.ErrMalformedCiphertext))
	require.Nil(t, results[1].Result)

	require.Equal(t, "again", results[2].Name)
	require.Equal(t, "CAT THE", results[2].Result.Plaintext)
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	puzzles := []puzzleSpec{{Ciphertext: "SISPUD"}, {Ciphertext: "SISPUD"}}
	_, err := runBatch(ctx, testSolver(t), puzzles, 1)
	require.ErrorIs(t, err, context.Canceled)
}
