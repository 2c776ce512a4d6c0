package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"crosswarped.com/checkerboard"
)

// puzzleSpec is one puzzle as written in a batch file.
type puzzleSpec struct {
	Name            string  `yaml:"name"`
	Ciphertext      string  `yaml:"ciphertext"`
	Crib            string  `yaml:"crib,omitempty"`
	CribPosition    *int    `yaml:"crib_position,omitempty"`
	PolybiusKeyword *string `yaml:"polybius_keyword,omitempty"`
	KeywordLength   *int    `yaml:"keyword_length,omitempty"`
	Plaintext       string  `yaml:"plaintext,omitempty"`
	RowKeyword      string  `yaml:"row_keyword,omitempty"`
	ColKeyword      string  `yaml:"col_keyword,omitempty"`
	Walkthrough     bool    `yaml:"walkthrough,omitempty"`
}

type batchFile struct {
	Puzzles []puzzleSpec `yaml:"puzzles"`
}

func (s puzzleSpec) puzzle() checkerboard.Puzzle {
	p := checkerboard.Puzzle{
		Ciphertext:      s.Ciphertext,
		PolybiusKeyword: s.PolybiusKeyword,
		KeywordLength:   s.KeywordLength,
		Plaintext:       s.Plaintext,
		RowKeyword:      s.RowKeyword,
		ColKeyword:      s.ColKeyword,
	}
	if s.Crib != "" {
		pos := -1
		if s.CribPosition != nil {
			pos = *s.CribPosition
		}
		p.Crib = &checkerboard.Crib{Text: s.Crib, Position: pos}
	}
	if s.Walkthrough {
		p.Mode = checkerboard.ModeWalkthrough
	}
	return p
}

func loadBatch(path string) ([]puzzleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzles: %w", err)
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse puzzles: %w", err)
	}
	return f.Puzzles, nil
}

type batchResult struct {
	Name   string
	Result *checkerboard.Result
	Err    error
}

// runBatch solves the puzzles with at most jobs running at once. A failed puzzle does not
// stop the others; only cancellation of ctx does.
func runBatch(ctx context.Context, solver *checkerboard.Solver, puzzles []puzzleSpec, jobs int) ([]batchResult, error) {
	results := make([]batchResult, len(puzzles))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, entry := range puzzles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := solver.Solve(ctx, entry.puzzle(), nil)
			results[i] = batchResult{Name: entry.Name, Result: res, Err: err}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

var batchJobs int

var batchCmd = &cobra.Command{
	Use:   "batch [puzzles.yaml]",
	Short: "Solve every puzzle in a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		puzzles, err := loadBatch(args[0])
		if err != nil {
			return err
		}
		solver, err := newSolver(ctx)
		if err != nil {
			return err
		}

		results, err := runBatch(ctx, solver, puzzles, batchJobs)
		out := cmd.OutOrStdout()
		for i, r := range results {
			name := r.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			fmt.Fprintf(out, "== %s ==\n", name)
			switch {
			case r.Err != nil:
				fmt.Fprintln(out, "error:", r.Err)
			case r.Result != nil:
				printResult(out, r.Result)
			}
		}
		logger.Info("batch done", zap.Int("puzzles", len(puzzles)), zap.Error(err))
		return err
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchJobs, "jobs", 4, "Puzzles to solve at once")
}
