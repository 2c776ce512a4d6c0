package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crosswarped.com/checkerboard"
	"crosswarped.com/checkerboard/internal/config"
	"crosswarped.com/checkerboard/internal/dictionary"
)

var (
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cbcli",
	Short:         "Encode and solve checkerboard ciphers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		logger, err = cfg.Logger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var tableFlags struct {
	row, col, polybius string
}

var encodeCmd = &cobra.Command{
	Use:   "encode [plaintext]",
	Short: "Encode plaintext with a checkerboard table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := checkerboard.BuildTable(tableFlags.row, tableFlags.col, tableFlags.polybius)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if verbose {
			fmt.Fprintln(out, table.Repr())
		}
		fmt.Fprintln(out, table.Encode(strings.Join(args, " ")))
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest-cribs [plaintext]",
	Short: "List stretches of plaintext that would make good cribs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := checkerboard.BuildTable(tableFlags.row, tableFlags.col, tableFlags.polybius)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range checkerboard.SuggestCribs(table, strings.Join(args, " "), checkerboard.CribParams{}) {
			fmt.Fprintf(out, "%-10s at %3d  direct %2d  indirect %2d  total %2d\n", s.Text, s.Position, s.Direct, s.Indirect, s.Total())
		}
		return nil
	},
}

var solveFlags struct {
	crib          string
	cribPosition  int
	polybius      string
	keywordLength int
	plaintext     string
	rowKeyword    string
	colKeyword    string
	walkthrough   bool
	explain       bool
}

var solveCmd = &cobra.Command{
	Use:   "solve [ciphertext]",
	Short: "Recover the table and plaintext of a checkerboard ciphertext",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		solver, err := newSolver(ctx)
		if err != nil {
			return err
		}

		req := puzzleSpec{
			Ciphertext:  strings.Join(args, " "),
			Plaintext:   solveFlags.plaintext,
			RowKeyword:  solveFlags.rowKeyword,
			ColKeyword:  solveFlags.colKeyword,
			Walkthrough: solveFlags.walkthrough,
		}
		if solveFlags.crib != "" {
			req.Crib = solveFlags.crib
			req.CribPosition = &solveFlags.cribPosition
		}
		if cmd.Flags().Changed("polybius") {
			req.PolybiusKeyword = &solveFlags.polybius
		}
		if solveFlags.keywordLength >= 0 {
			req.KeywordLength = &solveFlags.keywordLength
		}

		var transcript checkerboard.Transcript
		res, err := solver.Solve(ctx, req.puzzle(), &transcript)
		out := cmd.OutOrStdout()
		if solveFlags.explain {
			fmt.Fprint(out, transcript.String())
		}
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	},
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newSolver(ctx context.Context) (*checkerboard.Solver, error) {
	d := cfg.Dictionary
	dict, err := dictionary.FromFiles(ctx, d.WordsFile, d.ObscureFile, d.ExcludedFile, cfg.DictionaryParams())
	if err != nil {
		return nil, err
	}
	logger.Debug("dictionary loaded", zap.Int("words", dict.Len()), zap.String("file", d.WordsFile))
	return checkerboard.NewSolver(dict, cfg.SolverParams(logger)), nil
}

func printResult(out io.Writer, res *checkerboard.Result) {
	fmt.Fprintf(out, "%s after %d iterations\n", res.State, res.Iterations)
	fmt.Fprintln(out, res.Plaintext)
	for _, t := range res.Tables {
		fmt.Fprintln(out)
		fmt.Fprintln(out, t.Repr)
	}
	fmt.Fprintf(out, "\nunresolved units: %d  difficulty: %.2f  auto-solver score: %.2f", res.Unresolved, res.Difficulty, res.AutoSolverScore)
	if res.ReadilySolvable {
		fmt.Fprint(out, " (readily solvable)")
	}
	fmt.Fprintln(out)
	for _, w := range res.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "checkerboard.yaml", "Path to the config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Give up after this long")

	for _, c := range []*cobra.Command{encodeCmd, suggestCmd} {
		c.Flags().StringVar(&tableFlags.row, "row", "", "Row keyword")
		c.Flags().StringVar(&tableFlags.col, "col", "", "Column keyword")
		c.Flags().StringVar(&tableFlags.polybius, "polybius", "", "Polybius keyword")
		_ = c.MarkFlagRequired("row")
		_ = c.MarkFlagRequired("col")
	}

	f := solveCmd.Flags()
	f.StringVar(&solveFlags.crib, "crib", "", "Known plaintext")
	f.IntVar(&solveFlags.cribPosition, "crib-position", -1, "Cipher unit the crib starts at; negative to search for it")
	f.StringVar(&solveFlags.polybius, "polybius", "", "Polybius keyword, if known")
	f.IntVar(&solveFlags.keywordLength, "keyword-length", -1, "Distinct letters in the polybius keyword, if known")
	f.StringVar(&solveFlags.plaintext, "plaintext", "", "Known plaintext, for walkthroughs")
	f.StringVar(&solveFlags.rowKeyword, "row-keyword", "", "Known row keyword")
	f.StringVar(&solveFlags.colKeyword, "col-keyword", "", "Known column keyword")
	f.BoolVar(&solveFlags.walkthrough, "walkthrough", false, "Explain the solution using the known plaintext")
	f.BoolVar(&solveFlags.explain, "explain", false, "Print the solver's reasoning")

	rootCmd.AddCommand(encodeCmd, suggestCmd, solveCmd, batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
