package checkerboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/internal/propagate"
	"crosswarped.com/checkerboard/pkg/primitives"
)

// Mode selects how the solver fills in nearly complete words.
type Mode int

const (
	// ModeBlind only uses the dictionary.
	ModeBlind Mode = iota
	// ModeWalkthrough reads missing letters from the known plaintext, for writing up a
	// solution. It needs Puzzle.Plaintext.
	ModeWalkthrough
)

// State is a stage of a solve session.
type State int

const (
	StateInit State = iota
	StateKeywordSearch
	StateKeywordElimination
	StateCribSeed
	StatePropagate
	StateSolved
	StatePartiallySolved
	StateUnsolvable
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateKeywordSearch:
		return "KeywordSearch"
	case StateKeywordElimination:
		return "KeywordElimination"
	case StateCribSeed:
		return "CribSeed"
	case StatePropagate:
		return "Propagate"
	case StateSolved:
		return "Solved"
	case StatePartiallySolved:
		return "PartiallySolved"
	case StateUnsolvable:
		return "Unsolvable"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Crib is known plaintext.
type Crib struct {
	Text string
	// Position is the index of the first cipher unit the crib covers. A negative position
	// asks the solver to find it.
	Position int
}

// Puzzle is the input of a solve.
type Puzzle struct {
	Ciphertext string
	Crib       *Crib

	// PolybiusKeyword, when known, fixes the body of the table; only the headers are solved.
	PolybiusKeyword *string
	// KeywordLength is the number of distinct letters of the polybius keyword, if known.
	KeywordLength *int

	// Plaintext, RowKeyword and ColKeyword are the known answer, if any. They are used to
	// place the crib, for ModeWalkthrough, and to warn when the solver disagrees.
	Plaintext  string
	RowKeyword string
	ColKeyword string

	Mode Mode
}

// Dictionary is the word index the solver needs.
type Dictionary interface {
	keywords.Dictionary
	propagate.Dictionary
	Contains(word string) bool
	IsObscure(word string) bool
	Spelling(folded string) string
}

type SolverParams struct {
	// Ceiling bounds the propagation iterations. Defaults to 25.
	Ceiling int
	// AnagramLimit caps the keyword candidates per header. Defaults to 12.
	AnagramLimit int
	// MaxNarrowed bounds the partially known units in a word pattern query. Defaults to 3.
	MaxNarrowed int

	MaxKeywordLength int
	MaxLeadingGap    int
	LateAlphabetRank int

	// MinCoverage is the share of decoded words that must be dictionary words before a table
	// is picked when the polybius keyword is known. Defaults to 0.6.
	MinCoverage float64

	Logger *zap.Logger
}

type solverParams struct {
	ceiling      int
	anagramLimit int
	maxNarrowed  int
	minCoverage  float64
	limits       keywords.Limits
	logger       *zap.Logger
}

func asSolverParams(p SolverParams) solverParams {
	pp := solverParams{
		ceiling:      25,
		anagramLimit: 12,
		maxNarrowed:  3,
		minCoverage:  0.6,
		limits:       keywords.DefaultLimits(),
		logger:       p.Logger,
	}
	if p.Ceiling > 0 {
		pp.ceiling = p.Ceiling
	}
	if p.AnagramLimit > 0 {
		pp.anagramLimit = p.AnagramLimit
	}
	if p.MaxNarrowed > 0 {
		pp.maxNarrowed = p.MaxNarrowed
	}
	if p.MinCoverage > 0 {
		pp.minCoverage = p.MinCoverage
	}
	if p.MaxKeywordLength > 0 {
		pp.limits.MaxKeywordLength = p.MaxKeywordLength
	}
	if p.MaxLeadingGap > 0 {
		pp.limits.MaxLeadingGap = p.MaxLeadingGap
	}
	if p.LateAlphabetRank > 0 {
		pp.limits.LateAlphabetRank = p.LateAlphabetRank
	}
	if pp.logger == nil {
		pp.logger = zap.NewNop()
	}
	return pp
}

// Solver recovers checkerboard tables. A Solver holds no per-solve state, so one Solver can
// run many sessions at once.
type Solver struct {
	dict   Dictionary
	params solverParams
}

func NewSolver(dict Dictionary, params SolverParams) *Solver {
	return &Solver{dict: dict, params: asSolverParams(params)}
}

// TableView is one candidate table. Cells lists the letters each cell can still hold.
type TableView struct {
	RowKeyword string
	ColKeyword string
	Cells      [25][]rune
	Repr       string
}

type Result struct {
	SessionID string
	State     State

	// Plaintext has a '?' for every unit not yet settled.
	Plaintext string
	// Candidates maps each cipher unit to the letters it can still stand for, over all
	// surviving tables.
	Candidates map[string][]rune
	Tables     []TableView

	RowKeywords []string
	ColKeywords []string

	Iterations int
	Unresolved int
	// Difficulty is advisory: iterations over the ceiling plus a quarter per unsettled unit.
	Difficulty float64
	// AutoSolverScore is the mean number of extra choices per cipher unit outside the crib.
	AutoSolverScore float64
	ReadilySolvable bool

	Warnings []string
}

// Solve runs one session. Failures in the keyword and crib stages return an
// *InputValidationError or *SearchExhaustedError and no result; running out of deductions
// is not an error but a PartiallySolved result. ctx is checked between stages and between
// propagation iterations.
func (s *Solver) Solve(ctx context.Context, p Puzzle, n Narrator) (*Result, error) {
	if n == nil {
		n = NopNarrator()
	}
	id := ksuid.New().String()
	ss := &session{
		id:        id,
		solver:    s,
		puzzle:    p,
		narrator:  n,
		log:       s.params.logger.With(zap.String("session", id)),
		limits:    s.params.limits,
		cribUnits: make(map[int]bool),
	}
	res, err := ss.run(ctx)
	if err != nil {
		ss.enter(StateUnsolvable)
		ss.log.Debug("solve failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

type session struct {
	id       string
	solver   *Solver
	puzzle   Puzzle
	narrator Narrator
	log      *zap.Logger
	state    State

	text      primitives.Ciphertext
	answer    []rune
	limits    keywords.Limits
	decode    bool
	known     map[primitives.Unit]rune
	cribUnits map[int]bool

	rowSurvivors []string
	colSurvivors []string
	boards       []*propagate.Board
	iterations   int
	warnings     []string
}

func (ss *session) enter(st State) {
	ss.state = st
	ss.log.Debug("state", zap.Stringer("state", st))
}

func (ss *session) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ss.warnings = append(ss.warnings, msg)
	ss.narrator.Say("Warning: " + msg)
	ss.log.Warn(msg)
}

func (ss *session) run(ctx context.Context) (*Result, error) {
	ss.enter(StateInit)
	if err := ss.init(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ss.enter(StateKeywordSearch)
	rows, cols, err := ss.searchKeywords()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ss.enter(StateKeywordElimination)
	pairs, err := ss.eliminateKeywords(rows, cols)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ss.enter(StateCribSeed)
	if err := ss.seed(pairs); err != nil {
		return nil, err
	}

	ss.enter(StatePropagate)
	if err := ss.propagate(ctx); err != nil {
		return nil, err
	}

	res := ss.result()
	ss.enter(res.State)
	return res, nil
}

func (ss *session) init() error {
	text, err := primitives.ParseCiphertext(ss.puzzle.Ciphertext)
	if err != nil {
		return invalid("ciphertext", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err))
	}
	if len(text.Units()) == 0 {
		return invalid("ciphertext", fmt.Errorf("%w: no cipher units", ErrMalformedCiphertext))
	}
	ss.text = text

	if kw := ss.puzzle.PolybiusKeyword; kw != nil {
		n := len(primitives.Dedupe(primitives.NormalizeKeyword(*kw)))
		ss.limits.KeywordLength = &n
		ss.decode = true
	} else if n := ss.puzzle.KeywordLength; n != nil {
		if *n < 0 || *n >= len(primitives.Alphabet) {
			return invalid("keyword length", fmt.Errorf("%d is out of range", *n))
		}
		ss.limits.KeywordLength = n
	}

	if ss.puzzle.RowKeyword != "" {
		if _, err := headerKeyword("row keyword", ss.puzzle.RowKeyword); err != nil {
			return err
		}
	}
	if ss.puzzle.ColKeyword != "" {
		if _, err := headerKeyword("column keyword", ss.puzzle.ColKeyword); err != nil {
			return err
		}
	}

	if ss.puzzle.Plaintext != "" {
		letters := []rune(primitives.NormalizeKeyword(ss.puzzle.Plaintext))
		if len(letters) == len(text.Units()) {
			ss.answer = letters
		} else {
			ss.warn("the plaintext has %d letters for %d cipher units and is ignored", len(letters), len(text.Units()))
		}
	}
	if ss.puzzle.Mode == ModeWalkthrough && ss.answer == nil {
		ss.warn("a walkthrough needs the plaintext; solving blind")
	}
	return nil
}

func (ss *session) searchKeywords() (rows, cols []string, err error) {
	n := ss.narrator
	n.Step("Find the header keywords")

	rowLetters, colLetters := keywords.GatherLetters(ss.text.Units())
	sayf(n, "The first letters of the cipher units are %s and the second letters are %s.", rowLetters, colLetters)
	if len(rowLetters) < 5 || len(colLetters) < 5 {
		n.Say("Not every header letter shows up, so any keyword containing the letters we see is a candidate.")
	}

	limit := ss.solver.params.anagramLimit
	rows, rowTotal := keywords.FindAnagrams(ss.solver.dict, rowLetters, 5, limit)
	if len(rows) == 0 {
		return nil, nil, exhausted("keyword search", fmt.Errorf("%w: no row keyword fits %s", ErrNoKeywordCandidates, rowLetters))
	}
	cols, colTotal := keywords.FindAnagrams(ss.solver.dict, colLetters, 5, limit)
	if len(cols) == 0 {
		return nil, nil, exhausted("keyword search", fmt.Errorf("%w: no column keyword fits %s", ErrNoKeywordCandidates, colLetters))
	}
	ss.sayCandidates("Row", rows, rowTotal)
	ss.sayCandidates("Column", cols, colTotal)
	ss.log.Debug("keyword candidates", zap.Strings("rows", rows), zap.Strings("cols", cols))
	return rows, cols, nil
}

func (ss *session) sayCandidates(axis string, words []string, total int) {
	n := ss.narrator
	sayf(n, "%s keyword candidates: %s.", axis, strings.Join(words, ", "))
	var obscure []string
	for _, w := range words {
		if ss.solver.dict.IsObscure(w) {
			obscure = append(obscure, w)
		}
	}
	if len(obscure) > 0 {
		sayf(n, "Of these, %s only appear in the obscure word list.", strings.Join(obscure, ", "))
	}
	if total > len(words) {
		ss.warn("%d words fit the %s keyword; only the first %d are tried", total, strings.ToLower(axis), len(words))
	}
}

func (ss *session) eliminateKeywords(rows, cols []string) ([]keywords.Pair, error) {
	n := ss.narrator
	n.Step("Eliminate keyword pairs")

	known, err := ss.placeCrib()
	if err != nil {
		return nil, err
	}
	ss.known = known

	rowS, colS, pairs := keywords.Eliminate(rows, cols, known, ss.limits)
	if len(pairs) == 0 {
		return nil, exhausted("keyword elimination", ErrNoConsistentKeyword)
	}
	ss.rowSurvivors, ss.colSurvivors = rowS, colS

	if len(rows)*len(cols) > len(pairs) {
		sayf(n, "Placing the crib in the table rules out %d of %d keyword pairs.", len(rows)*len(cols)-len(pairs), len(rows)*len(cols))
	}
	sayf(n, "Row keywords left: %s. Column keywords left: %s.", strings.Join(rowS, ", "), strings.Join(colS, ", "))

	ss.checkOracleKeyword("row", ss.puzzle.RowKeyword, rowS)
	ss.checkOracleKeyword("column", ss.puzzle.ColKeyword, colS)
	return pairs, nil
}

func (ss *session) checkOracleKeyword(axis, keyword string, survivors []string) {
	if keyword == "" {
		return
	}
	kw := primitives.NormalizeKeyword(keyword)
	for _, s := range survivors {
		if s == kw {
			return
		}
	}
	ss.warn("the %s keyword %s is not among the candidates the solver found", axis, kw)
}

// placeCrib maps crib letters onto cipher units.
func (ss *session) placeCrib() (map[primitives.Unit]rune, error) {
	c := ss.puzzle.Crib
	if c == nil {
		return nil, nil
	}
	letters := []rune(primitives.NormalizeKeyword(c.Text))
	if len(letters) == 0 {
		return nil, nil
	}
	units := ss.text.Units()

	pos := c.Position
	if pos < 0 {
		var err error
		if pos, err = ss.locateCrib(letters); err != nil {
			return nil, err
		}
	}
	if pos+len(letters) > len(units) {
		return nil, invalid("crib", fmt.Errorf("%w: %q does not fit at unit %d of %d", ErrCribNotFound, c.Text, pos, len(units)))
	}

	known := make(map[primitives.Unit]rune)
	unitOf := make(map[rune]primitives.Unit)
	for i, l := range letters {
		u := units[pos+i]
		if prev, ok := known[u]; ok && prev != l {
			return nil, invalid("crib", fmt.Errorf("%w: %s would stand for both %c and %c", ErrCribConflict, u, prev, l))
		}
		if prev, ok := unitOf[l]; ok && prev != u {
			return nil, invalid("crib", fmt.Errorf("%w: %c would be both %s and %s", ErrCribConflict, l, prev, u))
		}
		known[u] = l
		unitOf[l] = u
		ss.cribUnits[pos+i] = true
	}

	cipher := make([]string, len(letters))
	for i := range letters {
		cipher[i] = units[pos+i].String()
	}
	sayf(ss.narrator, "The crib %s sits under cipher units %d to %d (%s).", string(letters), pos+1, pos+len(letters), strings.Join(cipher, " "))
	return known, nil
}

// locateCrib finds the crib in the known plaintext or, without one, by its repeat pattern.
func (ss *session) locateCrib(letters []rune) (int, error) {
	crib := string(letters)
	if ss.answer != nil {
		pos := strings.Index(string(ss.answer), crib)
		if pos < 0 {
			return 0, invalid("crib", fmt.Errorf("%w: %q is not in the plaintext", ErrCribNotFound, crib))
		}
		// answer is ASCII, so byte and rune offsets agree.
		return pos, nil
	}

	units := ss.text.Units()
	want := primitives.Pattern(letters)
	var found []int
	for i := 0; i+len(letters) <= len(units); i++ {
		if primitives.Pattern(units[i:i+len(letters)]) == want {
			found = append(found, i)
		}
	}
	switch len(found) {
	case 0:
		return 0, invalid("crib", fmt.Errorf("%w: no run of units has the pattern of %q", ErrCribNotFound, crib))
	case 1:
		return found[0], nil
	}
	return 0, invalid("crib", fmt.Errorf("%w: %q fits at %d places", ErrCribAmbiguous, crib, len(found)))
}

func (ss *session) seed(pairs []keywords.Pair) error {
	n := ss.narrator
	n.Step("Seed the table")

	var seq string
	if ss.decode {
		seq = primitives.Sequence(*ss.puzzle.PolybiusKeyword)
	}
	for _, pair := range pairs {
		b := propagate.NewBoard(pair, ss.limits)
		for u, l := range ss.known {
			b.Assign(u, l)
		}
		for pos, l := range seq {
			b.Resolve(pos, l)
		}
		if b.Broken() {
			sayf(n, "%s cannot hold the crib.", pair)
			continue
		}
		ss.boards = append(ss.boards, b)
	}
	if len(ss.boards) == 0 {
		return exhausted("crib seed", ErrNoConsistentKeyword)
	}
	if ss.decode && len(ss.boards) > 1 {
		ss.pickDecodedTable()
	}
	return nil
}

// pickDecodedTable keeps the table whose decode reads best, when it clearly does.
func (ss *session) pickDecodedTable() {
	best, second := -1.0, -1.0
	bestIdx := -1
	for i, b := range ss.boards {
		cov := ss.coverage(b)
		sayf(ss.narrator, "%s decodes to %.0f%% dictionary words.", b.Pair, cov*100)
		switch {
		case cov > best:
			second = best
			best, bestIdx = cov, i
		case cov > second:
			second = cov
		}
	}
	if best >= ss.solver.params.minCoverage && best > second {
		sayf(ss.narrator, "%s reads best and is kept.", ss.boards[bestIdx].Pair)
		ss.boards = []*propagate.Board{ss.boards[bestIdx]}
	}
}

// coverage is the share of words a fully decoded board turns into dictionary words.
func (ss *session) coverage(b *propagate.Board) float64 {
	words := ss.text.Words()
	if len(words) == 0 {
		return 0
	}
	units := ss.text.Units()
	hits := 0
	for _, w := range words {
		var sb strings.Builder
		for _, ui := range w {
			l, _ := b.Candidates(units[ui]).Only()
			sb.WriteRune(l)
		}
		if ss.solver.dict.Contains(sb.String()) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func (ss *session) propagate(ctx context.Context) error {
	n := ss.narrator
	n.Step("Fill in the table")

	resolvers := make([]*propagate.WordResolver, len(ss.boards))
	for i := range ss.boards {
		resolvers[i] = &propagate.WordResolver{
			Text:        ss.text,
			Dict:        ss.solver.dict,
			MaxNarrowed: ss.solver.params.maxNarrowed,
		}
		if ss.puzzle.Mode == ModeWalkthrough {
			resolvers[i].Answer = ss.answer
		}
	}

	for ss.iterations < ss.solver.params.ceiling {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ss.unresolvedUnits() == 0 {
			break
		}
		ss.iterations++

		// Progress means some candidate set shrank: a cell of a surviving table, or a
		// unit's union once a broken table is dropped.
		progress := false
		before := ss.candidateTotal()
		var live []*propagate.Board
		var liveResolvers []*propagate.WordResolver
		for i, b := range ss.boards {
			prefix := ""
			if len(ss.boards) > 1 {
				prefix = b.Pair.String() + ": "
			}

			size := b.Size()
			_, gaps := propagate.FillGaps(b)
			for _, g := range gaps {
				sayf(n, "%sIn alphabet order, %s.", prefix, g)
			}
			for _, f := range resolvers[i].Resolve(b) {
				sayf(n, "%s%s.", prefix, f)
			}

			if b.Broken() {
				sayf(n, "%s leads to a contradiction and is dropped.", b.Pair)
				continue
			}
			if b.Size() < size {
				progress = true
			}
			live = append(live, b)
			liveResolvers = append(liveResolvers, resolvers[i])
		}
		ss.boards, resolvers = live, liveResolvers
		ss.log.Debug("iteration", zap.Int("iteration", ss.iterations), zap.Int("tables", len(ss.boards)), zap.Int("unresolved", ss.unresolvedUnits()))

		if len(ss.boards) == 0 {
			return exhausted("propagation", ErrNoConsistentKeyword)
		}
		if ss.candidateTotal() < before {
			progress = true
		}
		if !progress {
			break
		}
	}
	return nil
}

// candidates returns the letters u can stand for over every surviving table.
func (ss *session) candidates(u primitives.Unit) primitives.CharSet {
	var c primitives.CharSet
	for _, b := range ss.boards {
		c.AddAll(b.Candidates(u))
	}
	return c
}

// candidateTotal sums the candidate counts of the distinct units.
func (ss *session) candidateTotal() int {
	total := 0
	for _, u := range ss.text.Distinct() {
		total += ss.candidates(u).Count()
	}
	return total
}

func (ss *session) unresolvedUnits() int {
	n := 0
	for _, u := range ss.text.Distinct() {
		if ss.candidates(u).Count() != 1 {
			n++
		}
	}
	return n
}

func (ss *session) result() *Result {
	params := ss.solver.params
	units := ss.text.Units()

	res := &Result{
		SessionID:   ss.id,
		Candidates:  make(map[string][]rune),
		RowKeywords: ss.rowSurvivors,
		ColKeywords: ss.colSurvivors,
		Iterations:  ss.iterations,
		Unresolved:  ss.unresolvedUnits(),
		Warnings:    ss.warnings,
	}
	for _, u := range ss.text.Distinct() {
		res.Candidates[u.String()] = ss.candidates(u).Letters()
	}

	letters := make([]rune, len(units))
	for i, u := range units {
		if l, ok := ss.candidates(u).Only(); ok {
			letters[i] = l
		} else {
			letters[i] = '?'
		}
	}
	ss.restoreJ(letters)
	res.Plaintext = ss.text.Render(func(i int, _ primitives.Unit) rune {
		return letters[i]
	})

	for _, b := range ss.boards {
		view := TableView{RowKeyword: b.Pair.Row, ColKeyword: b.Pair.Col, Repr: b.Repr()}
		for pos := range view.Cells {
			view.Cells[pos] = b.Cell(pos).Letters()
		}
		res.Tables = append(res.Tables, view)
	}

	res.State = StatePartiallySolved
	if res.Unresolved == 0 {
		res.State = StateSolved
	}
	res.Difficulty = float64(ss.iterations)/float64(params.ceiling) + 0.25*float64(res.Unresolved)

	choices, counted := 0, 0
	for i, u := range units {
		if ss.cribUnits[i] {
			continue
		}
		counted++
		choices += ss.candidates(u).Count() - 1
	}
	if counted > 0 {
		res.AutoSolverScore = float64(choices) / float64(counted)
	}
	threshold := 2.5
	if ss.text.Chunked() {
		threshold = 1.25
	}
	res.ReadilySolvable = res.AutoSolverScore <= threshold

	n := ss.narrator
	n.Step("Result")
	sayf(n, "%s after %d iterations: %s", res.State, res.Iterations, res.Plaintext)
	if res.Unresolved > 0 {
		sayf(n, "%d cipher units are still open.", res.Unresolved)
	}
	return res
}

// restoreJ rewrites I as J in fully decoded words whose dictionary spelling has a J there.
func (ss *session) restoreJ(letters []rune) {
	for _, w := range ss.text.Words() {
		folded := make([]rune, len(w))
		hasI := false
		for i, ui := range w {
			folded[i] = letters[ui]
			if letters[ui] == '?' {
				hasI = false
				break
			}
			if letters[ui] == 'I' {
				hasI = true
			}
		}
		if !hasI {
			continue
		}
		spelling := []rune(ss.solver.dict.Spelling(string(folded)))
		if len(spelling) != len(w) {
			continue
		}
		for i, ui := range w {
			if folded[i] == 'I' && spelling[i] == 'J' {
				letters[ui] = 'J'
			}
		}
	}
}
