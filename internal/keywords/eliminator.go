package keywords

import (
	"strings"

	"crosswarped.com/checkerboard/pkg/primitives"
)

// Limits holds the thresholds of the structural checks. MaxKeywordLength, MaxLeadingGap and
// LateAlphabetRank are heuristics: they reject tables that are possible but implausible for a
// hand-made puzzle.
type Limits struct {
	// MaxKeywordLength bounds the distinct letters of the table keyword; a pair that needs a
	// longer keyword is rejected.
	MaxKeywordLength int
	// A first confirmed letter ranked at or after LateAlphabetRank (V..Z) that can only be a
	// keyword letter, and sits past MaxLeadingGap, rejects the pair.
	MaxLeadingGap    int
	LateAlphabetRank int
	// MinKeywordLength is the shortest keyword assumed when nothing else bounds it.
	MinKeywordLength int

	// KeywordLength is the known number of distinct table keyword letters, if any. When set,
	// only that length is considered and the heuristics are skipped.
	KeywordLength *int
}

func DefaultLimits() Limits {
	return Limits{
		MaxKeywordLength: 15,
		MaxLeadingGap:    4,
		LateAlphabetRank: 20,
		MinKeywordLength: 3,
	}
}

// Pair is a candidate (row keyword, column keyword) combination.
type Pair struct {
	Row string
	Col string
}

func (p Pair) String() string {
	return p.Row + "/" + p.Col
}

// Position returns the table cell index u addresses under this pair.
func (p Pair) Position(u primitives.Unit) (int, bool) {
	r := strings.IndexRune(p.Row, u.Row)
	c := strings.IndexRune(p.Col, u.Col)
	if r < 0 || c < 0 || r >= 5 || c >= 5 {
		return 0, false
	}
	return r*5 + c, true
}

// Unit returns the cipher unit of table cell pos.
func (p Pair) Unit(pos int) primitives.Unit {
	return primitives.Unit{Row: rune(p.Row[pos/5]), Col: rune(p.Col[pos%5])}
}

// Placement is the table sequence implied by a pair and a set of known unit letters. Zero
// marks an unknown cell.
type Placement [25]rune

// Place positions each known letter under p. It fails when a unit uses a letter the pair
// does not have, or when one letter would land in two cells.
func Place(p Pair, known map[primitives.Unit]rune) (Placement, bool) {
	var placed Placement
	var used primitives.CharSet
	for u, l := range known {
		pos, ok := p.Position(u)
		if !ok {
			return placed, false
		}
		l = primitives.Fold(l)
		if used.Contains(l) {
			return placed, false
		}
		_ = used.Add(l)
		placed[pos] = l
	}
	return placed, true
}

// Consistent reports whether the placement can come from a table whose keyword has exactly k
// distinct letters: cells before k hold the keyword, later cells are filled in alphabet order
// skipping keyword letters.
func (pl *Placement) Consistent(k int) bool {
	var keyword primitives.CharSet
	for p := 0; p < k && p < len(pl); p++ {
		if pl[p] != 0 {
			_ = keyword.Add(pl[p])
		}
	}

	prevRank, prevPos := -1, -1
	for p := k; p < len(pl); p++ {
		l := pl[p]
		if l == 0 {
			continue
		}
		r := primitives.Rank(l)
		if r <= prevRank {
			return false
		}

		below, above := 0, 0
		for _, x := range keyword.Letters() {
			if primitives.Rank(x) < r {
				below++
			} else {
				above++
			}
		}
		// A fill letter sits at k plus the non-keyword letters before it.
		if p < max(k, r+above) || p > k+r-below {
			return false
		}
		if prevPos >= 0 && p-prevPos > r-prevRank {
			return false
		}
		prevRank, prevPos = r, p
	}
	return true
}

// Boundary returns the largest keyword length consistent with the placement, or -1 when none
// is. Cells at or past the boundary are certainly alphabet fill.
func (pl *Placement) Boundary(limits Limits) int {
	if limits.KeywordLength != nil {
		if pl.Consistent(*limits.KeywordLength) {
			return *limits.KeywordLength
		}
		return -1
	}
	for k := limits.MaxKeywordLength - 1; k >= 0; k-- {
		if pl.Consistent(k) {
			return k
		}
	}
	return -1
}

func (pl *Placement) implausibleLead(limits Limits) bool {
	for p, l := range pl {
		if l == 0 {
			continue
		}
		r := primitives.Rank(l)
		// p < r means l cannot be fill, so it belongs to the keyword.
		return r >= limits.LateAlphabetRank && p > limits.MaxLeadingGap && p < r
	}
	return false
}

// CheckKeyword reports whether the pair can explain the known unit letters under the table's
// ordering rules.
func CheckKeyword(p Pair, known map[primitives.Unit]rune, limits Limits) bool {
	placed, ok := Place(p, known)
	if !ok {
		return false
	}
	if placed.Boundary(limits) < 0 {
		return false
	}
	if limits.KeywordLength == nil && placed.implausibleLead(limits) {
		return false
	}
	return true
}

// Eliminate checks every row and column combination and returns the survivors on each axis
// along with the surviving pairs, all in candidate order.
func Eliminate(rows, cols []string, known map[primitives.Unit]rune, limits Limits) (rowSurvivors, colSurvivors []string, pairs []Pair) {
	rowOk := make(map[string]bool)
	colOk := make(map[string]bool)
	for _, row := range rows {
		for _, col := range cols {
			p := Pair{Row: row, Col: col}
			if !CheckKeyword(p, known, limits) {
				continue
			}
			pairs = append(pairs, p)
			rowOk[row] = true
			colOk[col] = true
		}
	}
	for _, row := range rows {
		if rowOk[row] {
			rowSurvivors = append(rowSurvivors, row)
		}
	}
	for _, col := range cols {
		if colOk[col] {
			colSurvivors = append(colSurvivors, col)
		}
	}
	return rowSurvivors, colSurvivors, pairs
}
