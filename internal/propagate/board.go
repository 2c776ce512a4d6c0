package propagate

import (
	"fmt"
	"strings"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/pkg/primitives"
)

// Board holds the candidate letters of every table cell under one keyword pair.
//
// Cells only ever shrink. A cell that empties, or a letter left with no cell, marks the board
// broken: the pair it stands for cannot be the real one.
type Board struct {
	Pair keywords.Pair

	cells  [25]primitives.CharSet
	done   [25]bool // singleton already retracted from the other cells
	broken bool

	// boundary is the first cell known to hold alphabet fill rather than keyword letters.
	boundary int
	limits   keywords.Limits
}

// NewBoard returns a board with every cell unknown.
func NewBoard(pair keywords.Pair, limits keywords.Limits) *Board {
	b := &Board{Pair: pair, limits: limits}
	for i := range b.cells {
		b.cells[i] = primitives.FullCharSet()
	}
	b.refreshBoundary()
	return b
}

// Cell returns the candidates of table cell pos.
func (b *Board) Cell(pos int) primitives.CharSet {
	return b.cells[pos]
}

// Candidates returns the candidates for a cipher unit. Units the pair cannot address have none.
func (b *Board) Candidates(u primitives.Unit) primitives.CharSet {
	pos, ok := b.Pair.Position(u)
	if !ok {
		return primitives.CharSet{}
	}
	return b.cells[pos]
}

// Resolved returns the letter of cell pos if it is settled.
func (b *Board) Resolved(pos int) (rune, bool) {
	return b.cells[pos].Only()
}

// Open reports whether cell pos has only lost letters that are settled elsewhere.
func (b *Board) Open(pos int) bool {
	if _, ok := b.Resolved(pos); ok {
		return false
	}
	return b.cells[pos].Union(b.Known()).IsFull()
}

// Known returns the letters settled somewhere on the board.
func (b *Board) Known() primitives.CharSet {
	var known primitives.CharSet
	for _, c := range b.cells {
		if _, ok := c.Only(); ok {
			known.AddAll(c)
		}
	}
	return known
}

// ResolvedCount returns the number of settled cells.
func (b *Board) ResolvedCount() int {
	n := 0
	for _, c := range b.cells {
		if c.Count() == 1 {
			n++
		}
	}
	return n
}

func (b *Board) Broken() bool {
	return b.broken
}

// Boundary returns the first cell certainly past the keyword.
func (b *Board) Boundary() int {
	return b.boundary
}

// Size returns the total number of candidates over all cells, which only decreases.
func (b *Board) Size() int {
	n := 0
	for _, c := range b.cells {
		n += c.Count()
	}
	return n
}

// Placement returns the settled letters by cell.
func (b *Board) Placement() keywords.Placement {
	var pl keywords.Placement
	for i := range b.cells {
		if l, ok := b.Resolved(i); ok {
			pl[i] = l
		}
	}
	return pl
}

// Assign settles the cell of unit u to letter l.
func (b *Board) Assign(u primitives.Unit, l rune) bool {
	pos, ok := b.Pair.Position(u)
	if !ok {
		b.broken = true
		return false
	}
	return b.Resolve(pos, l)
}

// Resolve settles cell pos to l and reports whether anything changed.
func (b *Board) Resolve(pos int, l rune) bool {
	var only primitives.CharSet
	_ = only.Add(primitives.Fold(l))
	return b.Narrow(pos, only)
}

// Narrow intersects cell pos with allowed and settles the consequences.
func (b *Board) Narrow(pos int, allowed primitives.CharSet) bool {
	next := b.cells[pos].Intersect(allowed)
	if next == b.cells[pos] {
		return false
	}
	b.cells[pos] = next
	b.settle()
	return true
}

// settle retracts every new singleton from the other cells and promotes letters with a single
// remaining cell, repeating until nothing changes.
func (b *Board) settle() {
	for changed := true; changed && !b.broken; {
		changed = false
		for pos, c := range b.cells {
			if c.IsEmpty() {
				b.broken = true
				return
			}
			l, ok := c.Only()
			if !ok || b.done[pos] {
				continue
			}
			b.done[pos] = true
			for other := range b.cells {
				if other != pos && b.cells[other].Remove(l) {
					changed = true
				}
			}
		}

		for _, l := range primitives.Alphabet {
			slot, slots := -1, 0
			for pos, c := range b.cells {
				if c.Contains(l) {
					slot = pos
					slots++
				}
			}
			switch {
			case slots == 0:
				b.broken = true
				return
			case slots == 1 && b.cells[slot].Count() > 1:
				b.cells[slot] = primitives.CharSetOf(string(l))
				changed = true
			}
		}
	}
	if !b.broken {
		b.refreshBoundary()
	}
}

// refreshBoundary recomputes the keyword boundary from the settled cells; a board no keyword
// length can explain is broken.
func (b *Board) refreshBoundary() {
	pl := b.Placement()
	k := pl.Boundary(b.limits)
	if k < 0 {
		b.broken = true
		return
	}
	if b.limits.KeywordLength == nil {
		k = max(k, b.limits.MinKeywordLength)
	}
	b.boundary = k
}

// Repr renders the board as a 5x5 grid labelled by the pair, unsettled cells as their
// candidate lists.
func (b *Board) Repr() string {
	var sb strings.Builder
	sb.WriteString("  ")
	for _, c := range b.Pair.Col {
		fmt.Fprintf(&sb, " %-6c", c)
	}
	for row := 0; row < 5; row++ {
		sb.WriteByte('\n')
		sb.WriteRune(rune(b.Pair.Row[row]))
		sb.WriteByte(' ')
		for col := 0; col < 5; col++ {
			fmt.Fprintf(&sb, " %-6s", b.cells[row*5+col].String())
		}
	}
	return sb.String()
}

func (b *Board) DebugString() string {
	return fmt.Sprintf("Board{pair: %s, boundary: %d, broken: %v, cells: %v}", b.Pair, b.boundary, b.broken, b.cells)
}
