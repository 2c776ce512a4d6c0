package propagate

import (
	"fmt"

	"crosswarped.com/checkerboard/pkg/primitives"
)

// Gap describes one run of unsettled cells the gap filler narrowed.
type Gap struct {
	From, To   rune // bounding letters; To may be primitives.End
	Start      int  // first cell of the run
	Spaces     int
	Candidates []rune // letters that can go in the run, in order
}

func (g Gap) String() string {
	to := string(g.To)
	if g.To == primitives.End {
		to = "the end of the table"
	}
	if len(g.Candidates) == g.Spaces {
		return fmt.Sprintf("the %d cells between %c and %s can only hold %s", g.Spaces, g.From, to, string(g.Candidates))
	}
	return fmt.Sprintf("the %d cells between %c and %s hold %d of %s in order", g.Spaces, g.From, to, g.Spaces, string(g.Candidates))
}

// FillGaps applies the alphabet-fill rule: past the keyword, the table lists the remaining
// letters in order, so the cells between two settled letters can only hold the unused
// letters between them, in order. It works back from the last cell and stops at the keyword
// boundary. It repeats until a pass changes nothing and returns the number of newly settled
// cells along with the runs it narrowed.
func FillGaps(b *Board) (int, []Gap) {
	before := b.ResolvedCount()
	var gaps []Gap
	for !b.Broken() {
		size := b.Size()
		gaps = append(gaps, fillPass(b)...)
		if b.Size() == size {
			break
		}
	}
	return b.ResolvedCount() - before, gaps
}

func fillPass(b *Board) []Gap {
	var gaps []Gap
	known := b.Known()
	lower := b.Boundary()
	last := primitives.End

	index := len(b.cells) - 1
	for index >= lower {
		spaces := 0
		for index >= lower {
			if _, ok := b.Resolved(index); ok {
				break
			}
			index--
			spaces++
		}
		if index < lower {
			// The lowest run is not bounded by a letter known to be alphabet fill.
			break
		}

		first, _ := b.Resolved(index)
		if primitives.Rank(first) > primitives.Rank(last) {
			break
		}
		between := primitives.Between(first, last)
		if between.Count() < spaces {
			break
		}

		if spaces > 0 {
			usable := between.Minus(known).Letters()
			numSubs := len(usable) - spaces + 1
			if numSubs < 1 {
				// Fewer letters than cells: this pair cannot be right.
				b.broken = true
				return gaps
			}
			changed := false
			for i := 0; i < spaces; i++ {
				allowed := primitives.CharSetOf(string(usable[i : i+numSubs]))
				if b.Narrow(index+1+i, allowed) {
					changed = true
				}
				if b.Broken() {
					return gaps
				}
			}
			if changed {
				gaps = append(gaps, Gap{From: first, To: last, Start: index + 1, Spaces: spaces, Candidates: usable})
			}
		}

		last = first
		index--
	}
	return gaps
}
