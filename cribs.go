package checkerboard

import (
	"sort"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/internal/propagate"
	"crosswarped.com/checkerboard/pkg/primitives"
)

// CribSuggestion is a stretch of plaintext that would make a useful crib for a puzzle setter.
type CribSuggestion struct {
	Text     string
	Position int // index of the first cipher unit
	// Direct counts the table cells the crib itself fixes; Indirect counts the cells the
	// alphabet-fill rule settles from them.
	Direct   int
	Indirect int
}

func (c CribSuggestion) Total() int {
	return c.Direct + c.Indirect
}

type CribParams struct {
	MinLength int // defaults to 5
	MaxLength int // defaults to 10
	// Target is the number of settled cells a good crib aims for. Defaults to 15.
	Target int
	Limit  int // defaults to 14
}

// SuggestCribs scores every window of plaintext letters by how much of the table it would
// reveal, and returns the windows closest to the target, best first.
func SuggestCribs(t *Table, plaintext string, p CribParams) []CribSuggestion {
	if p.MinLength <= 0 {
		p.MinLength = 5
	}
	if p.MaxLength < p.MinLength {
		p.MaxLength = max(10, p.MinLength)
	}
	if p.Target <= 0 {
		p.Target = 15
	}
	if p.Limit <= 0 {
		p.Limit = 14
	}

	letters := []rune(primitives.NormalizeKeyword(plaintext))
	limits := keywords.DefaultLimits()
	k := t.KeywordLength()
	limits.KeywordLength = &k

	var out []CribSuggestion
	for n := p.MinLength; n <= p.MaxLength; n++ {
		for pos := 0; pos+n <= len(letters); pos++ {
			s := scoreCrib(t, limits, letters[pos:pos+n])
			s.Position = pos
			if s.Total() > 5 {
				out = append(out, s)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := abs(out[i].Total()-p.Target), abs(out[j].Total()-p.Target)
		if di != dj {
			return di < dj
		}
		if out[i].Total() != out[j].Total() {
			return out[i].Total() > out[j].Total()
		}
		return out[i].Position < out[j].Position
	})
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

func scoreCrib(t *Table, limits keywords.Limits, window []rune) CribSuggestion {
	b := propagate.NewBoard(t.pair(), limits)
	for _, l := range window {
		if u, ok := t.UnitFor(l); ok {
			b.Assign(u, l)
		}
	}
	direct := b.ResolvedCount()
	indirect, _ := propagate.FillGaps(b)
	return CribSuggestion{
		Text:     string(window),
		Direct:   direct,
		Indirect: indirect,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
