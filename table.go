package checkerboard

import (
	"fmt"
	"strings"
	"unicode"

	"crosswarped.com/checkerboard/internal/keywords"
	"crosswarped.com/checkerboard/pkg/primitives"
)

// Table is a complete checkerboard: two 5-letter header keywords label the rows and columns
// of a 5x5 square filled with the polybius keyword followed by the rest of the alphabet.
type Table struct {
	RowKeyword      string
	ColKeyword      string
	PolybiusKeyword string

	sequence string
	reverse  map[primitives.Unit]rune
}

// BuildTable validates the keywords and lays out the table.
func BuildTable(rowKeyword, colKeyword, polybiusKeyword string) (*Table, error) {
	row, err := headerKeyword("row keyword", rowKeyword)
	if err != nil {
		return nil, err
	}
	col, err := headerKeyword("column keyword", colKeyword)
	if err != nil {
		return nil, err
	}

	t := &Table{
		RowKeyword:      row,
		ColKeyword:      col,
		PolybiusKeyword: primitives.NormalizeKeyword(polybiusKeyword),
		sequence:        primitives.Sequence(polybiusKeyword),
		reverse:         make(map[primitives.Unit]rune, 25),
	}
	for i, l := range t.sequence {
		t.reverse[t.UnitAt(i)] = l
	}
	return t, nil
}

func headerKeyword(field, keyword string) (string, error) {
	kw := primitives.NormalizeKeyword(keyword)
	if len(kw) != 5 {
		return "", invalid(field, fmt.Errorf("%w: %q", ErrKeywordLength, keyword))
	}
	if !primitives.HasDistinctLetters(kw) {
		return "", invalid(field, fmt.Errorf("%w: %q", ErrDuplicateLetterKeyword, keyword))
	}
	return kw, nil
}

func (t *Table) pair() keywords.Pair {
	return keywords.Pair{Row: t.RowKeyword, Col: t.ColKeyword}
}

// Sequence returns the 25 table letters in cell order.
func (t *Table) Sequence() string {
	return t.sequence
}

// KeywordLength returns the number of cells the polybius keyword occupies.
func (t *Table) KeywordLength() int {
	return len(primitives.Dedupe(t.PolybiusKeyword))
}

// UnitAt returns the cipher unit of cell pos.
func (t *Table) UnitAt(pos int) primitives.Unit {
	return t.pair().Unit(pos)
}

// UnitFor returns the cipher unit of a letter. J shares I's unit.
func (t *Table) UnitFor(l rune) (primitives.Unit, bool) {
	pos := strings.IndexRune(t.sequence, primitives.Fold(unicode.ToUpper(l)))
	if pos < 0 {
		return primitives.Unit{}, false
	}
	return t.UnitAt(pos), true
}

// Position returns the cell index of a cipher unit.
func (t *Table) Position(u primitives.Unit) (int, bool) {
	return t.pair().Position(u)
}

// LetterAt returns the plaintext letter of a cipher unit.
func (t *Table) LetterAt(u primitives.Unit) (rune, bool) {
	l, ok := t.reverse[u]
	return l, ok
}

// Encode replaces every letter of plaintext by its unit. Other characters are kept.
func (t *Table) Encode(plaintext string) string {
	var sb strings.Builder
	for _, r := range primitives.NormalizeText(plaintext) {
		u, ok := t.UnitFor(r)
		if !ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(u.String())
	}
	return sb.String()
}

// Decode reverses Encode, with J read as I.
func (t *Table) Decode(ciphertext string) (string, error) {
	c, err := primitives.ParseCiphertext(ciphertext)
	if err != nil {
		return "", invalid("ciphertext", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err))
	}
	var bad []string
	out := c.Render(func(_ int, u primitives.Unit) rune {
		l, ok := t.LetterAt(u)
		if !ok {
			bad = append(bad, u.String())
			return '?'
		}
		return l
	})
	if len(bad) > 0 {
		return "", invalid("ciphertext", fmt.Errorf("%w: units %s are not in the table", ErrMalformedCiphertext, strings.Join(bad, ", ")))
	}
	return out, nil
}

func (t *Table) Repr() string {
	lines := make([]string, 0, 6)
	lines = append(lines, "  "+spaced(t.ColKeyword))
	for row := 0; row < 5; row++ {
		lines = append(lines, string(t.RowKeyword[row])+" "+spaced(t.sequence[row*5:row*5+5]))
	}
	return strings.Join(lines, "\n")
}

func (t *Table) DebugString() string {
	return fmt.Sprintf("Table{row: %s, col: %s, polybius: %q, sequence: %s}", t.RowKeyword, t.ColKeyword, t.PolybiusKeyword, t.sequence)
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
