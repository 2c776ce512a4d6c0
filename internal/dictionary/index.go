package dictionary

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"crosswarped.com/checkerboard/pkg/primitives"
)

// Params configures an Index.
type Params struct {
	// PreferredWords and ObscureWords are in descending frequency order. Obscure words rank
	// after every preferred word.
	PreferredWords []string
	ObscureWords   []string
	ExcludedWords  []string
	MinWordLength  *int
	MaxWordLength  *int

	// CacheSize bounds the number of memoised pattern queries. Zero uses a default.
	CacheSize int
}

type params struct {
	preferredWords []string
	obscureWords   []string
	excludedWords  []string
	minWordLength  int
	maxWordLength  int
	cacheSize      int
}

func asParams(p Params) params {
	pp := params{
		preferredWords: p.PreferredWords,
		obscureWords:   p.ObscureWords,
		excludedWords:  p.ExcludedWords,
		minWordLength:  1,
		maxWordLength:  20,
		cacheSize:      p.CacheSize,
	}
	if p.MinWordLength != nil {
		pp.minWordLength = *p.MinWordLength
	}
	if p.MaxWordLength != nil {
		pp.maxWordLength = *p.MaxWordLength
	}
	if pp.cacheSize <= 0 {
		pp.cacheSize = 4096
	}
	return pp
}

// Index is a read-only word-frequency dictionary. Words are stored with J folded into I, so
// that they line up with decoded table letters; the original spelling is kept for display.
//
// An Index is safe for concurrent use once built.
type Index struct {
	words      []string // folded, most frequent first
	obscureIdx int
	rank       map[string]int
	spellings  map[string]string

	byLength  map[int]*primitives.WordSet
	byPattern map[string]*primitives.WordSet
	byLetters map[string][]string

	cache *lru.Cache
}

// New builds an Index from preferred and obscure word lists.
func New(p Params) (*Index, error) {
	params := asParams(p)

	cache, err := lru.New(params.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("lru.New: %w", err)
	}

	x := &Index{
		rank:      make(map[string]int),
		spellings: make(map[string]string),
		byLength:  make(map[int]*primitives.WordSet),
		byPattern: make(map[string]*primitives.WordSet),
		byLetters: make(map[string][]string),
		cache:     cache,
	}

	excluded := make(map[string]bool)
	for _, word := range params.excludedWords {
		excluded[primitives.NormalizeKeyword(word)] = true
	}

	add := func(word string) error {
		spelling := strings.ToUpper(strings.TrimSpace(word))
		folded := primitives.NormalizeKeyword(spelling)
		if len(folded) == 0 {
			return nil
		}
		if len(folded) != len([]rune(spelling)) {
			return fmt.Errorf("word %q contains non-letters", word)
		}
		if len(folded) < params.minWordLength || len(folded) > params.maxWordLength {
			return nil
		}
		if excluded[folded] {
			return nil
		}
		if _, ok := x.rank[folded]; ok {
			return nil
		}
		x.rank[folded] = len(x.words)
		x.spellings[folded] = primitives.NormalizeText(spelling)
		x.words = append(x.words, folded)
		return nil
	}

	for _, word := range params.preferredWords {
		if err := add(word); err != nil {
			return nil, err
		}
	}
	x.obscureIdx = len(x.words)
	for _, word := range params.obscureWords {
		if err := add(word); err != nil {
			return nil, err
		}
	}

	lengthBuckets := make(map[int][]string)
	patternBuckets := make(map[string][]string)
	lengthPreferred := make(map[int]int)
	patternPreferred := make(map[string]int)
	for i, word := range x.words {
		n := len(word)
		pattern := primitives.WordPattern(word)
		if i < x.obscureIdx {
			lengthPreferred[n]++
			patternPreferred[pattern]++
		}
		lengthBuckets[n] = append(lengthBuckets[n], word)
		patternBuckets[pattern] = append(patternBuckets[pattern], word)
		if primitives.HasDistinctLetters(word) {
			key := primitives.LetterKey(word)
			x.byLetters[key] = append(x.byLetters[key], word)
		}
	}
	for n, words := range lengthBuckets {
		x.byLength[n] = primitives.MakeWordSet(words, lengthPreferred[n])
	}
	for pattern, words := range patternBuckets {
		x.byPattern[pattern] = primitives.MakeWordSet(words, patternPreferred[pattern])
	}

	return x, nil
}

// Len returns the number of distinct words.
func (x *Index) Len() int {
	return len(x.words)
}

// Contains reports whether word (in any case, J or I) is in the dictionary.
func (x *Index) Contains(word string) bool {
	_, ok := x.rank[primitives.NormalizeKeyword(word)]
	return ok
}

// Rank returns the frequency rank of word, 0 being the most frequent.
func (x *Index) Rank(word string) (int, bool) {
	r, ok := x.rank[primitives.NormalizeKeyword(word)]
	return r, ok
}

// IsObscure reports whether word came from the obscure list.
func (x *Index) IsObscure(word string) bool {
	folded := primitives.NormalizeKeyword(word)
	return x.WordsOfLength(len(folded)).IsObscure(folded)
}

// Spelling returns the dictionary spelling of a folded word, restoring any J. Unknown words
// are returned unchanged.
func (x *Index) Spelling(folded string) string {
	if s, ok := x.spellings[folded]; ok {
		return s
	}
	return folded
}

// WordsOfLength returns every word with n letters.
func (x *Index) WordsOfLength(n int) *primitives.WordSet {
	if ws, ok := x.byLength[n]; ok {
		return ws
	}
	return primitives.MakeWordSet(nil, 0)
}

// ByPattern returns every word with the given canonical repeated-letter pattern.
func (x *Index) ByPattern(pattern string) *primitives.WordSet {
	if ws, ok := x.byPattern[pattern]; ok {
		return ws
	}
	return primitives.MakeWordSet(nil, 0)
}

// Anagrams returns the distinct-letter words whose sorted letters equal key.
func (x *Index) Anagrams(key string) []string {
	return x.byLetters[key]
}

// Match returns the words with the given pattern whose letter at each position is in the
// corresponding mask. A full mask constrains nothing. Results are memoised.
func (x *Index) Match(pattern string, masks []primitives.CharSet) *primitives.WordSet {
	if len(masks) != len(pattern) {
		return primitives.MakeWordSet(nil, 0)
	}

	var sb strings.Builder
	sb.WriteString(pattern)
	for _, m := range masks {
		sb.WriteByte('|')
		sb.WriteString(m.String())
	}
	key := sb.String()
	if v, ok := x.cache.Get(key); ok {
		return v.(*primitives.WordSet)
	}

	ws := x.ByPattern(pattern)
	for i, m := range masks {
		if l, ok := m.Only(); ok {
			ws = ws.Filter(l, i)
		} else {
			ws = ws.FilterAny(m, i)
		}
		if ws.Count() == 0 {
			break
		}
	}
	x.cache.Add(key, ws)
	return ws
}
