package dictionary

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/en.txt
var defaultList []byte

// Entry is one line of a frequency list.
type Entry struct {
	Word  string
	Count int
}

// Parse reads a frequency list. Each line holds a word optionally followed by its count;
// blank lines and lines starting with '#' are skipped. When counts are present the entries
// are ordered by descending count, otherwise file order is kept.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	var entries []Entry
	counted := false
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		fields := strings.Fields(text)
		e := Entry{Word: strings.ToUpper(fields[0])}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad count %q: %w", line, fields[1], err)
			}
			e.Count = n
			counted = true
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if counted {
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return b.Count - a.Count
		})
	}
	return entries, nil
}

// Words drops the counts.
func Words(entries []Entry) []string {
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}
	return words
}

// LoadFile parses the frequency list at path.
func LoadFile(ctx context.Context, path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(ctx, f)
}

var defaultIndex = sync.OnceValues(func() (*Index, error) {
	entries, err := Parse(context.Background(), bytes.NewReader(defaultList))
	if err != nil {
		return nil, fmt.Errorf("parse embedded list: %w", err)
	}
	return New(Params{PreferredWords: Words(entries)})
})

// Default returns the Index built from the embedded English list. It is built once and
// shared.
func Default() (*Index, error) {
	return defaultIndex()
}

// FromFiles builds an Index from a frequency list plus optional obscure and excluded lists.
// Empty paths are skipped; an empty preferred path falls back to the embedded list.
func FromFiles(ctx context.Context, preferredPath, obscurePath, excludedPath string, p Params) (*Index, error) {
	var err error
	var preferred, obscure, excluded []Entry
	if preferredPath == "" {
		preferred, err = Parse(ctx, bytes.NewReader(defaultList))
	} else {
		preferred, err = LoadFile(ctx, preferredPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load preferred words: %w", err)
	}
	if obscurePath != "" {
		if obscure, err = LoadFile(ctx, obscurePath); err != nil {
			return nil, fmt.Errorf("load obscure words: %w", err)
		}
	}
	if excludedPath != "" {
		if excluded, err = LoadFile(ctx, excludedPath); err != nil {
			return nil, fmt.Errorf("load excluded words: %w", err)
		}
	}

	p.PreferredWords = append(Words(preferred), p.PreferredWords...)
	p.ObscureWords = append(Words(obscure), p.ObscureWords...)
	p.ExcludedWords = append(Words(excluded), p.ExcludedWords...)
	return New(p)
}
