package checkerboard

import (
	"fmt"
	"strings"
)

// Narrator receives the human-readable account of a solve, in order. It is the only way the
// solver talks to a user interface.
type Narrator interface {
	// Step opens a new section of the account.
	Step(title string)
	// Say appends a line to the current section.
	Say(text string)
}

// Entry is one line of a Transcript. Title is empty for lines inside a section.
type Entry struct {
	Title string
	Text  string
}

// Transcript records narration in memory.
type Transcript struct {
	Entries []Entry
}

func (t *Transcript) Step(title string) {
	t.Entries = append(t.Entries, Entry{Title: title})
}

func (t *Transcript) Say(text string) {
	t.Entries = append(t.Entries, Entry{Text: text})
}

func (t *Transcript) String() string {
	var sb strings.Builder
	for _, e := range t.Entries {
		if e.Title != "" {
			fmt.Fprintf(&sb, "== %s ==\n", e.Title)
			continue
		}
		fmt.Fprintf(&sb, "  %s\n", e.Text)
	}
	return sb.String()
}

type nopNarrator struct{}

func (nopNarrator) Step(string) {}
func (nopNarrator) Say(string)  {}

// NopNarrator discards everything.
func NopNarrator() Narrator {
	return nopNarrator{}
}

func sayf(n Narrator, format string, args ...any) {
	n.Say(fmt.Sprintf(format, args...))
}
