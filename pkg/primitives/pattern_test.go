package primitives

import "testing"

func TestWordPattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"XYZZY", "01221"},
		{"LEVEL", "01210"},
		{"THE", "012"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := WordPattern(tt.in); got != tt.want {
			t.Errorf("WordPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPattern_Units(t *testing.T) {
	units := []Unit{{'L', 'N'}, {'O', 'B'}, {'L', 'N'}}
	if got := Pattern(units); got != "010" {
		t.Errorf("Pattern(units) = %q, want 010", got)
	}
}

func TestLetterKey(t *testing.T) {
	if LetterKey("MELON") != LetterKey("LEMON") {
		t.Error("MELON and LEMON should share a letter key")
	}
	if got := LetterKey("ROBIN"); got != "BINOR" {
		t.Errorf("LetterKey(ROBIN) = %q", got)
	}
}

func TestHasDistinctLetters(t *testing.T) {
	if !HasDistinctLetters("SCOUT") {
		t.Error("SCOUT has distinct letters")
	}
	if HasDistinctLetters("LEVEL") {
		t.Error("LEVEL repeats letters")
	}
}
