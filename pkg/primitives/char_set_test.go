package primitives

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCharSet_Add(t *testing.T) {
	cs := &CharSet{}

	tests := []struct {
		name      string
		char      rune
		wantErr   bool
		wantCount int
	}{
		{"add 'A'", 'A', false, 1},
		{"add 'B'", 'B', false, 2},
		{"add 'C'", 'C', false, 3},
		{"add 'A' again", 'A', false, 3}, // should not increase count
		{"add out of range low", 'a', true, 3},
		{"add out of range high", '~', true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cs.Add(tt.char)
			if (err != nil) != tt.wantErr {
				t.Errorf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cs.Count() != tt.wantCount {
				t.Errorf("count = %d, want %d", cs.Count(), tt.wantCount)
			}
		})
	}
}

func TestCharSet_AddAll(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"add to empty set", "", "AB", 2},
		{"add overlapping sets", "A", "BC", 3},
		{"add to partially overlapping set", "ABC", "AD", 4},
		{"add to full set", Alphabet, "ABC", 25},
		{"add full set to partial", "A", Alphabet, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := CharSetOf(tt.a)
			cs.AddAll(CharSetOf(tt.b))
			if cs.Count() != tt.expected {
				t.Errorf("count = %d, want %d", cs.Count(), tt.expected)
			}
		})
	}
}

func TestCharSet_Remove(t *testing.T) {
	cs := CharSetOf("LMN")
	if !cs.Remove('M') {
		t.Error("Remove('M') = false, want true")
	}
	if cs.Remove('M') {
		t.Error("second Remove('M') = true, want false")
	}
	if got := cs.String(); got != "LN" {
		t.Errorf("String() = %q, want %q", got, "LN")
	}
}

func TestCharSet_Contains(t *testing.T) {
	cs := CharSetOf("AC")

	tests := []struct {
		name string
		char rune
		want bool
	}{
		{"contains 'A'", 'A', true},
		{"contains 'B'", 'B', false},
		{"contains 'C'", 'C', true},
		{"lower case", 'a', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cs.Contains(tt.char); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCharSet_IsFull(t *testing.T) {
	cs := &CharSet{}
	if cs.IsFull() {
		t.Error("IsFull() = true, want false for empty set")
	}

	cs.AddAll(CharSetOf("ABCDEFGHIKLMNOPQRSTUVWXY"))
	if cs.IsFull() {
		t.Error("IsFull() = true, want false without Z")
	}

	cs.Add('Z')
	if !cs.IsFull() {
		t.Error("IsFull() = false, want true for full set")
	}
	if cs.Contains('J') {
		t.Error("full table set should not contain J")
	}
	if got := FullCharSet().Count(); got != 25 {
		t.Errorf("FullCharSet().Count() = %d, want 25", got)
	}
}

func TestCharSet_Only(t *testing.T) {
	tests := []struct {
		in     string
		want   rune
		wantOk bool
	}{
		{"", 0, false},
		{"Q", 'Q', true},
		{"QR", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CharSetOf(tt.in).Only()
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("Only() = %c, %v; want %c, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestCharSet_SetAlgebra(t *testing.T) {
	a := CharSetOf("ABCD")
	b := CharSetOf("CDEF")

	if diff := cmp.Diff([]rune("CD"), a.Intersect(b).Letters()); diff != "" {
		t.Errorf("Intersect() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]rune("ABCDEF"), a.Union(b).Letters()); diff != "" {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]rune("AB"), a.Minus(b).Letters()); diff != "" {
		t.Errorf("Minus() mismatch (-want +got):\n%s", diff)
	}
	if got := FullCharSet().String(); got != "*" {
		t.Errorf("FullCharSet().String() = %q, want *", got)
	}
}
