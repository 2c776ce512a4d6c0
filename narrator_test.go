package checkerboard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTranscript(t *testing.T) {
	var tr Transcript
	tr.Step("Find the header keywords")
	tr.Say("Row keyword candidates: SCOUT.")
	sayf(&tr, "%d pairs left.", 1)

	want := "== Find the header keywords ==\n" +
		"  Row keyword candidates: SCOUT.\n" +
		"  1 pairs left.\n"
	if diff := cmp.Diff(want, tr.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}

	n := NopNarrator()
	n.Step("ignored")
	n.Say("ignored")
}
